package models

import "testing"

func TestGrantTraitReplacesExisting(t *testing.T) {
	c := NewCharacter("vito", "Vito", 100)
	c.GrantTrait("steady_hands", 2)
	c.GrantTrait("steady_hands", 2)
	if len(c.Traits) != 1 {
		t.Fatalf("expected 1 trait entry, got %d", len(c.Traits))
	}
	c.GrantTrait("steady_hands", 1)
	tr, ok := c.Trait("steady_hands")
	if !ok || tr.Rank != 1 {
		t.Fatalf("expected rank reset to 1, got %+v (found=%v)", tr, ok)
	}
}

func TestRaiseTraitIncrementsRank(t *testing.T) {
	c := NewCharacter("vito", "Vito", 100)
	if got := c.RaiseTrait("intimidation"); got.Rank != 1 {
		t.Fatalf("expected new trait at rank 1, got %d", got.Rank)
	}
	if got := c.RaiseTrait("intimidation"); got.Rank != 2 {
		t.Fatalf("expected rank 2, got %d", got.Rank)
	}
	if len(c.Traits) != 1 {
		t.Fatalf("expected 1 trait entry, got %d", len(c.Traits))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := NewCharacter("vito", "Vito", 100)
	c.Equipment[SlotMainHand] = "pistol"
	c.GrantTrait("steady_hands", 1)
	c.Counters = map[string]int{"drugs": 1}

	cp := c.Clone()
	cp.Equipment[SlotMainHand] = "shotgun"
	cp.Traits[0].Rank = 5
	cp.Counters["drugs"] = 9

	if c.Equipment[SlotMainHand] != "pistol" {
		t.Fatalf("original equipment mutated: %v", c.Equipment)
	}
	if c.Traits[0].Rank != 1 {
		t.Fatalf("original traits mutated: %+v", c.Traits)
	}
	if c.Counters["drugs"] != 1 {
		t.Fatalf("original counters mutated: %v", c.Counters)
	}
}

func TestSlotValid(t *testing.T) {
	for _, s := range Slots() {
		if !s.Valid() {
			t.Fatalf("slot %q should be valid", s)
		}
	}
	if Slot("tail").Valid() {
		t.Fatalf("unexpected valid slot")
	}
}

func TestEquipmentCount(t *testing.T) {
	e := Equipment{SlotMainHand: "pistol", SlotOffHand: "pistol", SlotHead: "fedora"}
	if got := e.Count("pistol"); got != 2 {
		t.Fatalf("expected 2 pistols, got %d", got)
	}
	if _, ok := e.Get(SlotFeet); ok {
		t.Fatalf("expected empty feet slot")
	}
}
