package engine

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

var propertyItems = []models.ItemID{
	"medkit", "vodka_coke", "adrenaline", "bandages", "rag", "whiskey",
	"pistol", "revolver", "kevlar", "police_report",
}

func totals(s State) map[models.ItemID]int {
	out := make(map[models.ItemID]int, len(propertyItems))
	for _, id := range propertyItems {
		out[id] = s.Total(id)
	}
	return out
}

func pickInstance(t *rapid.T, s State, kind inventory.Kind) inventory.InstanceID {
	stacks := s.Containers[kind].Stacks
	if len(stacks) == 0 || rapid.IntRange(0, 9).Draw(t, "stale") == 0 {
		return "missing"
	}
	return stacks[rapid.IntRange(0, len(stacks)-1).Draw(t, "stack")].InstanceID
}

func seedState(t *rapid.T, e *Engine) State {
	s := newTestState()
	n := rapid.IntRange(0, 15).Draw(t, "seed")
	for i := 0; i < n; i++ {
		id := rapid.SampledFrom(propertyItems).Draw(t, "item")
		kind := rapid.SampledFrom(inventory.Kinds()).Draw(t, "kind")
		qty := 1
		if id != "police_report" {
			qty = rapid.IntRange(1, 4).Draw(t, "qty")
		}
		if next, err := e.Grant(s, kind, id, qty); err == nil {
			s = next
		}
	}
	return s
}

func TestProperty_Transactions_KeepInvariants(t *testing.T) {
	e := newTestEngine(t)
	rapid.Check(t, func(t *rapid.T) {
		s := seedState(t, e)
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			before := s.Clone()
			want := totals(s)
			conserving := true

			var next State
			var err error
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0:
				kind := rapid.SampledFrom(inventory.Kinds()).Draw(t, "kind")
				next, err = e.Equip(s, boss, kind, pickInstance(t, s, kind))
			case 1:
				slot := rapid.SampledFrom(models.Slots()).Draw(t, "slot")
				kind := rapid.SampledFrom(inventory.Kinds()).Draw(t, "kind")
				next, err = e.Unequip(s, boss, slot, kind)
			case 2:
				src := rapid.SampledFrom(inventory.Kinds()).Draw(t, "src")
				dst := rapid.SampledFrom(inventory.Kinds()).Draw(t, "dst")
				next, err = e.Move(s, src, dst, pickInstance(t, s, src))
			case 3:
				src := rapid.SampledFrom(inventory.Kinds()).Draw(t, "src")
				dst := rapid.SampledFrom(inventory.Kinds()).Draw(t, "dst")
				qty := rapid.IntRange(0, 5).Draw(t, "qty")
				next, err = e.Split(s, src, dst, pickInstance(t, s, src), qty)
			case 4:
				kind := rapid.SampledFrom(inventory.Kinds()).Draw(t, "kind")
				id := pickInstance(t, s, kind)
				if st, _, ok := s.Containers[kind].Find(id); ok {
					want[st.Item]--
				}
				next, err = e.Consume(s, boss, kind, id)
			case 5:
				conserving = false
				kind := rapid.SampledFrom(inventory.Kinds()).Draw(t, "kind")
				n := rapid.IntRange(0, 3).Draw(t, "slots")
				slots := make([]inventory.InstanceID, n)
				for j := range slots {
					slots[j] = pickInstance(t, s, kind)
				}
				next, err = e.Craft(s, kind, slots)
			}

			if !reflect.DeepEqual(before, s) {
				t.Fatalf("operation modified its input state")
			}
			if err != nil {
				if !reflect.DeepEqual(before, next) {
					t.Fatalf("rejected operation returned a different state: %v", err)
				}
				continue
			}
			if next.Version != s.Version+1 {
				t.Fatalf("expected version %d, got %d", s.Version+1, next.Version)
			}
			if err := next.Validate(e.Catalog()); err != nil {
				t.Fatalf("invariant violated: %v", err)
			}
			if conserving {
				if got := totals(next); !reflect.DeepEqual(got, want) {
					t.Fatalf("item totals changed: want %v got %v", want, got)
				}
			}
			s = next
		}
	})
}

func TestProperty_GrantTrait_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	rapid.Check(t, func(t *rapid.T) {
		doses := rapid.IntRange(1, 6).Draw(t, "doses")
		s, err := e.Grant(newTestState(), inventory.KindPlayer, "adrenaline", doses)
		if err != nil {
			t.Fatalf("grant: %v", err)
		}
		id := s.Containers[inventory.KindPlayer].Stacks[0].InstanceID
		for i := 0; i < doses; i++ {
			if s, err = e.Consume(s, boss, inventory.KindPlayer, id); err != nil {
				t.Fatalf("dose %d: %v", i, err)
			}
		}
		ch := s.Characters[boss]
		if len(ch.Traits) != 1 {
			t.Fatalf("expected one trait entry after %d doses, got %+v", doses, ch.Traits)
		}
		if tr, _ := ch.Trait("wired"); tr.Rank != 2 {
			t.Fatalf("expected rank 2, got %d", tr.Rank)
		}
	})
}

func TestProperty_EquipUnequip_RoundTrip(t *testing.T) {
	e := newTestEngine(t)
	gear := []models.ItemID{"pistol", "revolver", "kevlar"}
	rapid.Check(t, func(t *rapid.T) {
		s := newTestState()
		for _, id := range gear {
			qty := rapid.IntRange(1, 3).Draw(t, "qty")
			next, err := e.Grant(s, inventory.KindPlayer, id, qty)
			if err != nil {
				t.Fatalf("grant: %v", err)
			}
			s = next
		}
		want := quantities(s.Containers[inventory.KindPlayer])
		stacks := s.Containers[inventory.KindPlayer].Stacks
		st := stacks[rapid.IntRange(0, len(stacks)-1).Draw(t, "stack")]
		def, _ := e.Catalog().Lookup(st.Item)
		slot, _ := def.EquipSlot()

		worn, err := e.Equip(s, boss, inventory.KindPlayer, st.InstanceID)
		if err != nil {
			t.Fatalf("equip: %v", err)
		}
		back, err := e.Unequip(worn, boss, slot, inventory.KindPlayer)
		if err != nil {
			t.Fatalf("unequip: %v", err)
		}
		if got := quantities(back.Containers[inventory.KindPlayer]); !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip changed quantities: want %v got %v", want, got)
		}
		if len(back.Characters[boss].Equipment) != 0 {
			t.Fatalf("expected empty loadout, got %v", back.Characters[boss].Equipment)
		}
	})
}
