package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

func TestCraftFieldMedkit(t *testing.T) {
	e := newTestEngine(t)
	s, vodka := give(t, e, newTestState(), inventory.KindPlayer, "vodka_coke", 1)
	s, bandages := give(t, e, s, inventory.KindPlayer, "bandages", 1)

	next, err := e.Craft(s, inventory.KindPlayer, []inventory.InstanceID{bandages, vodka})
	if err != nil {
		t.Fatalf("unexpected craft error: %v", err)
	}
	got := quantities(next.Containers[inventory.KindPlayer])
	if !reflect.DeepEqual(got, map[models.ItemID]int{"medkit": 1}) {
		t.Fatalf("expected only a medkit, got %v", got)
	}
}

func TestCraftIgnoresEmptySlots(t *testing.T) {
	e := newTestEngine(t)
	s, vodka := give(t, e, newTestState(), inventory.KindPlayer, "vodka_coke", 1)
	s, bandages := give(t, e, s, inventory.KindPlayer, "bandages", 1)

	next, err := e.Craft(s, inventory.KindPlayer, []inventory.InstanceID{vodka, "", bandages})
	if err != nil {
		t.Fatalf("unexpected craft error: %v", err)
	}
	if next.Containers[inventory.KindPlayer].Count("medkit") != 1 {
		t.Fatal("expected a medkit")
	}
}

func TestCraftWithoutMatchIsNoop(t *testing.T) {
	e := newTestEngine(t)
	s, vodka := give(t, e, newTestState(), inventory.KindPlayer, "vodka_coke", 3)
	s, rag := give(t, e, s, inventory.KindPlayer, "rag", 1)
	before := s.Clone()

	attempts := [][]inventory.InstanceID{
		{vodka},
		{vodka, rag},
		{rag, rag, rag},
		{},
	}
	for i := 0; i < 3; i++ {
		for _, slots := range attempts {
			got, err := e.Craft(s, inventory.KindPlayer, slots)
			if err == nil {
				t.Fatalf("expected failure for %v", slots)
			}
			assertUnchanged(t, before, got)
		}
	}
	if _, err := e.Craft(s, inventory.KindPlayer, []inventory.InstanceID{vodka, rag}); !errors.Is(err, ErrNoRecipe) {
		t.Fatalf("expected ErrNoRecipe, got %v", err)
	}
}

func TestCraftSameStackInTwoSlots(t *testing.T) {
	e := newTestEngine(t)
	s, vodka := give(t, e, newTestState(), inventory.KindPlayer, "vodka_coke", 2)
	s, rag := give(t, e, s, inventory.KindPlayer, "rag", 1)

	next, err := e.Craft(s, inventory.KindPlayer, []inventory.InstanceID{vodka, rag, vodka})
	if err != nil {
		t.Fatalf("unexpected craft error: %v", err)
	}
	got := quantities(next.Containers[inventory.KindPlayer])
	if !reflect.DeepEqual(got, map[models.ItemID]int{"molotov": 1}) {
		t.Fatalf("expected only a molotov, got %v", got)
	}

	short, single := give(t, e, newTestState(), inventory.KindPlayer, "vodka_coke", 1)
	short, rag = give(t, e, short, inventory.KindPlayer, "rag", 1)
	before := short.Clone()
	out, err := e.Craft(short, inventory.KindPlayer, []inventory.InstanceID{single, rag, single})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a single unit used twice, got %v", err)
	}
	assertUnchanged(t, before, out)
}

func TestCraftResultMustFit(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState()
	s, vodka := give(t, e, s, inventory.KindSafe, "vodka_coke", 2)
	s, bandages := give(t, e, s, inventory.KindSafe, "bandages", 2)
	for _, id := range []models.ItemID{"rag", "whiskey", "kevlar"} {
		s, _ = give(t, e, s, inventory.KindSafe, id, 1)
	}

	before := s.Clone()
	got, err := e.Craft(s, inventory.KindSafe, []inventory.InstanceID{vodka, bandages})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	assertUnchanged(t, before, got)
}

func TestCraftRejectsTooManySlots(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState()
	_, err := e.Craft(s, inventory.KindPlayer, []inventory.InstanceID{"a", "b", "c", "d"})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}
