package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

func TestMoveIntoFullSafeFails(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState()
	for _, id := range []models.ItemID{"bandages", "rag", "whiskey", "kevlar", "medkit"} {
		s, _ = give(t, e, s, inventory.KindSafe, id, 1)
	}
	s, pistol := give(t, e, s, inventory.KindPlayer, "pistol", 1)

	before := s.Clone()
	got, err := e.Move(s, inventory.KindPlayer, inventory.KindSafe, pistol)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	assertUnchanged(t, before, got)
	if st, _, ok := got.Containers[inventory.KindPlayer].Find(pistol); !ok || st.Qty != 1 {
		t.Fatalf("expected pistol stack untouched, got %+v", st)
	}
}

func TestMoveMergesIntoFullContainer(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState()
	for _, id := range []models.ItemID{"bandages", "rag", "whiskey", "kevlar", "medkit"} {
		s, _ = give(t, e, s, inventory.KindSafe, id, 1)
	}
	s, whiskey := give(t, e, s, inventory.KindPlayer, "whiskey", 4)

	next, err := e.Move(s, inventory.KindPlayer, inventory.KindSafe, whiskey)
	if err != nil {
		t.Fatalf("expected merge to succeed, got %v", err)
	}
	if qty := next.Containers[inventory.KindSafe].Count("whiskey"); qty != 5 {
		t.Fatalf("expected 5 whiskey in safe, got %d", qty)
	}
	if len(next.Containers[inventory.KindPlayer].Stacks) != 0 {
		t.Fatal("expected player container empty")
	}
	if next.Total("whiskey") != s.Total("whiskey") {
		t.Fatal("whiskey count not conserved")
	}
}

func TestMoveKeepsInstanceID(t *testing.T) {
	e := newTestEngine(t)
	s, report := give(t, e, newTestState(), inventory.KindPlayer, "police_report", 1)
	next, err := e.Move(s, inventory.KindPlayer, inventory.KindStorage, report)
	if err != nil {
		t.Fatalf("unexpected move error: %v", err)
	}
	if _, _, ok := next.Containers[inventory.KindStorage].Find(report); !ok {
		t.Fatalf("expected %s in storage", report)
	}
	if _, _, ok := next.Containers[inventory.KindPlayer].Find(report); ok {
		t.Fatalf("expected %s gone from player", report)
	}
}

func TestMoveUniqueNeverMerges(t *testing.T) {
	e := newTestEngine(t)
	s, err := e.GrantInstance(newTestState(), inventory.KindStorage, "police_report", map[string]string{"text": "the judge"})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	s, err = e.GrantInstance(s, inventory.KindPlayer, "police_report", map[string]string{"text": "the mayor"})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	id := s.Containers[inventory.KindPlayer].Stacks[0].InstanceID
	next, err := e.Move(s, inventory.KindPlayer, inventory.KindStorage, id)
	if err != nil {
		t.Fatalf("unexpected move error: %v", err)
	}
	if n := len(next.Containers[inventory.KindStorage].FindByItem("police_report")); n != 2 {
		t.Fatalf("expected two separate reports, got %d", n)
	}
}

func TestMoveErrors(t *testing.T) {
	e := newTestEngine(t)
	s, id := give(t, e, newTestState(), inventory.KindPlayer, "rag", 1)
	if _, err := e.Move(s, inventory.KindPlayer, inventory.KindPlayer, id); !errors.Is(err, ErrSameContainer) {
		t.Fatalf("expected ErrSameContainer, got %v", err)
	}
	if _, err := e.Move(s, inventory.KindPlayer, inventory.KindSafe, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := e.Move(s, inventory.KindPlayer, "garage", id); !errors.Is(err, ErrUnknownContainer) {
		t.Fatalf("expected ErrUnknownContainer, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	e := newTestEngine(t)
	s, id := give(t, e, newTestState(), inventory.KindPlayer, "bandages", 5)

	next, err := e.Split(s, inventory.KindPlayer, inventory.KindSafe, id, 2)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if got := next.Containers[inventory.KindPlayer].Count("bandages"); got != 3 {
		t.Fatalf("expected 3 left in player, got %d", got)
	}
	safe := next.Containers[inventory.KindSafe]
	if got := safe.Count("bandages"); got != 2 {
		t.Fatalf("expected 2 in safe, got %d", got)
	}
	if safe.Stacks[0].InstanceID == id {
		t.Fatal("split-off stack must get its own instance id")
	}

	whole, err := e.Split(next, inventory.KindPlayer, inventory.KindSafe, id, 3)
	if err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if whole.Containers[inventory.KindSafe].Count("bandages") != 5 || len(whole.Containers[inventory.KindPlayer].Stacks) != 0 {
		t.Fatalf("expected everything in safe, got %+v", whole.Containers)
	}

	for _, qty := range []int{0, -1, 6} {
		if _, err := e.Split(s, inventory.KindPlayer, inventory.KindSafe, id, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
	if _, err := e.Split(s, inventory.KindPlayer, inventory.KindPlayer, id, 1); !errors.Is(err, ErrSameContainer) {
		t.Fatalf("expected ErrSameContainer, got %v", err)
	}
}

func TestDiscard(t *testing.T) {
	e := newTestEngine(t)
	s, id := give(t, e, newTestState(), inventory.KindPlayer, "whiskey", 9)
	next, err := e.Discard(s, inventory.KindPlayer, id)
	if err != nil {
		t.Fatalf("unexpected discard error: %v", err)
	}
	if next.Total("whiskey") != 0 {
		t.Fatal("expected whiskey gone")
	}
	if _, err := e.Discard(next, inventory.KindPlayer, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGrant(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState()
	_, err := e.Grant(s, inventory.KindPlayer, "wiskey", 1)
	if !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if !strings.Contains(err.Error(), `"whiskey"`) {
		t.Fatalf("expected suggestion in %q", err)
	}
	if _, err := e.Grant(s, inventory.KindPlayer, "whiskey", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := e.Grant(s, inventory.KindPlayer, "police_report", 2); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for unique stack, got %v", err)
	}
}

func TestOpenContainer(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState()
	delete(s.Containers, inventory.KindSafe)

	next, err := e.OpenContainer(s, inventory.KindSafe, 5)
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	if c := next.Containers[inventory.KindSafe]; c.Capacity != 5 || len(c.Stacks) != 0 {
		t.Fatalf("unexpected safe: %+v", c)
	}
	if _, err := e.OpenContainer(next, inventory.KindSafe, 5); !errors.Is(err, ErrContainerExists) {
		t.Fatalf("expected ErrContainerExists, got %v", err)
	}
	if _, err := e.OpenContainer(s, "garage", 5); !errors.Is(err, ErrUnknownContainer) {
		t.Fatalf("expected ErrUnknownContainer, got %v", err)
	}
}
