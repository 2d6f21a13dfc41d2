package inventory

import (
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/item"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// Clone returns a container with its own stack slice.
func (c Container) Clone() Container {
	out := c
	out.Stacks = make([]Stack, len(c.Stacks))
	copy(out.Stacks, c.Stacks)
	return out
}

// Full reports whether a new stack would exceed capacity.
func (c Container) Full() bool {
	return len(c.Stacks) >= c.Capacity
}

// Find returns the stack with instance id and its index.
func (c Container) Find(id InstanceID) (Stack, int, bool) {
	for i, st := range c.Stacks {
		if st.InstanceID == id {
			return st, i, true
		}
	}
	return Stack{}, -1, false
}

// FindByItem returns every stack of item id in insertion order.
func (c Container) FindByItem(id models.ItemID) []Stack {
	var out []Stack
	for _, st := range c.Stacks {
		if st.Item == id {
			out = append(out, st)
		}
	}
	return out
}

// Count returns the total quantity of item id.
func (c Container) Count(id models.ItemID) int {
	total := 0
	for _, st := range c.Stacks {
		if st.Item == id {
			total += st.Qty
		}
	}
	return total
}

// mergeTarget returns the index of the stack s would merge into, or -1.
func (c Container) mergeTarget(s Stack, stackable bool) int {
	if !stackable || len(s.Data) > 0 {
		return -1
	}
	for i, st := range c.Stacks {
		if st.Item == s.Item && len(st.Data) == 0 {
			return i
		}
	}
	return -1
}

// CanAccept reports whether s could be inserted, either by merging into an
// existing stack or by taking a free slot.
func (c Container) CanAccept(s Stack, stackable bool) bool {
	return c.mergeTarget(s, stackable) >= 0 || !c.Full()
}

// AddStack adds qty units of def. Stackable items merge into the existing
// stack of the same id; otherwise a new stack is appended if capacity allows.
// Unique items always take a new slot per call.
func (c Container) AddStack(def item.Definition, qty int, newID IDFunc) (Container, InstanceID, error) {
	return c.Insert(Stack{Item: def.ID, Qty: qty}, def.Stackable(), newID)
}

// AddInstance adds a single data-bearing stack of def. It never merges.
func (c Container) AddInstance(def item.Definition, data map[string]string, newID IDFunc) (Container, InstanceID, error) {
	return c.Insert(Stack{Item: def.ID, Qty: 1, Data: data}, def.Stackable(), newID)
}

// Insert places s into the container. A mergeable stack is folded into the
// existing stack of the same item and keeps that stack's instance id. An
// inserted stack keeps s.InstanceID, or gets a fresh one when empty.
func (c Container) Insert(s Stack, stackable bool, newID IDFunc) (Container, InstanceID, error) {
	if s.Qty <= 0 {
		return c, "", fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidQuantity, s.Qty)
	}
	if idx := c.mergeTarget(s, stackable); idx >= 0 {
		out := c.Clone()
		out.Stacks[idx].Qty += s.Qty
		return out, out.Stacks[idx].InstanceID, nil
	}
	if c.Full() {
		return c, "", fmt.Errorf("%w: %s holds %d/%d stacks", ErrCapacityExceeded, c.Kind, len(c.Stacks), c.Capacity)
	}
	if s.InstanceID == "" {
		if newID == nil {
			newID = NewInstanceID
		}
		s.InstanceID = newID()
	}
	if _, _, exists := c.Find(s.InstanceID); exists {
		return c, "", fmt.Errorf("%w: %s", ErrDuplicateInstance, s.InstanceID)
	}
	out := c.Clone()
	out.Stacks = append(out.Stacks, s)
	return out, s.InstanceID, nil
}

// RemoveOne decrements the stack by one unit, freeing the slot at zero.
func (c Container) RemoveOne(id InstanceID) (Container, error) {
	out, _, err := c.Take(id, 1)
	return out, err
}

// RemoveStack removes the whole stack regardless of quantity.
func (c Container) RemoveStack(id InstanceID) (Container, Stack, error) {
	st, idx, ok := c.Find(id)
	if !ok {
		return c, Stack{}, fmt.Errorf("%w: %s in %s", ErrNotFound, id, c.Kind)
	}
	out := c.Clone()
	out.Stacks = append(out.Stacks[:idx], out.Stacks[idx+1:]...)
	return out, st, nil
}

// Take removes qty units from a stack and returns them as a stack value. When
// the whole stack is taken the returned stack keeps its instance id; a partial
// take returns a stack without one.
func (c Container) Take(id InstanceID, qty int) (Container, Stack, error) {
	st, idx, ok := c.Find(id)
	if !ok {
		return c, Stack{}, fmt.Errorf("%w: %s in %s", ErrNotFound, id, c.Kind)
	}
	if qty <= 0 || qty > st.Qty {
		return c, Stack{}, fmt.Errorf("%w: take %d from stack of %d", ErrInvalidQuantity, qty, st.Qty)
	}
	if qty == st.Qty {
		return c.RemoveStack(id)
	}
	out := c.Clone()
	out.Stacks[idx].Qty -= qty
	taken := Stack{Item: st.Item, Qty: qty, Data: st.Data}
	return out, taken, nil
}

// Validate checks the container invariants. stackable reports whether an item
// id merges; unknown ids should report false.
func (c Container) Validate(stackable func(models.ItemID) bool) error {
	if len(c.Stacks) > c.Capacity {
		return fmt.Errorf("%w: %s holds %d/%d stacks", ErrCapacityExceeded, c.Kind, len(c.Stacks), c.Capacity)
	}
	seenInstance := make(map[InstanceID]struct{}, len(c.Stacks))
	seenItem := make(map[models.ItemID]struct{}, len(c.Stacks))
	for _, st := range c.Stacks {
		if st.Qty <= 0 {
			return fmt.Errorf("%w: stack %s has quantity %d", ErrInvalidQuantity, st.InstanceID, st.Qty)
		}
		if _, dup := seenInstance[st.InstanceID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateInstance, st.InstanceID)
		}
		seenInstance[st.InstanceID] = struct{}{}
		if len(st.Data) > 0 || stackable == nil || !stackable(st.Item) {
			continue
		}
		if _, dup := seenItem[st.Item]; dup {
			return fmt.Errorf("%s holds two mergeable stacks of %s", c.Kind, st.Item)
		}
		seenItem[st.Item] = struct{}{}
	}
	return nil
}
