package engine

import (
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// Move transfers the whole stack id from src to dst. It merges into an
// existing stack of the same item when the item stacks, otherwise it needs a
// free slot. The instance id survives an unmerged move.
func (e *Engine) Move(s State, src, dst inventory.Kind, id inventory.InstanceID) (State, error) {
	if src == dst {
		return s, fmt.Errorf("move: %w: %s", ErrSameContainer, src)
	}
	from, err := s.container(src)
	if err != nil {
		return s, err
	}
	to, err := s.container(dst)
	if err != nil {
		return s, err
	}
	st, _, ok := from.Find(id)
	if !ok {
		return s, fmt.Errorf("move: %w: %s in %s", ErrNotFound, id, src)
	}
	def, err := e.definition(st.Item)
	if err != nil {
		return s, fmt.Errorf("move: %w", err)
	}
	if !to.CanAccept(st, def.Stackable()) {
		return s, fmt.Errorf("move: %w: %s holds %d/%d stacks", ErrCapacityExceeded, dst, len(to.Stacks), to.Capacity)
	}

	from, taken, err := from.RemoveStack(id)
	if err != nil {
		return s, fmt.Errorf("move: %w", err)
	}
	to, _, err = to.Insert(taken, def.Stackable(), e.opts.NewID)
	if err != nil {
		return s, fmt.Errorf("move: %w", err)
	}

	next := s.next()
	next.Containers[src] = from
	next.Containers[dst] = to
	return next, nil
}

// Split moves qty units of stack id from src to dst. Moving the whole
// quantity is the same as Move.
func (e *Engine) Split(s State, src, dst inventory.Kind, id inventory.InstanceID, qty int) (State, error) {
	if src == dst {
		return s, fmt.Errorf("split: %w: %s", ErrSameContainer, src)
	}
	from, err := s.container(src)
	if err != nil {
		return s, err
	}
	to, err := s.container(dst)
	if err != nil {
		return s, err
	}
	st, _, ok := from.Find(id)
	if !ok {
		return s, fmt.Errorf("split: %w: %s in %s", ErrNotFound, id, src)
	}
	if qty <= 0 || qty > st.Qty {
		return s, fmt.Errorf("split: %w: %d of %d", ErrInvalidQuantity, qty, st.Qty)
	}
	if qty == st.Qty {
		return e.Move(s, src, dst, id)
	}
	def, err := e.definition(st.Item)
	if err != nil {
		return s, fmt.Errorf("split: %w", err)
	}
	if !to.CanAccept(st, def.Stackable()) {
		return s, fmt.Errorf("split: %w: %s holds %d/%d stacks", ErrCapacityExceeded, dst, len(to.Stacks), to.Capacity)
	}

	from, taken, err := from.Take(id, qty)
	if err != nil {
		return s, fmt.Errorf("split: %w", err)
	}
	to, _, err = to.Insert(taken, def.Stackable(), e.opts.NewID)
	if err != nil {
		return s, fmt.Errorf("split: %w", err)
	}

	next := s.next()
	next.Containers[src] = from
	next.Containers[dst] = to
	return next, nil
}

// Discard destroys the whole stack id.
func (e *Engine) Discard(s State, kind inventory.Kind, id inventory.InstanceID) (State, error) {
	c, err := s.container(kind)
	if err != nil {
		return s, err
	}
	c, _, err = c.RemoveStack(id)
	if err != nil {
		return s, fmt.Errorf("discard: %w", err)
	}
	next := s.next()
	next.Containers[kind] = c
	return next, nil
}

// Grant delivers qty units of an item into container kind, as loot or a
// purchase.
func (e *Engine) Grant(s State, kind inventory.Kind, itemID models.ItemID, qty int) (State, error) {
	c, err := s.container(kind)
	if err != nil {
		return s, err
	}
	def, err := e.definition(itemID)
	if err != nil {
		return s, fmt.Errorf("grant: %w", err)
	}
	if qty <= 0 {
		return s, fmt.Errorf("grant: %w: %d", ErrInvalidQuantity, qty)
	}
	if !def.Stackable() && qty != 1 {
		return s, fmt.Errorf("grant: %w: %s is unique, got %d", ErrInvalidQuantity, itemID, qty)
	}
	c, _, err = c.AddStack(def, qty, e.opts.NewID)
	if err != nil {
		return s, fmt.Errorf("grant: %w", err)
	}
	next := s.next()
	next.Containers[kind] = c
	return next, nil
}

// GrantInstance delivers one data-bearing unit, such as a written report.
// It always takes a new slot.
func (e *Engine) GrantInstance(s State, kind inventory.Kind, itemID models.ItemID, data map[string]string) (State, error) {
	c, err := s.container(kind)
	if err != nil {
		return s, err
	}
	def, err := e.definition(itemID)
	if err != nil {
		return s, fmt.Errorf("grant: %w", err)
	}
	copied := make(map[string]string, len(data))
	for k, v := range data {
		copied[k] = v
	}
	c, _, err = c.AddInstance(def, copied, e.opts.NewID)
	if err != nil {
		return s, fmt.Errorf("grant: %w", err)
	}
	next := s.next()
	next.Containers[kind] = c
	return next, nil
}

// OpenContainer adds an empty container, for example when the boss buys a
// safe.
func (e *Engine) OpenContainer(s State, kind inventory.Kind, capacity int) (State, error) {
	if _, exists := s.Containers[kind]; exists {
		return s, fmt.Errorf("open: %w: %s", ErrContainerExists, kind)
	}
	known := false
	for _, k := range inventory.Kinds() {
		if k == kind {
			known = true
		}
	}
	if !known {
		return s, fmt.Errorf("open: %w: %q", ErrUnknownContainer, kind)
	}
	if capacity < 0 {
		return s, fmt.Errorf("open: %w: capacity %d", ErrInvalidQuantity, capacity)
	}
	next := s.next()
	next.Containers[kind] = inventory.New(kind, capacity)
	return next, nil
}
