package engine

import (
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// Equip wears one unit of the stack id from container kind. An item already
// in the target slot goes back into the same container first; if it cannot
// fit, the whole equip fails and nothing changes.
func (e *Engine) Equip(s State, charID models.CharacterID, kind inventory.Kind, id inventory.InstanceID) (State, error) {
	ch, err := s.character(charID)
	if err != nil {
		return s, err
	}
	c, err := s.container(kind)
	if err != nil {
		return s, err
	}
	st, _, ok := c.Find(id)
	if !ok {
		return s, fmt.Errorf("equip: %w: %s in %s", ErrNotFound, id, kind)
	}
	def, err := e.definition(st.Item)
	if err != nil {
		return s, fmt.Errorf("equip: %w", err)
	}
	slot, ok := def.EquipSlot()
	if !ok {
		return s, fmt.Errorf("equip: %w: %s", ErrNotEquippable, def.ID)
	}
	// equipment slots hold only an item id, so per-instance data would be lost
	if len(st.Data) > 0 {
		return s, fmt.Errorf("equip: %w: %s carries instance data", ErrNotEquippable, id)
	}

	if worn, occupied := ch.Equipment.Get(slot); occupied {
		wornDef, err := e.definition(worn)
		if err != nil {
			return s, fmt.Errorf("equip: returning %s: %w", worn, err)
		}
		c, _, err = c.AddStack(wornDef, 1, e.opts.NewID)
		if err != nil {
			return s, fmt.Errorf("equip: returning %s from %s: %w", worn, slot, err)
		}
	}
	c, err = c.RemoveOne(id)
	if err != nil {
		return s, fmt.Errorf("equip: %w", err)
	}

	ch = ch.Clone()
	ch.Equipment[slot] = def.ID

	next := s.next()
	next.Containers[kind] = c
	next.Characters[charID] = ch
	return next, nil
}

// Unequip returns the item in slot to container kind. The slot stays
// equipped if the container cannot take it.
func (e *Engine) Unequip(s State, charID models.CharacterID, slot models.Slot, kind inventory.Kind) (State, error) {
	ch, err := s.character(charID)
	if err != nil {
		return s, err
	}
	c, err := s.container(kind)
	if err != nil {
		return s, err
	}
	worn, ok := ch.Equipment.Get(slot)
	if !ok {
		return s, fmt.Errorf("unequip: %w: %s", ErrEmptySlot, slot)
	}
	def, err := e.definition(worn)
	if err != nil {
		return s, fmt.Errorf("unequip: %w", err)
	}
	c, _, err = c.AddStack(def, 1, e.opts.NewID)
	if err != nil {
		return s, fmt.Errorf("unequip: %w", err)
	}

	ch = ch.Clone()
	delete(ch.Equipment, slot)

	next := s.next()
	next.Containers[kind] = c
	next.Characters[charID] = ch
	return next, nil
}
