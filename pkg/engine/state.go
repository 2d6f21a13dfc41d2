package engine

import (
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/item"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// State is one complete save: containers, characters and party resources.
// Operations never modify a State they are given; they return a new one.
type State struct {
	Version    uint64                                  `json:"version"`
	Party      models.Party                            `json:"party"`
	Characters map[models.CharacterID]models.Character `json:"characters"`
	Containers map[inventory.Kind]inventory.Container  `json:"containers"`
}

// NewState returns an empty save.
func NewState(party models.Party) State {
	return State{
		Party:      party,
		Characters: make(map[models.CharacterID]models.Character),
		Containers: make(map[inventory.Kind]inventory.Container),
	}
}

// Clone deep-copies the state.
func (s State) Clone() State {
	out := s.next()
	out.Version = s.Version
	for id, ch := range out.Characters {
		out.Characters[id] = ch.Clone()
	}
	for kind, c := range out.Containers {
		out.Containers[kind] = c.Clone()
	}
	return out
}

// next copies the top-level maps and bumps the version. Container and
// character values are shared until an operation replaces them.
func (s State) next() State {
	out := State{
		Version:    s.Version + 1,
		Party:      s.Party,
		Characters: make(map[models.CharacterID]models.Character, len(s.Characters)),
		Containers: make(map[inventory.Kind]inventory.Container, len(s.Containers)),
	}
	for id, ch := range s.Characters {
		out.Characters[id] = ch
	}
	for kind, c := range s.Containers {
		out.Containers[kind] = c
	}
	return out
}

func (s State) character(id models.CharacterID) (models.Character, error) {
	ch, ok := s.Characters[id]
	if !ok {
		return models.Character{}, fmt.Errorf("%w: %s", ErrUnknownCharacter, id)
	}
	return ch, nil
}

func (s State) container(kind inventory.Kind) (inventory.Container, error) {
	c, ok := s.Containers[kind]
	if !ok {
		return inventory.Container{}, fmt.Errorf("%w: %s", ErrUnknownContainer, kind)
	}
	return c, nil
}

// Total returns how many units of id exist across every container and every
// equipment slot.
func (s State) Total(id models.ItemID) int {
	total := 0
	for _, c := range s.Containers {
		total += c.Count(id)
	}
	for _, ch := range s.Characters {
		total += ch.Equipment.Count(id)
	}
	return total
}

// Validate checks every cross-collection invariant of a save. It is used on
// snapshots loaded from storage and in tests.
func (s State) Validate(catalog *item.Catalog) error {
	stackable := func(id models.ItemID) bool {
		def, ok := catalog.Lookup(id)
		return ok && def.Stackable()
	}
	for kind, c := range s.Containers {
		if c.Kind != kind {
			return fmt.Errorf("container %s is filed under %s", c.Kind, kind)
		}
		if err := c.Validate(stackable); err != nil {
			return err
		}
		for _, st := range c.Stacks {
			if _, ok := catalog.Lookup(st.Item); !ok {
				return fmt.Errorf("%w: %s in %s", ErrUnknownItem, st.Item, kind)
			}
		}
	}
	for id, ch := range s.Characters {
		if ch.ID != id {
			return fmt.Errorf("character %s is filed under %s", ch.ID, id)
		}
		for slot, itemID := range ch.Equipment {
			def, ok := catalog.Lookup(itemID)
			if !ok {
				return fmt.Errorf("%w: %s worn by %s", ErrUnknownItem, itemID, id)
			}
			if want, ok := def.EquipSlot(); !ok || want != slot {
				return fmt.Errorf("%w: %s worn in %s by %s", ErrNotEquippable, itemID, slot, id)
			}
		}
		seen := make(map[string]struct{}, len(ch.Traits))
		for _, t := range ch.Traits {
			if t.Rank < 1 {
				return fmt.Errorf("character %s: trait %s has rank %d", id, t.ID, t.Rank)
			}
			if _, dup := seen[t.ID]; dup {
				return fmt.Errorf("character %s: duplicate trait %s", id, t.ID)
			}
			seen[t.ID] = struct{}{}
		}
	}
	return nil
}
