// Package models holds the plain data shared by the engine packages: item and
// character identifiers, equipment slots, traits and party resources.
package models

// ItemID references a static item definition in the catalog.
type ItemID string

// CharacterID identifies a character in a save.
type CharacterID string

// Slot names a loadout location that holds at most one item.
type Slot string

const (
	SlotHead      Slot = "head"
	SlotMainHand  Slot = "main_hand"
	SlotOffHand   Slot = "off_hand"
	SlotBody      Slot = "body"
	SlotAccessory Slot = "accessory"
	SlotGadget    Slot = "gadget"
	SlotFeet      Slot = "feet"
)

var slotOrder = []Slot{SlotHead, SlotMainHand, SlotOffHand, SlotBody, SlotAccessory, SlotGadget, SlotFeet}

// Slots returns every equipment slot in display order.
func Slots() []Slot {
	out := make([]Slot, len(slotOrder))
	copy(out, slotOrder)
	return out
}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	for _, known := range slotOrder {
		if s == known {
			return true
		}
	}
	return false
}

// Equipment maps a slot to the item worn there.
type Equipment map[Slot]ItemID

// Clone returns an independent copy. A nil map clones to an empty one.
func (e Equipment) Clone() Equipment {
	out := make(Equipment, len(e))
	for slot, id := range e {
		out[slot] = id
	}
	return out
}

// Get returns the item in slot, if any.
func (e Equipment) Get(slot Slot) (ItemID, bool) {
	id, ok := e[slot]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Count returns how many slots hold item id.
func (e Equipment) Count(id ItemID) int {
	n := 0
	for _, worn := range e {
		if worn == id {
			n++
		}
	}
	return n
}

// Trait is a ranked perk held by a character.
type Trait struct {
	ID   string `json:"id"`
	Rank int    `json:"rank"`
}

// Character is a party member with a loadout, traits and personal resources.
type Character struct {
	ID        CharacterID    `json:"id"`
	Name      string         `json:"name"`
	HP        int            `json:"hp"`
	MaxHP     int            `json:"max_hp"`
	Stress    int            `json:"stress"`
	Equipment Equipment      `json:"equipment"`
	Traits    []Trait        `json:"traits,omitempty"`
	Counters  map[string]int `json:"counters,omitempty"`
}

// NewCharacter returns a character at full health with an empty loadout.
func NewCharacter(id CharacterID, name string, maxHP int) Character {
	return Character{
		ID:        id,
		Name:      name,
		HP:        maxHP,
		MaxHP:     maxHP,
		Equipment: make(Equipment),
	}
}

// Clone deep-copies the character so the copy can be modified freely.
func (c Character) Clone() Character {
	out := c
	out.Equipment = c.Equipment.Clone()
	if c.Traits != nil {
		out.Traits = make([]Trait, len(c.Traits))
		copy(out.Traits, c.Traits)
	}
	if c.Counters != nil {
		out.Counters = make(map[string]int, len(c.Counters))
		for k, v := range c.Counters {
			out.Counters[k] = v
		}
	}
	return out
}

// Trait looks up a trait by id.
func (c Character) Trait(id string) (Trait, bool) {
	for _, t := range c.Traits {
		if t.ID == id {
			return t, true
		}
	}
	return Trait{}, false
}

// GrantTrait sets trait id to rank, replacing any existing entry with the same id.
// Granting the same trait twice leaves a single entry at rank.
func (c *Character) GrantTrait(id string, rank int) {
	for i := range c.Traits {
		if c.Traits[i].ID == id {
			c.Traits[i].Rank = rank
			return
		}
	}
	c.Traits = append(c.Traits, Trait{ID: id, Rank: rank})
}

// RaiseTrait increases the rank of trait id by one, adding it at rank 1 when
// missing. Used while building a character, not by consumables.
func (c *Character) RaiseTrait(id string) Trait {
	for i := range c.Traits {
		if c.Traits[i].ID == id {
			c.Traits[i].Rank++
			return c.Traits[i]
		}
	}
	t := Trait{ID: id, Rank: 1}
	c.Traits = append(c.Traits, t)
	return t
}

// Counter returns the value of a named counter.
func (c Character) Counter(name string) int {
	return c.Counters[name]
}
