// Package item holds the static item catalog the engine reads by id.
package item

import (
	"errors"
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/effects"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// Kind is the variant tag of an item definition. Each operation switches on it
// instead of sniffing optional fields.
type Kind string

const (
	// KindMaterial is a plain stackable item (crafting ingredients, loot).
	KindMaterial Kind = "material"
	// KindEquipment can be worn in exactly one slot.
	KindEquipment Kind = "equipment"
	// KindConsumable carries an effect applied on use.
	KindConsumable Kind = "consumable"
	// KindUnique carries per-instance data (a written report) and never stacks.
	KindUnique Kind = "unique"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMaterial, KindEquipment, KindConsumable, KindUnique:
		return true
	}
	return false
}

// Definition is immutable reference data for one item id.
type Definition struct {
	ID          models.ItemID
	Name        string
	Category    string
	Description string
	Kind        Kind
	// Slot is set only for KindEquipment.
	Slot models.Slot
	// Effect is set only for KindConsumable.
	Effect    effects.Descriptor
	BaseValue int
}

// Stackable reports whether stacks of this item merge by id.
func (d Definition) Stackable() bool {
	return d.Kind != KindUnique
}

// EquipSlot returns the slot the item is worn in.
func (d Definition) EquipSlot() (models.Slot, bool) {
	if d.Kind != KindEquipment {
		return "", false
	}
	return d.Slot, true
}

// ConsumableEffect returns the effect applied on use.
func (d Definition) ConsumableEffect() (effects.Descriptor, bool) {
	if d.Kind != KindConsumable || d.Effect == nil {
		return nil, false
	}
	return d.Effect, true
}

// Validate reports every problem with the definition at once.
func (d Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if !d.Kind.Valid() {
		errs = append(errs, fmt.Errorf("kind %q is not valid", d.Kind))
	}
	if d.BaseValue < 0 {
		errs = append(errs, errors.New("base value must be >= 0"))
	}
	switch d.Kind {
	case KindEquipment:
		if !d.Slot.Valid() {
			errs = append(errs, fmt.Errorf("slot %q is not a valid equipment slot", d.Slot))
		}
		if d.Effect != nil {
			errs = append(errs, errors.New("equipment cannot carry a consumable effect"))
		}
	case KindConsumable:
		if d.Effect == nil {
			errs = append(errs, errors.New("consumable requires an effect"))
		} else if err := d.Effect.Validate(); err != nil {
			errs = append(errs, err)
		}
		if d.Slot != "" {
			errs = append(errs, errors.New("consumable cannot have an equipment slot"))
		}
	default:
		if d.Slot != "" {
			errs = append(errs, fmt.Errorf("%s item cannot have an equipment slot", d.Kind))
		}
		if d.Effect != nil {
			errs = append(errs, fmt.Errorf("%s item cannot carry an effect", d.Kind))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Details is the client-facing view of a definition.
type Details struct {
	ID          models.ItemID `json:"id"`
	Name        string        `json:"name,omitempty"`
	Category    string        `json:"category,omitempty"`
	Description string        `json:"description,omitempty"`
	Kind        Kind          `json:"kind"`
	Slot        models.Slot   `json:"slot,omitempty"`
	Effect      *effects.Spec `json:"effect,omitempty"`
	BaseValue   int           `json:"baseValue"`
	Stackable   bool          `json:"stackable"`
}

// Details returns the client-facing view of d.
func (d Definition) Details() Details {
	out := Details{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Kind:        d.Kind,
		Slot:        d.Slot,
		BaseValue:   d.BaseValue,
		Stackable:   d.Stackable(),
	}
	if d.Effect != nil {
		spec := effects.Describe(d.Effect)
		out.Effect = &spec
	}
	return out
}
