package engine

import (
	"errors"

	"github.com/gravitas-games/crimeboss/pkg/crafting"
	"github.com/gravitas-games/crimeboss/pkg/effects"
	"github.com/gravitas-games/crimeboss/pkg/inventory"
)

// Container-level kinds are shared with pkg/inventory and pkg/crafting so
// errors.Is works no matter which layer produced the error.
var (
	ErrNotFound          = inventory.ErrNotFound
	ErrCapacityExceeded  = inventory.ErrCapacityExceeded
	ErrInvalidQuantity   = inventory.ErrInvalidQuantity
	ErrDuplicateInstance = inventory.ErrDuplicateInstance
	ErrNoRecipe          = crafting.ErrNoRecipe
)

var (
	ErrNotEquippable    = errors.New("item is not equippable")
	ErrNotConsumable    = errors.New("item is not consumable")
	ErrEmptySlot        = errors.New("equipment slot is empty")
	ErrSameContainer    = errors.New("source and destination are the same container")
	ErrUnknownCharacter = errors.New("unknown character")
	ErrUnknownContainer = errors.New("unknown container")
	ErrUnknownItem      = errors.New("unknown item")
	ErrNoEffect         = errors.New("item would have no effect")
	ErrContainerExists  = errors.New("container already exists")
	ErrStoreClosed      = errors.New("store is closed")
)

// Code maps an operation error to a stable identifier for clients. It returns
// "" for nil and "internal" for anything unexpected.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoRecipe):
		return "no_recipe"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotEquippable):
		return "not_equippable"
	case errors.Is(err, ErrNotConsumable):
		return "not_consumable"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrEmptySlot):
		return "empty_slot"
	case errors.Is(err, ErrSameContainer):
		return "same_container"
	case errors.Is(err, ErrUnknownCharacter):
		return "unknown_character"
	case errors.Is(err, ErrUnknownContainer):
		return "unknown_container"
	case errors.Is(err, ErrUnknownItem):
		return "unknown_item"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrNoEffect):
		return "no_effect"
	case errors.Is(err, ErrContainerExists):
		return "container_exists"
	case errors.Is(err, ErrDuplicateInstance):
		return "duplicate_instance"
	case errors.Is(err, ErrStoreClosed):
		return "store_closed"
	case errors.Is(err, effects.ErrInvalidEffect):
		return "invalid_effect"
	default:
		return "internal"
	}
}
