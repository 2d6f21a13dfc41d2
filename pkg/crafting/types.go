// Package crafting resolves ingredient combinations against a static recipe
// table.
package crafting

import (
	"errors"
	"sort"
	"strings"

	"github.com/gravitas-games/crimeboss/pkg/models"
)

// MaxSlots is the number of ingredient slots on the crafting bench.
const MaxSlots = 3

var (
	// ErrNoRecipe is returned when no recipe matches the ingredients. Callers
	// treat it as "nothing happens".
	ErrNoRecipe = errors.New("no matching recipe")
	// ErrAmbiguousRecipe is returned when two recipes share an ingredient multiset.
	ErrAmbiguousRecipe = errors.New("recipe inputs already registered")
)

// RecipeID uniquely identifies a recipe.
type RecipeID string

// Recipe maps an exact ingredient multiset to one result item.
type Recipe struct {
	ID       RecipeID        `json:"id"`
	Name     string          `json:"name,omitempty"`
	Category string          `json:"category,omitempty"`
	Inputs   []models.ItemID `json:"inputs"`
	Result   models.ItemID   `json:"result"`
}

// Arity is the number of filled slots the recipe requires.
func (r *Recipe) Arity() int {
	return len(r.Inputs)
}

// signature returns the order-independent key of an ingredient multiset.
func signature(ids []models.ItemID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x00")
}
