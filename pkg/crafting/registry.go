package crafting

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gravitas-games/crimeboss/pkg/models"
)

// RecipeRegistry stores recipes with efficient lookup and thread-safe access.
type RecipeRegistry struct {
	mu          sync.RWMutex
	recipes     map[RecipeID]*Recipe
	byCategory  map[string][]RecipeID
	byOutput    map[models.ItemID][]RecipeID
	bySignature map[string]RecipeID
}

// NewRecipeRegistry creates an empty recipe registry.
func NewRecipeRegistry() *RecipeRegistry {
	return &RecipeRegistry{
		recipes:     make(map[RecipeID]*Recipe),
		byCategory:  make(map[string][]RecipeID),
		byOutput:    make(map[models.ItemID][]RecipeID),
		bySignature: make(map[string]RecipeID),
	}
}

// Register adds or updates a recipe in the registry.
// Returns an error if the recipe is invalid or its inputs collide with
// another recipe.
func (r *RecipeRegistry) Register(recipe *Recipe) error {
	if recipe == nil {
		return errors.New("recipe cannot be nil")
	}
	if recipe.ID == "" {
		return errors.New("recipe ID cannot be empty")
	}
	if recipe.Result == "" {
		return fmt.Errorf("recipe %s: result cannot be empty", recipe.ID)
	}
	if n := len(recipe.Inputs); n == 0 || n > MaxSlots {
		return fmt.Errorf("recipe %s: needs 1 to %d inputs, got %d", recipe.ID, MaxSlots, n)
	}
	for i, input := range recipe.Inputs {
		if input == "" {
			return fmt.Errorf("recipe %s: input %d: item ID cannot be empty", recipe.ID, i)
		}
	}

	stored := *recipe
	stored.Inputs = append([]models.ItemID(nil), recipe.Inputs...)
	sig := signature(stored.Inputs)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, taken := r.bySignature[sig]; taken && owner != stored.ID {
		return fmt.Errorf("%w: %s and %s", ErrAmbiguousRecipe, owner, stored.ID)
	}

	if existing, exists := r.recipes[stored.ID]; exists {
		r.removeIndices(existing)
	}

	r.recipes[stored.ID] = &stored
	r.bySignature[sig] = stored.ID
	if stored.Category != "" {
		r.byCategory[stored.Category] = append(r.byCategory[stored.Category], stored.ID)
	}
	r.byOutput[stored.Result] = append(r.byOutput[stored.Result], stored.ID)

	return nil
}

// removeIndices removes a recipe from secondary indices (caller must hold lock).
func (r *RecipeRegistry) removeIndices(recipe *Recipe) {
	delete(r.bySignature, signature(recipe.Inputs))

	if recipe.Category != "" {
		if ids, exists := r.byCategory[recipe.Category]; exists {
			r.byCategory[recipe.Category] = removeRecipeID(ids, recipe.ID)
			if len(r.byCategory[recipe.Category]) == 0 {
				delete(r.byCategory, recipe.Category)
			}
		}
	}

	if ids, exists := r.byOutput[recipe.Result]; exists {
		r.byOutput[recipe.Result] = removeRecipeID(ids, recipe.ID)
		if len(r.byOutput[recipe.Result]) == 0 {
			delete(r.byOutput, recipe.Result)
		}
	}
}

func removeRecipeID(ids []RecipeID, target RecipeID) []RecipeID {
	result := make([]RecipeID, 0, len(ids))
	for _, id := range ids {
		if id != target {
			result = append(result, id)
		}
	}
	return result
}

// Match finds the recipe whose inputs equal ingredients as a multiset. Order
// does not matter but arity does: a subset never matches.
func (r *RecipeRegistry) Match(ingredients []models.ItemID) (*Recipe, error) {
	if len(ingredients) == 0 || len(ingredients) > MaxSlots {
		return nil, fmt.Errorf("%w: %d ingredients", ErrNoRecipe, len(ingredients))
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySignature[signature(ingredients)]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoRecipe, ingredients)
	}
	return r.recipes[id], nil
}

// Lookup retrieves a recipe by ID. Returns nil if not found.
func (r *RecipeRegistry) Lookup(id RecipeID) *Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recipes[id]
}

// GetByCategory returns all recipe IDs in a category.
func (r *RecipeRegistry) GetByCategory(category string) []RecipeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RecipeID(nil), r.byCategory[category]...)
}

// GetByOutput returns all recipe IDs that produce a given item.
func (r *RecipeRegistry) GetByOutput(item models.ItemID) []RecipeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RecipeID(nil), r.byOutput[item]...)
}

// GetAll returns all recipes sorted by id.
func (r *RecipeRegistry) GetAll() []*Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		result = append(result, recipe)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Count returns the number of recipes in the registry.
func (r *RecipeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes)
}
