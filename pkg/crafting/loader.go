package crafting

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/crimeboss/pkg/item"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

type recipeFile struct {
	Recipes []recipeRecord `yaml:"recipes"`
}

type recipeRecord struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Inputs   []string `yaml:"inputs"`
	Result   string   `yaml:"result"`
}

// LoadRecipes reads a recipe table from a YAML file and checks every item id
// against catalog.
func LoadRecipes(path string, catalog *item.Catalog) (*RecipeRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}
	reg, err := ParseRecipes(data, catalog)
	if err != nil {
		return nil, fmt.Errorf("recipes %s: %w", path, err)
	}
	return reg, nil
}

// ParseRecipes decodes YAML recipe data. A nil catalog skips id checks.
func ParseRecipes(data []byte, catalog *item.Catalog) (*RecipeRegistry, error) {
	var file recipeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}
	reg := NewRecipeRegistry()
	for i, rec := range file.Recipes {
		recipe := &Recipe{
			ID:       RecipeID(rec.ID),
			Name:     rec.Name,
			Category: rec.Category,
			Result:   models.ItemID(rec.Result),
		}
		for _, in := range rec.Inputs {
			recipe.Inputs = append(recipe.Inputs, models.ItemID(in))
		}
		if catalog != nil {
			if err := checkItems(recipe, catalog); err != nil {
				return nil, fmt.Errorf("recipe %d (%s): %w", i, rec.ID, err)
			}
		}
		if reg.Lookup(recipe.ID) != nil {
			return nil, fmt.Errorf("recipe %d: duplicate id %s", i, rec.ID)
		}
		if err := reg.Register(recipe); err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i, err)
		}
	}
	return reg, nil
}

func checkItems(recipe *Recipe, catalog *item.Catalog) error {
	var errs []error
	for _, id := range append(append([]models.ItemID(nil), recipe.Inputs...), recipe.Result) {
		if id == "" {
			continue
		}
		if _, ok := catalog.Lookup(id); !ok {
			errs = append(errs, catalog.UnknownItemError(id))
		}
	}
	return errors.Join(errs...)
}
