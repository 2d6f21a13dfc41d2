// Package engine implements the inventory and equipment transactions.
//
// Every operation is a pure function of a State and its parameters. It either
// returns a complete next State or an error, and never modifies the State it
// was given. Store wraps one State and serializes Dispatch calls.
package engine

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/crimeboss/pkg/crafting"
	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/item"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// Options tune engine behavior that differs between game modes.
type Options struct {
	// ConsumeWithoutEffect consumes an item even when its effect changes
	// nothing (healing at full hp). When false such a use fails with ErrNoEffect.
	ConsumeWithoutEffect bool
	// CraftSlots is the number of ingredient slots accepted by Craft.
	CraftSlots int
	// NewID generates stack instance ids. Defaults to inventory.NewInstanceID.
	NewID inventory.IDFunc
	// Logger receives operation logs. Defaults to a discarding logger.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the stock game rules.
func DefaultOptions() Options {
	return Options{
		ConsumeWithoutEffect: true,
		CraftSlots:           crafting.MaxSlots,
	}
}

// Engine applies transactions against a static item catalog and recipe table.
// It holds no game state and is safe for concurrent use.
type Engine struct {
	catalog *item.Catalog
	recipes *crafting.RecipeRegistry
	opts    Options
	log     logrus.FieldLogger
}

// New creates an engine. A nil recipe registry means nothing can be crafted.
func New(catalog *item.Catalog, recipes *crafting.RecipeRegistry, opts Options) *Engine {
	if recipes == nil {
		recipes = crafting.NewRecipeRegistry()
	}
	if opts.CraftSlots <= 0 || opts.CraftSlots > crafting.MaxSlots {
		opts.CraftSlots = crafting.MaxSlots
	}
	if opts.NewID == nil {
		opts.NewID = inventory.NewInstanceID
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Engine{
		catalog: catalog,
		recipes: recipes,
		opts:    opts,
		log:     log,
	}
}

// Catalog returns the item catalog the engine reads.
func (e *Engine) Catalog() *item.Catalog {
	return e.catalog
}

// Recipes returns the recipe table the engine reads.
func (e *Engine) Recipes() *crafting.RecipeRegistry {
	return e.recipes
}

func (e *Engine) definition(id models.ItemID) (item.Definition, error) {
	def, ok := e.catalog.Lookup(id)
	if !ok {
		return item.Definition{}, fmt.Errorf("%w: %v", ErrUnknownItem, e.catalog.UnknownItemError(id))
	}
	return def, nil
}
