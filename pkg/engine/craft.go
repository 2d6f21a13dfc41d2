package engine

import (
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// Craft combines the stacks in slots into one unit of the matching recipe's
// result. Empty slot entries are skipped and the filled count must equal the
// recipe arity. One unit is removed per filled slot, so a stack named in two
// slots must hold two units. If the result does not fit after the
// ingredients are removed, nothing is consumed.
func (e *Engine) Craft(s State, kind inventory.Kind, slots []inventory.InstanceID) (State, error) {
	if len(slots) > e.opts.CraftSlots {
		return s, fmt.Errorf("craft: %w: %d slots, bench has %d", ErrInvalidQuantity, len(slots), e.opts.CraftSlots)
	}
	c, err := s.container(kind)
	if err != nil {
		return s, err
	}

	filled := make([]inventory.InstanceID, 0, len(slots))
	ingredients := make([]models.ItemID, 0, len(slots))
	for _, id := range slots {
		if id == "" {
			continue
		}
		st, _, ok := c.Find(id)
		if !ok {
			return s, fmt.Errorf("craft: %w: %s in %s", ErrNotFound, id, kind)
		}
		filled = append(filled, id)
		ingredients = append(ingredients, st.Item)
	}
	recipe, err := e.recipes.Match(ingredients)
	if err != nil {
		return s, err
	}
	result, err := e.definition(recipe.Result)
	if err != nil {
		return s, fmt.Errorf("craft %s: %w", recipe.ID, err)
	}

	for _, id := range filled {
		c, err = c.RemoveOne(id)
		if err != nil {
			return s, fmt.Errorf("craft %s: %w", recipe.ID, err)
		}
	}
	c, _, err = c.AddStack(result, 1, e.opts.NewID)
	if err != nil {
		return s, fmt.Errorf("craft %s: %w", recipe.ID, err)
	}

	next := s.next()
	next.Containers[kind] = c
	return next, nil
}
