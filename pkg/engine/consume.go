package engine

import (
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/effects"
	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// Consume applies the effect of one unit of stack id to a character and
// removes that unit. Bundled effects apply together or not at all.
func (e *Engine) Consume(s State, charID models.CharacterID, kind inventory.Kind, id inventory.InstanceID) (State, error) {
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
		return s, fmt.Errorf("consume: %w: %s in %s", ErrNotFound, id, kind)
	}
	def, err := e.definition(st.Item)
	if err != nil {
		return s, fmt.Errorf("consume: %w", err)
	}
	effect, ok := def.ConsumableEffect()
	if !ok {
		return s, fmt.Errorf("consume: %w: %s", ErrNotConsumable, def.ID)
	}

	target, changed, err := effects.Apply(effects.Target{Character: ch, Party: s.Party}, effect)
	if err != nil {
		return s, fmt.Errorf("consume %s: %w", def.ID, err)
	}
	if !changed && !e.opts.ConsumeWithoutEffect {
		return s, fmt.Errorf("consume: %w: %s on %s", ErrNoEffect, def.ID, charID)
	}
	c, err = c.RemoveOne(id)
	if err != nil {
		return s, fmt.Errorf("consume: %w", err)
	}

	next := s.next()
	next.Containers[kind] = c
	next.Characters[charID] = target.Character
	next.Party = target.Party
	return next, nil
}
