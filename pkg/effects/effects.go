// Package effects interprets consumable effect descriptors.
//
// A Descriptor is a closed set of effect kinds. Items declare their effects as
// data (Spec) and a single applicator computes the next character and party
// values, so a new consumable never needs a new code branch.
package effects

import (
	"errors"
	"fmt"

	"github.com/gravitas-games/crimeboss/pkg/models"
)

// ErrInvalidEffect reports a malformed descriptor. It blocks consumption.
var ErrInvalidEffect = errors.New("invalid effect")

// Kind names an effect variant.
type Kind string

const (
	KindHeal             Kind = "heal"
	KindRestoreEnergy    Kind = "restore_energy"
	KindGrantTrait       Kind = "grant_trait"
	KindReduceStress     Kind = "reduce_stress"
	KindIncrementCounter Kind = "increment_counter"
	KindComposite        Kind = "composite"
)

// Target is the slice of game state an effect may change.
type Target struct {
	Character models.Character
	Party     models.Party
}

// Descriptor is implemented only by the effect types in this package.
type Descriptor interface {
	Kind() Kind
	Validate() error
	// apply mutates t in place and reports whether anything changed.
	apply(t *Target) bool
}

// Heal restores hit points up to the character's maximum.
type Heal struct {
	Amount int
}

// RestoreEnergy refills party energy up to its maximum.
type RestoreEnergy struct {
	Amount int
}

// GrantTrait gives the character a trait at Rank, replacing an existing entry
// with the same id.
type GrantTrait struct {
	Trait string
	Rank  int
}

// ReduceStress lowers stress, never below zero.
type ReduceStress struct {
	Amount int
}

// IncrementCounter bumps a named character counter (e.g. drug use).
type IncrementCounter struct {
	Counter string
	Amount  int
}

// Composite applies every effect in order. All or nothing.
type Composite struct {
	Effects []Descriptor
}

func (Heal) Kind() Kind             { return KindHeal }
func (RestoreEnergy) Kind() Kind    { return KindRestoreEnergy }
func (GrantTrait) Kind() Kind       { return KindGrantTrait }
func (ReduceStress) Kind() Kind     { return KindReduceStress }
func (IncrementCounter) Kind() Kind { return KindIncrementCounter }
func (Composite) Kind() Kind        { return KindComposite }

func (e Heal) Validate() error {
	return positive(KindHeal, e.Amount)
}

func (e RestoreEnergy) Validate() error {
	return positive(KindRestoreEnergy, e.Amount)
}

func (e GrantTrait) Validate() error {
	if e.Trait == "" {
		return fmt.Errorf("%w: %s requires a trait id", ErrInvalidEffect, KindGrantTrait)
	}
	if e.Rank < 1 {
		return fmt.Errorf("%w: %s rank must be >= 1, got %d", ErrInvalidEffect, KindGrantTrait, e.Rank)
	}
	return nil
}

func (e ReduceStress) Validate() error {
	return positive(KindReduceStress, e.Amount)
}

func (e IncrementCounter) Validate() error {
	if e.Counter == "" {
		return fmt.Errorf("%w: %s requires a counter name", ErrInvalidEffect, KindIncrementCounter)
	}
	return positive(KindIncrementCounter, e.Amount)
}

func (e Composite) Validate() error {
	if len(e.Effects) == 0 {
		return fmt.Errorf("%w: empty %s", ErrInvalidEffect, KindComposite)
	}
	for i, inner := range e.Effects {
		if inner == nil {
			return fmt.Errorf("%w: %s entry %d is nil", ErrInvalidEffect, KindComposite, i)
		}
		if err := inner.Validate(); err != nil {
			return fmt.Errorf("%s entry %d: %w", KindComposite, i, err)
		}
	}
	return nil
}

func positive(kind Kind, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %s amount must be positive, got %d", ErrInvalidEffect, kind, amount)
	}
	return nil
}

func (e Heal) apply(t *Target) bool {
	before := t.Character.HP
	t.Character.HP = capAt(before+e.Amount, t.Character.MaxHP)
	if t.Character.HP < before {
		// already above max; healing never lowers hp
		t.Character.HP = before
	}
	return t.Character.HP != before
}

func (e RestoreEnergy) apply(t *Target) bool {
	before := t.Party.Energy
	t.Party.Energy = capAt(before+e.Amount, t.Party.MaxEnergy)
	if t.Party.Energy < before {
		t.Party.Energy = before
	}
	return t.Party.Energy != before
}

func (e GrantTrait) apply(t *Target) bool {
	prev, had := t.Character.Trait(e.Trait)
	t.Character.GrantTrait(e.Trait, e.Rank)
	return !had || prev.Rank != e.Rank
}

func (e ReduceStress) apply(t *Target) bool {
	before := t.Character.Stress
	next := before - e.Amount
	if next < 0 {
		next = 0
	}
	if next > before {
		next = before
	}
	t.Character.Stress = next
	return next != before
}

func (e IncrementCounter) apply(t *Target) bool {
	if t.Character.Counters == nil {
		t.Character.Counters = make(map[string]int)
	}
	t.Character.Counters[e.Counter] += e.Amount
	return true
}

func (e Composite) apply(t *Target) bool {
	changed := false
	for _, inner := range e.Effects {
		if inner.apply(t) {
			changed = true
		}
	}
	return changed
}

// capAt clamps v to max when max is positive. A zero max means uncapped.
func capAt(v, max int) int {
	if max > 0 && v > max {
		return max
	}
	return v
}

// Apply computes the target after d. The input target is not modified.
// changed is false when every effect was already capped; that is not an error.
func Apply(t Target, d Descriptor) (next Target, changed bool, err error) {
	if d == nil {
		return t, false, fmt.Errorf("%w: nil descriptor", ErrInvalidEffect)
	}
	if err := d.Validate(); err != nil {
		return t, false, err
	}
	next = Target{Character: t.Character.Clone(), Party: t.Party}
	changed = d.apply(&next)
	return next, changed, nil
}
