package effects

import "fmt"

// Spec is the data form of a Descriptor as written in catalog files.
type Spec struct {
	Kind    Kind   `yaml:"kind" json:"kind"`
	Amount  int    `yaml:"amount,omitempty" json:"amount,omitempty"`
	Trait   string `yaml:"trait,omitempty" json:"trait,omitempty"`
	Rank    int    `yaml:"rank,omitempty" json:"rank,omitempty"`
	Counter string `yaml:"counter,omitempty" json:"counter,omitempty"`
	Effects []Spec `yaml:"effects,omitempty" json:"effects,omitempty"`
}

// Build converts the spec into a validated Descriptor.
func (s Spec) Build() (Descriptor, error) {
	var d Descriptor
	switch s.Kind {
	case KindHeal:
		d = Heal{Amount: s.Amount}
	case KindRestoreEnergy:
		d = RestoreEnergy{Amount: s.Amount}
	case KindGrantTrait:
		rank := s.Rank
		if rank == 0 {
			rank = 1
		}
		d = GrantTrait{Trait: s.Trait, Rank: rank}
	case KindReduceStress:
		d = ReduceStress{Amount: s.Amount}
	case KindIncrementCounter:
		amount := s.Amount
		if amount == 0 {
			amount = 1
		}
		d = IncrementCounter{Counter: s.Counter, Amount: amount}
	case KindComposite:
		inner := make([]Descriptor, 0, len(s.Effects))
		for i, child := range s.Effects {
			built, err := child.Build()
			if err != nil {
				return nil, fmt.Errorf("effect %d: %w", i, err)
			}
			inner = append(inner, built)
		}
		d = Composite{Effects: inner}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEffect, s.Kind)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Describe converts a Descriptor back into its data form.
func Describe(d Descriptor) Spec {
	switch e := d.(type) {
	case Heal:
		return Spec{Kind: KindHeal, Amount: e.Amount}
	case RestoreEnergy:
		return Spec{Kind: KindRestoreEnergy, Amount: e.Amount}
	case GrantTrait:
		return Spec{Kind: KindGrantTrait, Trait: e.Trait, Rank: e.Rank}
	case ReduceStress:
		return Spec{Kind: KindReduceStress, Amount: e.Amount}
	case IncrementCounter:
		return Spec{Kind: KindIncrementCounter, Counter: e.Counter, Amount: e.Amount}
	case Composite:
		inner := make([]Spec, 0, len(e.Effects))
		for _, child := range e.Effects {
			inner = append(inner, Describe(child))
		}
		return Spec{Kind: KindComposite, Effects: inner}
	default:
		return Spec{}
	}
}
