// Package inventory provides capacity-bounded item containers.
//
// Containers are values. Every operation returns a new Container and leaves
// the receiver untouched, so a caller can compute a full candidate state and
// discard it on error.
package inventory

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gravitas-games/crimeboss/pkg/models"
)

var (
	// ErrNotFound is returned when no stack has the requested instance id.
	ErrNotFound = errors.New("stack not found")
	// ErrCapacityExceeded is returned when a new stack would exceed capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidQuantity is returned for non-positive or oversized quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrDuplicateInstance is returned when an instance id is already present.
	ErrDuplicateInstance = errors.New("duplicate instance id")
)

// Kind identifies a container within a save.
type Kind string

const (
	// KindPlayer is the boss's backpack.
	KindPlayer Kind = "player"
	// KindSafe is the safe at the hideout.
	KindSafe Kind = "safe"
	// KindStorage is the storage locker.
	KindStorage Kind = "storage"
)

// Kinds returns the known container kinds in display order.
func Kinds() []Kind {
	return []Kind{KindPlayer, KindSafe, KindStorage}
}

// InstanceID identifies one stack. It is stable across moves.
type InstanceID string

// IDFunc produces fresh instance ids.
type IDFunc func() InstanceID

// NewInstanceID is the default IDFunc.
func NewInstanceID() InstanceID {
	return InstanceID(uuid.NewString())
}

// Stack is a quantity of one item occupying one container slot.
type Stack struct {
	InstanceID InstanceID    `json:"instanceId"`
	Item       models.ItemID `json:"item"`
	Qty        int           `json:"qty"`
	// Data holds per-instance payload such as the text of a report. Stacks with
	// data never merge. The map is treated as immutable once set.
	Data map[string]string `json:"data,omitempty"`
}

// Container is an ordered, capacity-bounded collection of stacks. Capacity
// counts distinct stacks, not units.
type Container struct {
	Kind     Kind    `json:"kind"`
	Capacity int     `json:"capacity"`
	Stacks   []Stack `json:"stacks"`
}

// New creates an empty container.
func New(kind Kind, capacity int) Container {
	return Container{
		Kind:     kind,
		Capacity: capacity,
		Stacks:   make([]Stack, 0),
	}
}
