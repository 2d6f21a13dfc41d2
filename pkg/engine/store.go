package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/crimeboss/pkg/inventory"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// Action is one player request. The set of actions is closed.
type Action interface {
	// Name identifies the action in logs and events.
	Name() string
	apply(e *Engine, s State) (State, error)
}

// EquipAction wears an item from a container.
type EquipAction struct {
	Character models.CharacterID
	Container inventory.Kind
	Instance  inventory.InstanceID
}

// UnequipAction returns a worn item to a container.
type UnequipAction struct {
	Character models.CharacterID
	Slot      models.Slot
	Container inventory.Kind
}

// ConsumeAction uses one unit of a consumable on a character.
type ConsumeAction struct {
	Character models.CharacterID
	Container inventory.Kind
	Instance  inventory.InstanceID
}

// MoveAction drags a whole stack between containers.
type MoveAction struct {
	From     inventory.Kind
	To       inventory.Kind
	Instance inventory.InstanceID
}

// SplitAction drags part of a stack between containers.
type SplitAction struct {
	From     inventory.Kind
	To       inventory.Kind
	Instance inventory.InstanceID
	Quantity int
}

// DiscardAction trashes a whole stack.
type DiscardAction struct {
	Container inventory.Kind
	Instance  inventory.InstanceID
}

// GrantAction delivers items into a container. When Data is set a single
// data-bearing unit is delivered and Quantity is ignored.
type GrantAction struct {
	Container inventory.Kind
	Item      models.ItemID
	Quantity  int
	Data      map[string]string
}

// CraftAction combines the stacks on the crafting bench.
type CraftAction struct {
	Container inventory.Kind
	Slots     []inventory.InstanceID
}

// OpenContainerAction adds an empty container to the save.
type OpenContainerAction struct {
	Container inventory.Kind
	Capacity  int
}

func (EquipAction) Name() string         { return "equip" }
func (UnequipAction) Name() string       { return "unequip" }
func (ConsumeAction) Name() string       { return "consume" }
func (MoveAction) Name() string          { return "move" }
func (SplitAction) Name() string         { return "split" }
func (DiscardAction) Name() string       { return "discard" }
func (GrantAction) Name() string         { return "grant" }
func (CraftAction) Name() string         { return "craft" }
func (OpenContainerAction) Name() string { return "open_container" }

func (a EquipAction) apply(e *Engine, s State) (State, error) {
	return e.Equip(s, a.Character, a.Container, a.Instance)
}

func (a UnequipAction) apply(e *Engine, s State) (State, error) {
	return e.Unequip(s, a.Character, a.Slot, a.Container)
}

func (a ConsumeAction) apply(e *Engine, s State) (State, error) {
	return e.Consume(s, a.Character, a.Container, a.Instance)
}

func (a MoveAction) apply(e *Engine, s State) (State, error) {
	return e.Move(s, a.From, a.To, a.Instance)
}

func (a SplitAction) apply(e *Engine, s State) (State, error) {
	return e.Split(s, a.From, a.To, a.Instance, a.Quantity)
}

func (a DiscardAction) apply(e *Engine, s State) (State, error) {
	return e.Discard(s, a.Container, a.Instance)
}

func (a GrantAction) apply(e *Engine, s State) (State, error) {
	if len(a.Data) > 0 {
		return e.GrantInstance(s, a.Container, a.Item, a.Data)
	}
	return e.Grant(s, a.Container, a.Item, a.Quantity)
}

func (a CraftAction) apply(e *Engine, s State) (State, error) {
	return e.Craft(s, a.Container, a.Slots)
}

func (a OpenContainerAction) apply(e *Engine, s State) (State, error) {
	return e.OpenContainer(s, a.Container, a.Capacity)
}

// Store owns the current state of one save. Dispatch calls are serialized, so
// two rapid clicks never act on the same base state.
type Store struct {
	mu     sync.Mutex
	owner  string
	engine *Engine
	bus    EventBus
	state  State
	closed bool
}

// NewStore wraps initial. A nil bus disables events.
func NewStore(owner string, e *Engine, initial State, bus EventBus) *Store {
	if bus == nil {
		bus = NewNullEventBus()
	}
	return &Store{
		owner:  owner,
		engine: e,
		bus:    bus,
		state:  initial.Clone(),
	}
}

// Owner returns the save key the store was created for.
func (s *Store) Owner() string {
	return s.owner
}

// Close stops the store from accepting actions and returns its final state.
// Every Dispatch that succeeded before Close is part of that state.
func (s *Store) Close() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.state.Clone()
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies a to the current state. On success the new state is
// published and a copy returned; on error the current state is returned
// unchanged alongside the error.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state.Clone(), ErrStoreClosed
	}

	log := s.engine.log.WithFields(logrus.Fields{
		"owner": s.owner,
		"op":    a.Name(),
	})

	next, err := a.apply(s.engine, s.state)
	if err != nil {
		code := Code(err)
		if errors.Is(err, ErrNoRecipe) {
			log.Debug("no recipe matched")
		} else {
			log.WithField("code", code).WithError(err).Info("transaction rejected")
		}
		s.bus.Publish(Event{
			Type:      EventRejected,
			Owner:     s.owner,
			Action:    a.Name(),
			Version:   s.state.Version,
			Code:      code,
			Timestamp: time.Now(),
		})
		return s.state.Clone(), err
	}

	s.state = next
	log.WithField("version", next.Version).Debug("transaction applied")
	published := next.Clone()
	s.bus.Publish(Event{
		Type:      EventApplied,
		Owner:     s.owner,
		Action:    a.Name(),
		Version:   next.Version,
		Timestamp: time.Now(),
		State:     &published,
	})
	return next.Clone(), nil
}
