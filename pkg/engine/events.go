package engine

import (
	"sync"
	"time"
)

// EventType represents the outcome of a dispatched action.
type EventType int

const (
	// EventApplied is emitted after a new state was published.
	EventApplied EventType = iota
	// EventRejected is emitted when an action failed and state is unchanged.
	EventRejected
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventApplied:
		return "Applied"
	case EventRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Event describes one dispatched action.
type Event struct {
	Type      EventType `json:"type"`
	Owner     string    `json:"owner"`
	Action    string    `json:"action"`
	Version   uint64    `json:"version"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	// State is the published snapshot for EventApplied. Handlers must treat
	// it as read-only.
	State *State `json:"-"`
}

// EventBus manages event subscriptions and delivery.
type EventBus interface {
	// Subscribe registers a handler for events of a specific owner.
	Subscribe(owner string, handler func(Event))

	// Unsubscribe removes the handler for an owner.
	Unsubscribe(owner string)

	// Publish sends an event to subscribed handlers.
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory event bus implementation.
type SimpleEventBus struct {
	mu       sync.RWMutex
	handlers map[string]func(Event)
}

// NewSimpleEventBus creates a new event bus.
func NewSimpleEventBus() *SimpleEventBus {
	return &SimpleEventBus{
		handlers: make(map[string]func(Event)),
	}
}

// Subscribe registers a handler for events of a specific owner, replacing any
// previous handler.
func (bus *SimpleEventBus) Subscribe(owner string, handler func(Event)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[owner] = handler
}

// Unsubscribe removes the handler for an owner.
func (bus *SimpleEventBus) Unsubscribe(owner string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.handlers, owner)
}

// Publish sends an event to the owner's handler.
// Handlers are called asynchronously in separate goroutines to prevent blocking.
func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	if handler, exists := bus.handlers[event.Owner]; exists {
		go handler(event)
	}
}

// NullEventBus is an event bus that does nothing (for testing or when events not needed).
type NullEventBus struct{}

// NewNullEventBus creates a new null event bus.
func NewNullEventBus() *NullEventBus {
	return &NullEventBus{}
}

// Subscribe does nothing.
func (bus *NullEventBus) Subscribe(owner string, handler func(Event)) {}

// Unsubscribe does nothing.
func (bus *NullEventBus) Unsubscribe(owner string) {}

// Publish does nothing.
func (bus *NullEventBus) Publish(event Event) {}
