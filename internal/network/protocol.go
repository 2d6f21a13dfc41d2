package network

import (
	"encoding/json"

	"github.com/gravitas-games/crimeboss/pkg/engine"
)

// Message types - Client → Server
const (
	MsgTypeEquip   = "equip"
	MsgTypeUnequip = "unequip"
	MsgTypeConsume = "consume"
	MsgTypeMove    = "move"
	MsgTypeSplit   = "split"
	MsgTypeDiscard = "discard"
	MsgTypeCraft   = "craft"
	MsgTypeState   = "state"
	MsgTypePing    = "ping"

	// Game master only
	MsgTypeGrant         = "grant"
	MsgTypeOpenContainer = "open_container"
)

// Message types - Server → Client
const (
	MsgTypeWelcome  = "welcome"
	MsgTypeSnapshot = "state"
	MsgTypeError    = "error"
	MsgTypeNoop     = "noop"
	MsgTypePong     = "pong"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type string `json:"type"`
	// RequestID is echoed back on the reply so the UI can match a drag
	// or click to its result.
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Payload   interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// EquipPayload wears an item from a container
type EquipPayload struct {
	Character string `json:"character"`
	Container string `json:"container"`
	Instance  string `json:"instance"`
}

// UnequipPayload returns a worn item to a container
type UnequipPayload struct {
	Character string `json:"character"`
	Slot      string `json:"slot"`
	Container string `json:"container"`
}

// ConsumePayload uses one unit of a consumable
type ConsumePayload struct {
	Character string `json:"character"`
	Container string `json:"container"`
	Instance  string `json:"instance"`
}

// MovePayload drags a stack between containers. A positive Quantity smaller
// than the stack splits it.
type MovePayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Instance string `json:"instance"`
	Quantity int    `json:"quantity,omitempty"`
}

// DiscardPayload trashes a stack
type DiscardPayload struct {
	Container string `json:"container"`
	Instance  string `json:"instance"`
}

// CraftPayload lists the bench slots; empty strings are empty slots
type CraftPayload struct {
	Container string   `json:"container"`
	Slots     []string `json:"slots"`
}

// GrantPayload delivers items into a container. Data marks a one-off
// instance such as a named police report.
type GrantPayload struct {
	Container string            `json:"container"`
	Item      string            `json:"item"`
	Quantity  int               `json:"quantity"`
	Data      map[string]string `json:"data,omitempty"`
}

// OpenContainerPayload adds an empty container, e.g. a bought safe house
type OpenContainerPayload struct {
	Container string `json:"container"`
	Capacity  int    `json:"capacity"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	BossID   string       `json:"boss_id"`
	Username string       `json:"username"`
	State    engine.State `json:"state"`
}

// SnapshotPayload carries the full save after a change or on request
type SnapshotPayload struct {
	State engine.State `json:"state"`
}

// NoopPayload tells the UI an action had nothing to do
type NoopPayload struct {
	Reason string `json:"reason"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
