package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/crimeboss/internal/network"
	"github.com/gravitas-games/crimeboss/pkg/engine"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Time allowed for one action including persistence lookups
	actionTimeout = 5 * time.Second
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	ws     *websocket.Conn
	server *Server
	boss   *models.Boss
	log    logrus.FieldLogger

	// Buffered channel for outbound messages
	send      chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

// NewConnection creates a connection for an authenticated boss
func NewConnection(ws *websocket.Conn, server *Server, boss *models.Boss) *Connection {
	return &Connection{
		ws:     ws,
		server: server,
		boss:   boss,
		log:    server.log.WithField("boss", boss.SaveKey()),
		send:   make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	c.welcome()
	c.readPump() // Blocking
}

func (c *Connection) welcome() {
	ctx, cancel := context.WithTimeout(c.server.ctx, actionTimeout)
	defer cancel()
	store, err := c.server.session.Store(ctx, c.boss)
	if err != nil {
		c.log.WithError(err).Error("Failed to open save")
		c.SendError("", "save_unavailable", "Failed to load your save")
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			BossID:   c.boss.ID,
			Username: c.boss.Username,
			State:    store.State(),
		},
	})
}

// readPump pumps messages from the WebSocket connection to the server
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("WebSocket read error")
			}
			break
		}

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.log.WithError(err).Debug("Failed to parse client message")
			c.SendError("", "invalid_message", "Failed to parse message")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Warn("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.server.ctx.Done():
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	switch {
	case msg.Type == network.MsgTypePing:
		c.handlePing(msg)
	case msg.Type == network.MsgTypeState:
		c.handleState(msg)
	case network.IsAction(msg.Type):
		c.handleAction(msg)
	default:
		c.log.Debugf("Unknown message type: %s", msg.Type)
		c.SendError(msg.RequestID, "unknown_message_type", "Unknown message type")
	}
}

// handleAction decodes and dispatches one inventory action. The sender gets
// the result; other tabs on the same save get the new state.
func (c *Connection) handleAction(msg *network.ClientMessage) {
	if network.IsPrivileged(msg.Type) && !c.boss.HasPermission(models.PermGameMaster) {
		c.log.Warnf("Refused %s without game master permission", msg.Type)
		c.SendError(msg.RequestID, "forbidden", "Not allowed")
		return
	}
	action, err := network.DecodeAction(msg)
	if err != nil {
		c.SendError(msg.RequestID, "invalid_payload", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.server.ctx, actionTimeout)
	defer cancel()
	state, err := c.server.session.Dispatch(ctx, c.boss, action)
	switch {
	case errors.Is(err, engine.ErrNoRecipe):
		c.SendMessage(&network.ServerMessage{
			Type:      network.MsgTypeNoop,
			RequestID: msg.RequestID,
			Payload:   network.NoopPayload{Reason: engine.Code(err)},
		})
	case err != nil:
		c.SendError(msg.RequestID, engine.Code(err), err.Error())
	default:
		snapshot := &network.ServerMessage{
			Type:    network.MsgTypeSnapshot,
			Payload: network.SnapshotPayload{State: state},
		}
		c.server.session.BroadcastExcept(c.boss.SaveKey(), c, snapshot)
		reply := *snapshot
		reply.RequestID = msg.RequestID
		c.SendMessage(&reply)
	}
}

func (c *Connection) handleState(msg *network.ClientMessage) {
	ctx, cancel := context.WithTimeout(c.server.ctx, actionTimeout)
	defer cancel()
	store, err := c.server.session.Store(ctx, c.boss)
	if err != nil {
		c.log.WithError(err).Error("Failed to open save")
		c.SendError(msg.RequestID, "save_unavailable", "Failed to load your save")
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type:      network.MsgTypeSnapshot,
		RequestID: msg.RequestID,
		Payload:   network.SnapshotPayload{State: store.State()},
	})
}

func (c *Connection) handlePing(msg *network.ClientMessage) {
	c.SendMessage(&network.ServerMessage{
		Type:      network.MsgTypePong,
		RequestID: msg.RequestID,
		Payload:   map[string]interface{}{"timestamp": time.Now().Unix()},
	})
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.WithError(err).Error("Failed to marshal message")
		return
	}

	select {
	case <-c.closed:
	case c.send <- data:
	default:
		c.log.Warn("Send buffer full, dropping message")
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(requestID, code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type:      network.MsgTypeError,
		RequestID: requestID,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close unregisters the connection and stops its pumps. Safe to call twice.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.server.session.RemoveConnection(c.boss, c)
		close(c.closed)
		c.ws.Close()
	})
}
