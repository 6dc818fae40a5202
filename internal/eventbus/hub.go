// Package eventbus manages WebSocket subscribers and fans out session
// events: session start and end, and each execution step (approval
// requests and decisions included) as it happens, rather than exposing
// them as shared mutable state.
package eventbus

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event is one message broadcast to every subscriber of a session.
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Connection is one subscriber's WebSocket, bound to at most one session.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	mu        sync.Mutex
}

// Hub fans out session events to every connection subscribed to that
// session. All mutation of connection/session maps goes through its
// run loop, reached only via the register/unregister/broadcast channels.
type Hub struct {
	connections map[string]*Connection
	sessions    map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *sessionMessage

	mu sync.RWMutex
}

type sessionMessage struct {
	sessionID string
	data      []byte
}

// NewHub returns an unstarted Hub; call Run in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		sessions:    make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *sessionMessage, 256),
	}
}

// Run drains the registration and broadcast channels until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if conn.SessionID != "" {
				if h.sessions[conn.SessionID] == nil {
					h.sessions[conn.SessionID] = make(map[string]bool)
				}
				h.sessions[conn.SessionID][conn.ID] = true
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				if conn.SessionID != "" && h.sessions[conn.SessionID] != nil {
					delete(h.sessions[conn.SessionID], conn.ID)
					if len(h.sessions[conn.SessionID]) == 0 {
						delete(h.sessions, conn.SessionID)
					}
				}
				close(conn.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for connID := range h.sessions[msg.sessionID] {
				if conn, ok := h.connections[connID]; ok {
					select {
					case conn.Send <- msg.data:
					default:
						log.Printf("WARN: eventbus: connection %s send buffer full, dropping", connID)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NewConnection wraps ws as a Connection bound to sessionID and registers
// it with the hub.
func (h *Hub) NewConnection(ws *websocket.Conn, sessionID string) *Connection {
	conn := &Connection{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Conn:      ws,
		Send:      make(chan []byte, 256),
	}
	h.register <- conn
	return conn
}

// Unregister removes conn from the hub and closes its send channel.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Publish broadcasts an event to every connection subscribed to sessionID.
func (h *Hub) Publish(sessionID, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, SessionID: sessionID, Payload: payload})
	if err != nil {
		log.Printf("ERROR: eventbus: failed to marshal event %s: %v", eventType, err)
		return
	}
	h.broadcast <- &sessionMessage{sessionID: sessionID, data: data}
}

// SubscriberCount reports how many connections are subscribed to sessionID.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// WriteMessage writes to the connection's underlying socket with locking,
// since gorilla/websocket forbids concurrent writers on one connection.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
