package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Lumicake/LumiAgent/internal/eventbus"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades the request and streams every event the hub
// publishes for :session_id (session_started, step, session_ended) until
// the client disconnects. The connection is observe-only: the core takes
// commands over HTTP, not over this socket.
// GET /ws/sessions/:session_id
func (h *Handler) HandleWebSocket(c echo.Context) error {
	sessionID := c.Param("session_id")

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("WARN: ws: upgrade failed: %v", err)
		return err
	}

	conn := h.hub.NewConnection(ws, sessionID)

	go h.wsReadPump(conn)
	h.wsWritePump(conn)

	return nil
}

// wsReadPump drains and discards client frames so the socket's read side
// stays serviced; it unregisters the connection once the client goes away.
func (h *Handler) wsReadPump(conn *eventbus.Connection) {
	defer h.hub.Unregister(conn)
	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// wsWritePump relays published events to the socket and keeps it alive
// with periodic pings; it returns (and the caller's handler exits) once
// the hub closes the connection's send channel.
func (h *Handler) wsWritePump(conn *eventbus.Connection) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
