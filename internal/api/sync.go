package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/syncbridge"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The console UI is served from a different origin in development
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SyncHandler fans playlist sync snapshots out to websocket observers
type SyncHandler struct {
	bridge *syncbridge.Bridge
}

// NewSyncHandler creates a new sync handler instance
func NewSyncHandler(bridge *syncbridge.Bridge) *SyncHandler {
	return &SyncHandler{bridge: bridge}
}

// Observe handles GET /api/sync/ws, streaming playlist snapshots to the
// connected client until it disconnects
func (h *SyncHandler) Observe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	ch := h.bridge.Observe()

	logger.Log.Debug().
		Str("remote_addr", c.ClientIP()).
		Msg("Sync observer connected")

	go h.writePump(conn, ch)
	go h.readPump(conn, ch)
}

// writePump forwards snapshot payloads and keepalive pings to the client
func (h *SyncHandler) writePump(conn *websocket.Conn, ch chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close() // nolint:errcheck
	}()

	for {
		select {
		case payload, ok := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) // nolint:errcheck
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{}) // nolint:errcheck
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) // nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains inbound frames so pong handling works and unregisters
// the observer when the connection drops. Observers are read-only; any
// data frames are discarded.
func (h *SyncHandler) readPump(conn *websocket.Conn, ch chan []byte) {
	defer func() {
		h.bridge.Unobserve(ch)
		conn.Close() // nolint:errcheck
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait)) // nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// SetupSyncRoutes registers the sync observer websocket route
func SetupSyncRoutes(apiGroup *gin.RouterGroup, bridge *syncbridge.Bridge) {
	handler := NewSyncHandler(bridge)

	apiGroup.GET("/sync/ws", handler.Observe)
}
