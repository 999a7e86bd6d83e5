package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vyfood/storefront/internal/server/events"
	"github.com/vyfood/storefront/internal/server/middleware"
	ws "github.com/vyfood/storefront/internal/server/websocket"
)

// HandleWebSocket upgrades the request and attaches the connection to the
// hub under the caller's cart session.
// @Summary Live updates over WebSocket
// @Description Catalog changes for everyone plus cart notices for this session
// @Tags realtime
// @Success 101 "Upgraded"
// @Router /api/v1/updates/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionID(r.Context())
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("session_id", session).Msg("Rejected WebSocket upgrade")
		return
	}

	client := ws.NewClient(uuid.NewString(), session, h.wsHub, conn)
	client.Greet(ws.Message{
		Type:      string(events.ClientConnected),
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{"message": "Connected to VyFood updates"},
	})
	h.wsHub.Register(client)

	go client.ReadPump()
	go client.WritePump()
}

// HandleSSE streams the same updates as Server-Sent Events. Browsers that
// reconnect with Last-Event-ID get what they missed.
// @Summary Live updates over SSE
// @Description Catalog changes for everyone plus cart notices for this session
// @Tags realtime
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /api/v1/updates/stream [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	h.sseBroadcaster.ServeSession(w, r, middleware.SessionID(r.Context()))
}
