package adapters

import (
	"github.com/vyfood/storefront/internal/server/events"
	ws "github.com/vyfood/storefront/internal/server/websocket"
)

// WebSocketSubscriber forwards broker events to the WebSocket hub.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a WebSocket subscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send converts the event and queues it on the hub.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Session:   event.Session,
		Data:      event.Data,
	})
	return nil
}

// Close is a no-op; the hub's lifecycle belongs to the server.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
