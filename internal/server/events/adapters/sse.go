// Package adapters connects the event broker to the live transports.
package adapters

import (
	"github.com/vyfood/storefront/internal/server/events"
	"github.com/vyfood/storefront/internal/server/sse"
)

// SSESubscriber forwards broker events to the SSE broadcaster.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates an SSE subscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send converts the event and queues it on the broadcaster.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event:   string(event.Type),
		Session: event.Session,
		Data: map[string]any{
			"timestamp": event.Timestamp,
			"data":      event.Data,
		},
	})
	return nil
}

// Close is a no-op; the broadcaster's lifecycle belongs to the server.
func (s *SSESubscriber) Close() error {
	return nil
}
