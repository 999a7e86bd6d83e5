// Package websocket pushes storefront events to browsers over WebSocket.
package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vyfood/storefront/pkg/constants"
)

// Message is one WebSocket frame. A non-empty Session limits delivery to
// that session's connections.
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Session   string    `json:"-"`
	Data      any       `json:"data"`
}

type clientSet map[*Client]struct{}

// Hub tracks connections by cart session. Only Run mutates the sets; a
// client that cannot keep up is disconnected instead of stalling the rest.
type Hub struct {
	logger     *zerolog.Logger
	queue      chan Message
	register   chan *Client
	unregister chan *Client

	mu        sync.RWMutex
	clients   clientSet
	bySession map[string]clientSet
}

// NewHub returns a hub; call Run to start it.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		queue:      make(chan Message, constants.ChannelBufferSize),
		register:   make(chan *Client, 8),
		unregister: make(chan *Client, 8),
		clients:    make(clientSet),
		bySession:  make(map[string]clientSet),
	}
}

// Register queues c for addition.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister queues c for removal.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Broadcast queues msg. A full queue drops it.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.queue <- msg:
	default:
		h.logger.Warn().Str("type", msg.Type).Msg("WebSocket queue full, message dropped")
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SessionCount returns the number of sessions with an open connection.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bySession)
}

// Run serves the hub until ctx ends, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
			}
			h.clients = make(clientSet)
			h.bySession = make(map[string]clientSet)
			h.mu.Unlock()
			h.logger.Info().Msg("WebSocket hub shut down")
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()
		case msg := <-h.queue:
			h.deliver(msg)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	set := h.bySession[c.session]
	if set == nil {
		set = make(clientSet)
		h.bySession[c.session] = set
	}
	set[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug().Str("client_id", c.id).Str("session_id", c.session).Int("clients", n).Msg("WebSocket client connected")
}

// removeLocked drops c and closes its queue. Unknown clients are ignored.
func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if set := h.bySession[c.session]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.bySession, c.session)
		}
	}
	close(c.send)
	h.logger.Debug().Str("client_id", c.id).Int("clients", len(h.clients)).Msg("WebSocket client disconnected")
}

func (h *Hub) deliver(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := h.clients
	if msg.Session != "" {
		targets = h.bySession[msg.Session]
	}
	var slow []*Client
	for c := range targets {
		if !c.enqueue(msg) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.logger.Warn().Str("client_id", c.id).Msg("WebSocket client too slow, disconnected")
		h.removeLocked(c)
	}
}
