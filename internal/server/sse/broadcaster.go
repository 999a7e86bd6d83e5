// Package sse streams storefront events to browsers as Server-Sent Events.
//
// Every broadcast event gets an increasing ID. A reconnecting browser sends
// the last ID it saw in Last-Event-ID and is replayed what it missed, as far
// back as the broadcaster's history reaches.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vyfood/storefront/pkg/constants"
)

const (
	clientBuffer      = 64
	historySize       = 128
	heartbeatInterval = 25 * time.Second
)

// Event is one SSE message. A non-empty Session limits delivery to that
// session's streams. ID is assigned on broadcast.
type Event struct {
	Event   string `json:"event,omitempty"`
	ID      string `json:"id,omitempty"`
	Session string `json:"-"`
	Data    any    `json:"data"`

	seq uint64
}

func (e Event) visibleTo(session string) bool {
	return e.Session == "" || e.Session == session
}

type client struct {
	session string
	ch      chan Event
}

// Broadcaster fans events out to open streams.
type Broadcaster struct {
	logger *zerolog.Logger
	queue  chan Event

	mu      sync.Mutex
	clients map[*client]struct{}
	history []Event
	seq     uint64
	stopped bool
}

// NewBroadcaster returns a broadcaster; call Run to start delivery.
func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		logger:  logger,
		queue:   make(chan Event, constants.ChannelBufferSize),
		clients: make(map[*client]struct{}),
	}
}

// Broadcast queues an event. A full queue drops it.
func (b *Broadcaster) Broadcast(ev Event) {
	select {
	case b.queue <- ev:
	default:
		b.logger.Warn().Str("event", ev.Event).Msg("SSE queue full, event dropped")
	}
}

// ClientCount returns the number of open streams.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Run delivers queued events until ctx ends, then ends every stream.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.stopped = true
			for c := range b.clients {
				close(c.ch)
			}
			b.clients = make(map[*client]struct{})
			b.mu.Unlock()
			b.logger.Info().Msg("SSE broadcaster shut down")
			return
		case ev := <-b.queue:
			b.deliver(ev)
		}
	}
}

func (b *Broadcaster) deliver(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	ev.seq = b.seq
	ev.ID = strconv.FormatUint(b.seq, 10)
	b.history = append(b.history, ev)
	if len(b.history) > historySize {
		b.history = b.history[len(b.history)-historySize:]
	}

	for c := range b.clients {
		if !ev.visibleTo(c.session) {
			continue
		}
		select {
		case c.ch <- ev:
		default:
			b.logger.Warn().Str("event", ev.Event).Msg("SSE client buffer full, event skipped")
		}
	}
}

// attach registers c and returns the history after lastID that c may see.
// It reports false once the broadcaster has stopped.
func (b *Broadcaster) attach(c *client, lastID uint64) ([]Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, false
	}
	b.clients[c] = struct{}{}

	var missed []Event
	if lastID > 0 {
		for _, ev := range b.history {
			if ev.seq > lastID && ev.visibleTo(c.session) {
				missed = append(missed, ev)
			}
		}
	}
	b.logger.Debug().Int("clients", len(b.clients)).Int("replayed", len(missed)).Msg("SSE client connected")
	return missed, true
}

func (b *Broadcaster) detach(c *client) {
	b.mu.Lock()
	delete(b.clients, c)
	n := len(b.clients)
	b.mu.Unlock()
	b.logger.Debug().Int("clients", n).Msg("SSE client disconnected")
}

// ServeHTTP streams broadcast events only.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.ServeSession(w, r, "")
}

// ServeSession streams broadcast events plus those scoped to session.
func (b *Broadcaster) ServeSession(w http.ResponseWriter, r *http.Request, session string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	c := &client{session: session, ch: make(chan Event, clientBuffer)}
	missed, ok := b.attach(c, lastID)
	if !ok {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer b.detach(c)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	b.write(w, Event{
		Event: "connected",
		Data:  map[string]any{"message": "Connected to VyFood updates", "timestamp": time.Now().UTC()},
	})
	for _, ev := range missed {
		b.write(w, ev)
	}
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case ev, open := <-c.ch:
			if !open {
				return
			}
			b.write(w, ev)
		case <-heartbeat.C:
			_, _ = io.WriteString(w, ": ping\n\n")
		case <-r.Context().Done():
			return
		}
		flusher.Flush()
	}
}

// write renders ev in the text/event-stream format.
func (b *Broadcaster) write(w io.Writer, ev Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		b.logger.Error().Err(err).Str("event", ev.Event).Msg("Failed to encode SSE event")
		return
	}
	if ev.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", ev.Event)
	}
	if ev.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
