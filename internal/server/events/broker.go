package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vyfood/storefront/pkg/constants"
)

// Broker queues published events and delivers them from a single loop, so
// every subscriber observes publish order. Publishing never blocks; when
// the queue is full the event is counted as dropped.
type Broker struct {
	logger *zerolog.Logger
	queue  chan Event

	mu   sync.Mutex
	subs map[Subscriber]struct{}

	published atomic.Uint64
	dropped   atomic.Uint64
}

// Stats is a snapshot of broker activity.
type Stats struct {
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
}

// NewBroker returns a broker. Call Run to start delivery.
func NewBroker(logger *zerolog.Logger) *Broker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broker{
		logger: logger,
		queue:  make(chan Event, constants.ChannelBufferSize),
		subs:   make(map[Subscriber]struct{}),
	}
}

// Subscribe adds sub. It may be called before Run.
func (b *Broker) Subscribe(sub Subscriber) {
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()
	b.logger.Debug().Int("subscribers", n).Msg("Subscriber registered")
}

// Unsubscribe removes and closes sub. Unknown subscribers are ignored.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	_, ok := b.subs[sub]
	delete(b.subs, sub)
	n := len(b.subs)
	b.mu.Unlock()
	if !ok {
		return
	}
	_ = sub.Close()
	b.logger.Debug().Int("subscribers", n).Msg("Subscriber unregistered")
}

// SubscriberCount returns the number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Stats reports subscriber and event counters.
func (b *Broker) Stats() Stats {
	return Stats{
		Subscribers: b.SubscriberCount(),
		Published:   b.published.Load(),
		Dropped:     b.dropped.Load(),
	}
}

// Publish queues an event for every connection.
func (b *Broker) Publish(eventType EventType, data any) {
	b.PublishTo("", eventType, data)
}

// PublishTo queues an event for the connections of one session.
func (b *Broker) PublishTo(session string, eventType EventType, data any) {
	ev := Event{Type: eventType, Timestamp: time.Now().UTC(), Session: session, Data: data}
	select {
	case b.queue <- ev:
		b.published.Add(1)
	default:
		b.dropped.Add(1)
		b.logger.Warn().Str("event_type", string(eventType)).Msg("Event queue full, event dropped")
	}
}

// Run delivers queued events until ctx is cancelled, then closes every
// subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			b.logger.Info().Msg("Event broker shut down")
			return
		case ev := <-b.queue:
			b.deliver(ev)
		}
	}
}

func (b *Broker) deliver(ev Event) {
	b.mu.Lock()
	subs := make([]Subscriber, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Send(ev); err != nil {
			b.logger.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("Event delivery failed")
		}
	}
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[Subscriber]struct{})
	b.mu.Unlock()

	for sub := range subs {
		_ = sub.Close()
	}
}
