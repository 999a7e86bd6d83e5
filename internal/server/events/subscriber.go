package events

// Subscriber consumes the event stream. Implementations adapt it to one
// transport and must not block.
type Subscriber interface {
	// Send delivers an event to the subscriber.
	Send(Event) error

	// Close shuts the subscriber down.
	Close() error
}
