// Package events fans storefront events out to every live transport.
//
// The storefront's hooks publish into a Broker; WebSocket and SSE
// subscribers adapt the event stream to their wire formats. Events scoped to
// a session only reach that session's connections.
package events

import "time"

// EventType names a storefront event.
type EventType string

// Event types.
const (
	// Catalog events.
	ProductAdded     EventType = "product.added"
	ProductUpdated   EventType = "product.updated"
	ProductRemoved   EventType = "product.removed"
	CatalogRefreshed EventType = "catalog.refreshed"

	// Cart events, scoped to one session.
	CartReconciled EventType = "cart.reconciled"
	CartUpdated    EventType = "cart.updated"
	OrderPlaced    EventType = "order.placed"

	// Transport events.
	ClientConnected EventType = "client.connected"
)

// Event is one storefront event. An empty Session broadcasts to everyone.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Session   string    `json:"-"`
	Data      any       `json:"data"`
}
