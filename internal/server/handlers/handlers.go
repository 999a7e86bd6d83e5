// Package handlers provides the HTTP handlers of the storefront API.
//
// Handlers are organized by domain:
//
//   - products.go: catalog browsing
//   - cart.go: the session cart and browser cart reconciliation
//   - checkout.go: order placement
//   - account.go: login, registration, profile and order history
//   - admin.go: back-office product management, users, dashboard, refresh
//   - health.go: liveness and readiness
//   - realtime.go: WebSocket and SSE streams
//   - openapi.go: the API description
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	storefront "github.com/vyfood/storefront"
	"github.com/vyfood/storefront/internal/backend"
	"github.com/vyfood/storefront/internal/server/cache"
	"github.com/vyfood/storefront/internal/server/events"
	"github.com/vyfood/storefront/internal/server/response"
	"github.com/vyfood/storefront/internal/server/sse"
	ws "github.com/vyfood/storefront/internal/server/websocket"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/orders"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Backend is the part of the backend client the handlers forward to.
type Backend interface {
	CreateProduct(ctx context.Context, p catalogs.Product) (*catalogs.Product, error)
	UpdateProduct(ctx context.Context, p catalogs.Product) (*catalogs.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	Login(ctx context.Context, creds backend.Credentials) (*backend.Session, error)
	Register(ctx context.Context, reg backend.Registration) (*backend.Session, error)
	Profile(ctx context.Context) (*backend.User, error)
	UpdateProfile(ctx context.Context, update backend.ProfileUpdate) (*backend.User, error)
	ListOrders(ctx context.Context, all bool) ([]orders.Order, error)
	ListUsers(ctx context.Context) ([]backend.User, error)
	Dashboard(ctx context.Context) (*backend.Dashboard, error)
}

// Compile-time interface check to ensure proper implementation.
var _ Backend = (*backend.Client)(nil)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	storefront     storefront.Storefront
	backend        Backend
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
}

// New creates a new Handlers instance. be may be nil when the storefront runs
// from a catalog file without a backend; account and admin endpoints then
// answer 503.
func New(
	sf storefront.Storefront,
	be Backend,
	cache *cache.Cache,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		storefront:     sf,
		backend:        be,
		cache:          cache,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
	}
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "Invalid JSON request body"
		if err == io.EOF {
			msg = "Request body is required"
		}
		response.BadRequest(w, msg, err.Error())
		return false
	}
	return true
}

// requireBackend answers 503 when no backend is configured.
func (h *Handlers) requireBackend(w http.ResponseWriter) bool {
	if h.backend == nil {
		response.ServiceUnavailable(w, "This storefront runs without a backend")
		return false
	}
	return true
}
