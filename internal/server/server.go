// Package server serves the storefront over HTTP.
//
// A Server owns the background services that turn storefront hooks into
// live updates: the event broker, the WebSocket hub and the SSE
// broadcaster. Start them before serving and stop them with Shutdown:
//
//	srv, err := server.New(sf, be, server.DefaultConfig(), logger)
//	if err != nil {
//		return err
//	}
//	srv.Start()
//	defer srv.Shutdown(ctx)
//	http.ListenAndServe(srv.Config().Addr(), srv.Handler())
package server

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	storefront "github.com/vyfood/storefront"
	"github.com/vyfood/storefront/internal/server/cache"
	"github.com/vyfood/storefront/internal/server/events"
	"github.com/vyfood/storefront/internal/server/events/adapters"
	"github.com/vyfood/storefront/internal/server/handlers"
	"github.com/vyfood/storefront/internal/server/middleware"
	"github.com/vyfood/storefront/internal/server/sse"
	ws "github.com/vyfood/storefront/internal/server/websocket"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/differ"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// Server wires a storefront to its HTTP API and live update channels.
type Server struct {
	config     Config
	storefront storefront.Storefront
	backend    handlers.Backend
	logger     *zerolog.Logger

	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	upgrader       websocket.Upgrader

	ctx      context.Context
	cancel   context.CancelFunc
	services errgroup.Group
	started  time.Time
}

// New validates cfg and builds a server. be may be nil when the storefront
// runs without a backend; account and admin routes then answer 503.
func New(sf storefront.Storefront, be handlers.Backend, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:         cfg,
		storefront:     sf,
		backend:        be,
		logger:         logger,
		cache:          cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 10,
			WriteBufferSize: 1 << 10,
			CheckOrigin:     checkOrigin(cfg),
		},
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
		// Validated by normalize.
		proxies, _ := middleware.ParseProxies(cfg.TrustedProxies)
		s.rateLimiter.TrustProxies(proxies)
	}

	s.connectHooks()
	logger.Debug().Str("addr", cfg.Addr()).Str("prefix", cfg.PathPrefix).Msg("Server configured")
	return s, nil
}

// checkOrigin accepts same-origin upgrades and, with CORS on, the configured
// origins.
func checkOrigin(cfg Config) func(*http.Request) bool {
	allowed := make(map[string]bool, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if cfg.CORSEnabled && (len(allowed) == 0 || allowed[origin]) {
			return true
		}
		return origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}

// connectHooks registers storefront hooks that publish to the broker.
func (s *Server) connectHooks() {
	s.storefront.OnProductAdded(func(p catalogs.Product) {
		s.broker.Publish(events.ProductAdded, map[string]any{"product": p})
	})

	s.storefront.OnProductUpdated(func(old, updated catalogs.Product) {
		s.broker.Publish(events.ProductUpdated, map[string]any{
			"old_product": old,
			"new_product": updated,
		})
	})

	s.storefront.OnProductRemoved(func(p catalogs.Product) {
		s.broker.Publish(events.ProductRemoved, map[string]any{"product": p})
	})

	s.storefront.OnCatalogRefreshed(func(changes *differ.Changeset) {
		s.cache.Invalidate()
		s.broker.Publish(events.CatalogRefreshed, map[string]any{
			"added":   len(changes.Added),
			"updated": len(changes.Updated),
			"removed": len(changes.Removed),
		})
		s.logger.Debug().Int("changes", changes.Total()).Msg("Catalog refreshed event published")
	})

	s.storefront.OnCartReconciled(func(sessionID string, res *reconcile.Result) {
		s.broker.PublishTo(sessionID, events.CartReconciled, map[string]any{
			"notices": slices.Clone(res.Notices),
			"count":   res.Cart.Count(),
			"reset":   res.Reset,
		})
	})
}

// Start launches the background services. They run until Shutdown.
func (s *Server) Start() {
	services := []func(context.Context){s.broker.Run, s.wsHub.Run, s.sseBroadcaster.Run}
	if s.rateLimiter != nil {
		services = append(services, s.rateLimiter.Run)
	}
	for _, run := range services {
		s.services.Go(func() error {
			run(s.ctx)
			return nil
		})
	}
	s.logger.Debug().Int("services", len(services)).Msg("Background services started")
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops the background services and waits for them, or for ctx.
// Open WebSocket and SSE streams are closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		_ = s.services.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Dur("uptime", time.Since(s.started)).Msg("Background services stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Timed out waiting for background services")
		return ctx.Err()
	}
}

// Config returns the normalized configuration.
func (s *Server) Config() Config { return s.config }

// Cache returns the response cache.
func (s *Server) Cache() *cache.Cache { return s.cache }

// Broker returns the event broker.
func (s *Server) Broker() *events.Broker { return s.broker }

// StartTime returns when the server was built.
func (s *Server) StartTime() time.Time { return s.started }
