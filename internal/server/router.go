package server

import (
	"net/http"

	"github.com/vyfood/storefront/internal/server/handlers"
	"github.com/vyfood/storefront/internal/server/middleware"
	"github.com/vyfood/storefront/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.storefront,
		s.backend,
		s.cache,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
	)

	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Public health endpoints
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Catalog
	mux.HandleFunc("GET "+prefix+"/products", h.HandleListProducts)
	mux.HandleFunc("GET "+prefix+"/products/{id}", h.HandleGetProduct)
	mux.HandleFunc("GET "+prefix+"/categories", h.HandleCategories)

	// Cart
	mux.HandleFunc("GET "+prefix+"/cart", h.HandleGetCart)
	mux.HandleFunc("DELETE "+prefix+"/cart", h.HandleClearCart)
	mux.HandleFunc("POST "+prefix+"/cart/items", h.HandleAddItem)
	mux.HandleFunc("PUT "+prefix+"/cart/items/{id}", h.HandleSetQuantity)
	mux.HandleFunc("DELETE "+prefix+"/cart/items/{id}", h.HandleRemoveItem)
	mux.HandleFunc("POST "+prefix+"/cart/reconcile", h.HandleReconcile)
	mux.HandleFunc("POST "+prefix+"/checkout", h.HandleCheckout)

	// Account
	mux.HandleFunc("POST "+prefix+"/auth/login", h.HandleLogin)
	mux.HandleFunc("POST "+prefix+"/auth/register", h.HandleRegister)
	mux.HandleFunc("GET "+prefix+"/profile", h.HandleGetProfile)
	mux.HandleFunc("PUT "+prefix+"/profile", h.HandleUpdateProfile)
	mux.HandleFunc("GET "+prefix+"/orders", h.HandleListOrders)

	// Admin (guarded by the Auth middleware)
	mux.HandleFunc("POST "+prefix+"/admin/products", h.HandleCreateProduct)
	mux.HandleFunc("PUT "+prefix+"/admin/products/{id}", h.HandleUpdateProduct)
	mux.HandleFunc("DELETE "+prefix+"/admin/products/{id}", h.HandleDeleteProduct)
	mux.HandleFunc("GET "+prefix+"/admin/users", h.HandleListUsers)
	mux.HandleFunc("GET "+prefix+"/admin/orders", h.HandleListAllOrders)
	mux.HandleFunc("GET "+prefix+"/admin/dashboard", h.HandleDashboard)
	mux.HandleFunc("POST "+prefix+"/admin/refresh", h.HandleRefresh)

	// Real-time endpoints
	mux.HandleFunc("GET "+prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+prefix+"/updates/stream", h.HandleSSE)

	// OpenAPI document endpoints
	mux.HandleFunc("GET "+prefix+"/openapi.json", h.HandleOpenAPIJSON)
	mux.HandleFunc("GET "+prefix+"/openapi.yaml", h.HandleOpenAPIYAML)

	// Unknown API paths answer JSON instead of the storefront page.
	mux.HandleFunc(prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Endpoint not found", r.Method+" "+r.URL.Path)
	})

	// Everything else is the single-page storefront.
	mux.Handle("/", s.staticHandler())
}

// applyMiddleware wraps handler in the server's middleware, outermost first:
// recovery, request logging, CORS, admin auth, rate limiting, the cart
// session cookie and bearer token forwarding.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config
	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		corsConfig.AllowAll = len(cfg.CORSOrigins) == 0
		if !corsConfig.AllowAll {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		}
		chain = append(chain, middleware.CORS(corsConfig))
	}

	// Without a key the admin API is closed.
	authConfig := middleware.DefaultAuthConfig()
	authConfig.Enabled = true
	authConfig.APIKey = cfg.AdminKey
	authConfig.Prefixes = []string{cfg.PathPrefix + "/admin"}
	chain = append(chain, middleware.Auth(authConfig, s.logger))

	if s.rateLimiter != nil {
		chain = append(chain, middleware.RateLimit(s.rateLimiter))
	}

	sessionConfig := middleware.DefaultSessionConfig()
	if cfg.SessionCookie != "" {
		sessionConfig.CookieName = cfg.SessionCookie
	}
	sessionConfig.Secure = cfg.SecureCookies
	chain = append(chain, middleware.Session(sessionConfig), middleware.ForwardToken)

	return middleware.Chain(chain...)(handler)
}
