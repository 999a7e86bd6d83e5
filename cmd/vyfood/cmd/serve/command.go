// Package serve provides the command that runs the storefront HTTP server.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vyfood/storefront"
	"github.com/vyfood/storefront/internal/appcontext"
	"github.com/vyfood/storefront/internal/cmd/emoji"
	"github.com/vyfood/storefront/internal/server"
	"github.com/vyfood/storefront/internal/server/handlers"
	"github.com/vyfood/storefront/pkg/constants"
)

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Run the storefront server",
		Long: `Serve runs the VyFood storefront: the customer web app, the REST API
it talks to, and the live update streams.

Features:
  - Product listing with filters (/api/v1/products)
  - Carts reconciled against the live catalog on every load (/api/v1/cart)
  - Checkout that refuses carts changed since the customer last saw them
  - WebSocket (/api/v1/updates/ws) and SSE (/api/v1/updates/stream) updates
  - Admin API guarded by an X-Admin-Key header (/api/v1/admin)
  - OpenAPI documentation (/api/v1/openapi.json)

The catalog comes from the backend service (backend.url), a catalog file
(catalog.file) or, with --demo, the built-in sample menu.`,
		Example: `  # Serve the sample menu on the default port
  vyfood serve --demo

  # Serve against the backend with a persistent cart database
  VYFOOD_BACKEND_URL=https://api.vyfood.vn VYFOOD_CART_DB=~/.vyfood/carts.db vyfood serve

  # Public deployment
  vyfood serve --host 0.0.0.0 --port 80 --secure-cookies --admin-key "$ADMIN_KEY"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Server port")
	cmd.Flags().String("host", "localhost", "Bind address")
	cmd.Flags().String("static-dir", "", "Serve the web app from this directory instead of the embedded build")
	cmd.Flags().String("admin-key", "", "Key required in X-Admin-Key for the admin API (empty closes it)")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated)")
	cmd.Flags().Int("rate-limit", 300, "Requests per minute per IP (0 to disable)")
	cmd.Flags().StringSlice("trusted-proxies", nil, "Proxy IPs or CIDR ranges whose X-Forwarded-For is believed")
	cmd.Flags().Bool("secure-cookies", false, "Mark the session cookie Secure (HTTPS deployments)")
	cmd.Flags().Duration("cache-ttl", 30*time.Second, "Product response cache TTL")

	return cmd
}

// configFromFlags overlays explicitly set flags on the configured settings.
func configFromFlags(cmd *cobra.Command, cfg server.Config) server.Config {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("static-dir") {
		cfg.StaticDir, _ = flags.GetString("static-dir")
	}
	if flags.Changed("admin-key") {
		cfg.AdminKey, _ = flags.GetString("admin-key")
	}
	if flags.Changed("cors-origins") {
		cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
		cfg.CORSEnabled = len(cfg.CORSOrigins) > 0
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit, _ = flags.GetInt("rate-limit")
	}
	if flags.Changed("trusted-proxies") {
		cfg.TrustedProxies, _ = flags.GetStringSlice("trusted-proxies")
	}
	if flags.Changed("secure-cookies") {
		cfg.SecureCookies, _ = flags.GetBool("secure-cookies")
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL, _ = flags.GetDuration("cache-ttl")
	}
	return cfg
}

func run(cmd *cobra.Command, app appcontext.Interface) error {
	ctx := cmd.Context()
	logger := app.Logger()
	cfg := configFromFlags(cmd, app.ServerConfig())

	sf, err := app.Storefront(ctx)
	if err != nil {
		return err
	}
	be, err := app.Backend()
	if err != nil {
		return err
	}

	warmUp(ctx, sf, logger)

	// A nil *backend.Client must stay an untyped nil interface.
	var api handlers.Backend
	if be != nil {
		api = be
	}

	srv, err := server.New(sf, api, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Start()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("prefix", cfg.PathPrefix).
		Bool("backend", be != nil).
		Bool("admin", cfg.AdminKey != "").
		Int("rate_limit", cfg.RateLimit).
		Msg("Starting storefront server")

	return serveUntilDone(ctx, cmd, httpServer, srv, logger)
}

// warmUp loads the first catalog and starts background refreshes. The
// server still starts when the source is down; /ready reports it.
func warmUp(ctx context.Context, sf storefront.Storefront, logger *zerolog.Logger) {
	if _, err := sf.Catalog(); err != nil {
		if _, err := sf.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("Initial catalog refresh failed, serving without a catalog")
		}
	}
	if err := sf.AutoRefreshOn(); err != nil {
		logger.Warn().Err(err).Msg("Automatic catalog refresh disabled")
	}
}

// serveUntilDone runs httpServer until ctx is cancelled or it fails, then
// closes the live update streams before draining HTTP connections.
func serveUntilDone(ctx context.Context, cmd *cobra.Command, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s VyFood storefront on http://%s\n", emoji.Success, httpServer.Addr)
	fmt.Fprintln(out, "   Press Ctrl+C to stop")

	var runErr error
	select {
	case runErr = <-serverErr:
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Realtime services did not stop in time")
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server shutdown failed: %w", err)
	}

	if runErr == nil {
		logger.Info().Msg("Server stopped gracefully")
		fmt.Fprintf(out, "%s Server stopped\n", emoji.Success)
	}
	return runErr
}
