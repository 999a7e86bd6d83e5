// Package app provides the application context and dependency management
// for the vyfood CLI. Configuration, logging and the storefront instance are
// centralized here and handed to commands.
package app

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/vyfood/storefront"
	"github.com/vyfood/storefront/internal/backend"
	"github.com/vyfood/storefront/internal/embedded"
	"github.com/vyfood/storefront/internal/server"
	"github.com/vyfood/storefront/internal/store"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/reconcile"
	"github.com/vyfood/storefront/pkg/sources"
)

// App represents the vyfood application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	v      *viper.Viper
	config *Config

	// Logger
	logger *zerolog.Logger

	// Lazily created dependencies
	mu         sync.RWMutex
	storefront storefront.Storefront
	backend    *backend.Client
}

// Option customizes an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration. Command setup rebuilds the
// configuration from flags and the environment, so this is for callers that
// use the App without Execute.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		logger := NewLogger(config)
		a.logger = &logger
		return nil
	}
}

// WithStorefront injects a storefront instead of building one from config.
func WithStorefront(sf storefront.Storefront) Option {
	return func(a *App) error {
		a.storefront = sf
		return nil
	}
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		v:       newViper(),
	}

	if err := readConfigFile(app.v, ""); err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = configFromViper(app.v)

	logger := NewLogger(app.config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// OutputFormat returns the requested output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool {
	return a.config.NoColor || os.Getenv("NO_COLOR") != ""
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Backend returns the backend client, or nil when no backend is configured.
func (a *App) Backend() (*backend.Client, error) {
	a.mu.RLock()
	if a.backend != nil || a.config.BackendURL == "" {
		be := a.backend
		a.mu.RUnlock()
		return be, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.backendLocked()
}

func (a *App) backendLocked() (*backend.Client, error) {
	if a.backend != nil || a.config.BackendURL == "" {
		return a.backend, nil
	}
	be, err := backend.New(backend.Config{
		BaseURL:   a.config.BackendURL,
		APIKey:    a.config.BackendAPIKey,
		Auth:      a.config.BackendAuth,
		Timeout:   a.config.BackendTimeout,
		UserAgent: "vyfood/" + a.version,
	})
	if err != nil {
		return nil, errors.WrapResource("create", "backend client", a.config.BackendURL, err)
	}
	a.backend = be
	return be, nil
}

// Reconciler returns a reconciler configured for the shop's currency,
// language and quantity cap.
func (a *App) Reconciler() (*reconcile.Reconciler, error) {
	return reconcile.New(a.reconcileOptions()...)
}

func (a *App) reconcileOptions() []reconcile.Option {
	var opts []reconcile.Option
	if a.config.Currency != "" {
		opts = append(opts, reconcile.WithCurrency(a.config.Currency))
	}
	if a.config.Language != "" {
		opts = append(opts, reconcile.WithLanguage(a.config.Language))
	}
	if a.config.MaxQuantity > 0 {
		opts = append(opts, reconcile.WithMaxQuantity(a.config.MaxQuantity))
	}
	return opts
}

// Storefront returns the storefront instance, creating it lazily if needed.
func (a *App) Storefront(ctx context.Context) (storefront.Storefront, error) {
	a.mu.RLock()
	if a.storefront != nil {
		sf := a.storefront
		a.mu.RUnlock()
		return sf, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.storefront != nil {
		return a.storefront, nil
	}

	opts, err := a.buildStorefrontOptions(ctx)
	if err != nil {
		return nil, err
	}
	sf, err := storefront.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "storefront", "", err)
	}

	a.storefront = sf
	return sf, nil
}

// Catalog fetches the catalog straight from the configured source without
// building a storefront. Offline commands use it.
func (a *App) Catalog(ctx context.Context) (*catalogs.Catalog, error) {
	a.mu.Lock()
	src, err := a.sourceLocked()
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return src.Fetch(ctx)
}

// sourceLocked picks the catalog source. The backend comes first with the
// catalog file as its fallback; the embedded sample serves demos.
func (a *App) sourceLocked() (sources.Source, error) {
	var chain []sources.Source

	be, err := a.backendLocked()
	if err != nil {
		return nil, err
	}
	if be != nil {
		chain = append(chain, be)
	}
	if a.config.CatalogFile != "" {
		chain = append(chain, sources.NewFile(a.config.CatalogFile))
	}
	if a.config.Demo {
		demo, err := embedded.Catalog()
		if err != nil {
			return nil, errors.WrapParse("yaml", "embedded catalog", err)
		}
		chain = append(chain, sources.NewStatic(demo))
	}

	switch len(chain) {
	case 0:
		return nil, errors.NewConfigError("catalog", "no catalog source: set backend.url or catalog.file, or pass --demo", nil)
	case 1:
		return chain[0], nil
	default:
		return sources.NewChain(chain...), nil
	}
}

// buildStorefrontOptions constructs storefront options from the app configuration.
func (a *App) buildStorefrontOptions(ctx context.Context) ([]storefront.Option, error) {
	src, err := a.sourceLocked()
	if err != nil {
		return nil, err
	}

	opts := []storefront.Option{
		storefront.WithSource(src),
		storefront.WithReconcileOptions(a.reconcileOptions()...),
		storefront.WithWatch(a.config.WatchCatalog && a.config.CatalogFile != ""),
	}

	if a.backend != nil {
		opts = append(opts, storefront.WithOrders(a.backend))
	}
	if a.config.RefreshInterval > 0 {
		opts = append(opts, storefront.WithAutoRefreshInterval(a.config.RefreshInterval))
	}
	if a.config.MaxStaleness > 0 {
		opts = append(opts, storefront.WithMaxStaleness(a.config.MaxStaleness))
	}

	if a.config.CartDB != "" {
		db, err := store.OpenSQLite(ctx, a.config.CartDB)
		if err != nil {
			return nil, err
		}
		opts = append(opts, storefront.WithStore(db))
	}

	return opts, nil
}

// CartStore opens the configured cart database. The caller closes it.
func (a *App) CartStore(ctx context.Context) (store.Store, error) {
	if a.config.CartDB == "" {
		return nil, errors.NewConfigError("cart", "no cart database configured: set cart.db", nil)
	}
	return store.OpenSQLite(ctx, a.config.CartDB)
}

// ServerConfig returns the HTTP server settings.
func (a *App) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	cfg.Host = a.config.Host
	cfg.Port = a.config.Port
	cfg.StaticDir = a.config.StaticDir
	cfg.AdminKey = a.config.AdminKey
	cfg.CORSOrigins = a.config.CORSOrigins
	cfg.CORSEnabled = len(a.config.CORSOrigins) > 0
	cfg.RateLimit = a.config.RateLimit
	cfg.TrustedProxies = a.config.TrustedProxies
	cfg.SecureCookies = a.config.SecureCookies
	if a.config.CacheTTL > 0 {
		cfg.CacheTTL = a.config.CacheTTL
	}
	return cfg
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.RLock()
	sf := a.storefront
	a.mu.RUnlock()

	if sf == nil {
		return nil
	}
	if err := sf.AutoRefreshOff(); err != nil {
		a.logger.Debug().Err(err).Msg("Auto-refresh was not running")
	}
	return sf.Close()
}
