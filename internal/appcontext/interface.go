// Package appcontext provides the application context interface shared by
// all vyfood commands. Commands accept the interface rather than the
// concrete App so they can be tested with a Mock.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vyfood/storefront"
	"github.com/vyfood/storefront/internal/backend"
	"github.com/vyfood/storefront/internal/server"
	"github.com/vyfood/storefront/internal/store"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// Interface defines what commands need from the application.
type Interface interface {
	// Storefront returns the shared storefront, creating it lazily.
	Storefront(ctx context.Context) (storefront.Storefront, error)

	// Catalog fetches the catalog from the configured source without
	// starting a storefront.
	Catalog(ctx context.Context) (*catalogs.Catalog, error)

	// Backend returns the backend client, or nil when none is configured.
	Backend() (*backend.Client, error)

	// Reconciler returns a reconciler built from the configuration.
	Reconciler() (*reconcile.Reconciler, error)

	// CartStore opens the configured cart database.
	CartStore(ctx context.Context) (store.Store, error)

	// ServerConfig returns the HTTP server settings.
	ServerConfig() server.Config

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format (json, yaml, table, wide).
	OutputFormat() string

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
