package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vyfood/storefront"
	"github.com/vyfood/storefront/internal/backend"
	"github.com/vyfood/storefront/internal/server"
	"github.com/vyfood/storefront/internal/store"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/reconcile"
)

var _ Interface = (*Mock)(nil)

// Mock provides a mock implementation of Interface for testing.
// A nil function field makes the method return a zero value.
type Mock struct {
	StorefrontFunc func(ctx context.Context) (storefront.Storefront, error)
	CatalogFunc    func(ctx context.Context) (*catalogs.Catalog, error)
	BackendFunc    func() (*backend.Client, error)
	CartStoreFunc  func(ctx context.Context) (store.Store, error)
	LoggerFunc     func() *zerolog.Logger

	Server   server.Config
	Format   string
	Colorful bool
}

// Storefront returns a storefront using the mock function.
func (m *Mock) Storefront(ctx context.Context) (storefront.Storefront, error) {
	if m.StorefrontFunc != nil {
		return m.StorefrontFunc(ctx)
	}
	return nil, errors.NewConfigError("storefront", "not configured", nil)
}

// Catalog returns a catalog using the mock function.
func (m *Mock) Catalog(ctx context.Context) (*catalogs.Catalog, error) {
	if m.CatalogFunc != nil {
		return m.CatalogFunc(ctx)
	}
	return nil, errors.NewConfigError("catalog", "not configured", nil)
}

// Backend returns a backend client using the mock function or nil.
func (m *Mock) Backend() (*backend.Client, error) {
	if m.BackendFunc != nil {
		return m.BackendFunc()
	}
	return nil, nil
}

// Reconciler returns a reconciler with default options.
func (m *Mock) Reconciler() (*reconcile.Reconciler, error) {
	return reconcile.New()
}

// CartStore returns a store using the mock function or a memory store.
func (m *Mock) CartStore(ctx context.Context) (store.Store, error) {
	if m.CartStoreFunc != nil {
		return m.CartStoreFunc(ctx)
	}
	return store.NewMemory(), nil
}

// ServerConfig returns the mock's server settings.
func (m *Mock) ServerConfig() server.Config {
	return m.Server
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the mock's format.
func (m *Mock) OutputFormat() string { return m.Format }

// NoColor reports whether the mock disables color.
func (m *Mock) NoColor() bool { return !m.Colorful }

// Version returns "dev".
func (m *Mock) Version() string { return "dev" }

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }
