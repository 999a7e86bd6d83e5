package storefront

import (
	"time"

	"github.com/vyfood/storefront/internal/store"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/reconcile"
	"github.com/vyfood/storefront/pkg/sources"
)

// options holds the Storefront configuration.
type options struct {
	source              sources.Source
	store               store.Store
	orders              OrderPlacer
	initialCatalog      *catalogs.Catalog
	reconcileOptions    []reconcile.Option
	autoRefresh         bool
	autoRefreshInterval time.Duration
	maxStaleness        time.Duration
	watch               bool
}

// Option configures a Storefront.
type Option func(*options) error

func defaults() *options {
	return &options{
		autoRefreshInterval: constants.DefaultRefreshInterval,
		maxStaleness:        constants.DefaultRefreshInterval,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.source == nil && o.initialCatalog == nil {
		return nil, errors.NewConfigError("storefront", "a catalog source or an initial catalog is required", nil)
	}
	return o, nil
}

// WithSource sets where the catalog is fetched from.
func WithSource(src sources.Source) Option {
	return func(o *options) error {
		o.source = src
		return nil
	}
}

// WithStore sets the cart store. The default is an in-memory store.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		o.store = s
		return nil
	}
}

// WithOrders sets the backend that accepts orders at checkout.
func WithOrders(p OrderPlacer) Option {
	return func(o *options) error {
		o.orders = p
		return nil
	}
}

// WithInitialCatalog makes catalog available before the first refresh.
func WithInitialCatalog(catalog *catalogs.Catalog) Option {
	return func(o *options) error {
		o.initialCatalog = catalog
		return nil
	}
}

// WithReconcileOptions configures cart reconciliation.
func WithReconcileOptions(opts ...reconcile.Option) Option {
	return func(o *options) error {
		o.reconcileOptions = append(o.reconcileOptions, opts...)
		return nil
	}
}

// WithAutoRefresh configures whether background refreshes start with New.
func WithAutoRefresh(enabled bool) Option {
	return func(o *options) error {
		o.autoRefresh = enabled
		return nil
	}
}

// WithAutoRefreshInterval configures how often the catalog is refreshed.
func WithAutoRefreshInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return errors.NewValidationError("auto_refresh_interval", interval, "must be positive")
		}
		o.autoRefreshInterval = interval
		return nil
	}
}

// WithMaxStaleness sets how old the catalog may be before a cart load
// refreshes it first. Zero refreshes on every load.
func WithMaxStaleness(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("max_staleness", d, "cannot be negative")
		}
		o.maxStaleness = d
		return nil
	}
}

// WithWatch refreshes whenever a watchable source reports a change, while
// auto-refresh is on.
func WithWatch(enabled bool) Option {
	return func(o *options) error {
		o.watch = enabled
		return nil
	}
}
