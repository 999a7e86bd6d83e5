// Package storefront is the backend-for-frontend core of the VyFood shop.
//
// A Storefront owns the current product catalog and the persisted carts. Every
// cart load reconciles the stored cart against the catalog, so customers never
// check out with deleted products, stale prices or quantities the kitchen
// cannot fill.
//
// Example usage:
//
//	sf, err := storefront.New(
//	    storefront.WithSource(sources.NewFile("products.yaml")),
//	    storefront.WithStore(store.NewMemory()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sf.Close()
//
//	sf.OnCartReconciled(func(sessionID string, res *reconcile.Result) {
//	    for _, msg := range res.Messages() {
//	        log.Printf("%s: %s", sessionID, msg)
//	    }
//	})
//
//	res, err := sf.LoadCart(ctx, sessionID)
package storefront

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vyfood/storefront/internal/store"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// Compile-time interface check to ensure proper implementation.
var _ Storefront = (*client)(nil)

// Catalog provides copy-on-read access to the catalog.
type Catalog interface {
	// Catalog returns a copy of the current catalog. It fails with
	// errors.ErrNotFound before the first successful refresh.
	Catalog() (*catalogs.Catalog, error)
}

// Catalog returns a copy of the current catalog.
func (c *client) Catalog() (*catalogs.Catalog, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog == nil {
		return nil, errors.NewNotFoundError("catalog", "current")
	}
	return c.catalog.Copy(), nil
}

// Storefront manages the catalog, carts and checkout.
type Storefront interface {
	// Catalog provides copy-on-read access to the catalog
	Catalog

	// Refresher fetches the catalog from its source
	Refresher

	// AutoRefresher controls background catalog refreshes
	AutoRefresher

	// Carts loads, mutates and checks out carts
	Carts

	// Hooks provides access to event callback registration
	Hooks

	// Reconciler returns the reconciler carts are checked with.
	Reconciler() *reconcile.Reconciler

	// Close stops background work and closes the cart store.
	Close() error
}

// client is the internal implementation of the Storefront interface.
type client struct {
	options *options

	mu          sync.RWMutex
	catalog     *catalogs.Catalog
	refreshedAt time.Time

	reconciler *reconcile.Reconciler
	store      store.Store
	locks      *sessionLocks
	refreshes  singleflight.Group

	autoMu       sync.Mutex
	autoCancel   context.CancelFunc
	autoDone     chan struct{}
	autoInterval time.Duration

	hooks *hooks
}

// New creates a Storefront. When an initial catalog is configured it is
// available immediately; otherwise the first cart load fetches one.
func New(opts ...Option) (Storefront, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	r, err := reconcile.New(o.reconcileOptions...)
	if err != nil {
		return nil, errors.NewConfigError("reconcile", "invalid reconciliation options", err)
	}

	c := &client{
		options:      o,
		reconciler:   r,
		store:        o.store,
		locks:        newSessionLocks(),
		autoInterval: o.autoRefreshInterval,
		hooks:        newHooks(),
	}
	if c.store == nil {
		c.store = store.NewMemory()
	}
	if o.initialCatalog != nil {
		c.catalog = o.initialCatalog.Copy()
		c.refreshedAt = time.Now()
	}

	logging.Debug().
		Bool("initial_catalog", o.initialCatalog != nil).
		Bool("source", o.source != nil).
		Dur("max_staleness", o.maxStaleness).
		Msg("Storefront created")

	if o.autoRefresh {
		if err := c.AutoRefreshOn(); err != nil {
			return nil, errors.WrapResource("start", "auto-refresh", "", err)
		}
	}
	return c, nil
}

// Reconciler returns the reconciler carts are checked with.
func (c *client) Reconciler() *reconcile.Reconciler {
	return c.reconciler
}

// Close stops auto-refresh and closes the store.
func (c *client) Close() error {
	if err := c.AutoRefreshOff(); err != nil {
		return err
	}
	return c.store.Close()
}
