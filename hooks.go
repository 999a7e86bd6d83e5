package storefront

import (
	"sync"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/differ"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// Hook function types for storefront events.
type (
	// ProductAddedHook is called when a product appears in the catalog.
	ProductAddedHook func(product catalogs.Product)

	// ProductUpdatedHook is called when a product changes.
	ProductUpdatedHook func(old, updated catalogs.Product)

	// ProductRemovedHook is called when a product leaves the catalog.
	ProductRemovedHook func(product catalogs.Product)

	// CatalogRefreshedHook is called after every successful refresh.
	CatalogRefreshedHook func(changes *differ.Changeset)

	// CartReconciledHook is called when reconciliation changed a cart.
	CartReconciledHook func(sessionID string, result *reconcile.Result)
)

// Hooks provides event callback registration.
type Hooks interface {
	OnProductAdded(ProductAddedHook)
	OnProductUpdated(ProductUpdatedHook)
	OnProductRemoved(ProductRemovedHook)
	OnCatalogRefreshed(CatalogRefreshedHook)
	OnCartReconciled(CartReconciledHook)
}

// hooks manages event callbacks.
type hooks struct {
	mu                 sync.RWMutex
	onProductAdded     []ProductAddedHook
	onProductUpdated   []ProductUpdatedHook
	onProductRemoved   []ProductRemovedHook
	onCatalogRefreshed []CatalogRefreshedHook
	onCartReconciled   []CartReconciledHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnProductAdded registers a callback for added products.
func (c *client) OnProductAdded(fn ProductAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onProductAdded = append(c.hooks.onProductAdded, fn)
}

// OnProductUpdated registers a callback for updated products.
func (c *client) OnProductUpdated(fn ProductUpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onProductUpdated = append(c.hooks.onProductUpdated, fn)
}

// OnProductRemoved registers a callback for removed products.
func (c *client) OnProductRemoved(fn ProductRemovedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onProductRemoved = append(c.hooks.onProductRemoved, fn)
}

// OnCatalogRefreshed registers a callback for completed refreshes.
func (c *client) OnCatalogRefreshed(fn CatalogRefreshedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onCatalogRefreshed = append(c.hooks.onCatalogRefreshed, fn)
}

// OnCartReconciled registers a callback for carts changed by reconciliation.
func (c *client) OnCartReconciled(fn CartReconciledHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onCartReconciled = append(c.hooks.onCartReconciled, fn)
}

// triggerChangeset fires the product hooks for a changeset.
func (h *hooks) triggerChangeset(changes *differ.Changeset) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, p := range changes.Added {
		for _, hook := range h.onProductAdded {
			hook(p)
		}
	}
	for _, u := range changes.Updated {
		for _, hook := range h.onProductUpdated {
			hook(u.Existing, u.New)
		}
	}
	for _, p := range changes.Removed {
		for _, hook := range h.onProductRemoved {
			hook(p)
		}
	}
	for _, hook := range h.onCatalogRefreshed {
		hook(changes)
	}
}

func (h *hooks) triggerCartReconciled(sessionID string, res *reconcile.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onCartReconciled {
		hook(sessionID, res)
	}
}
