package storefront

import (
	"context"
	"time"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/differ"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
)

// Refresher handles catalog refreshes.
type Refresher interface {
	// Refresh fetches the catalog from the source, swaps it in and fires
	// the product hooks. Concurrent calls share one fetch.
	Refresh(ctx context.Context) (*differ.Changeset, error)

	// SetCatalog replaces the catalog directly, firing the same hooks.
	SetCatalog(catalog *catalogs.Catalog) *differ.Changeset
}

// Refresh fetches and installs a fresh catalog.
func (c *client) Refresh(ctx context.Context) (*differ.Changeset, error) {
	if c.options.source == nil {
		return nil, errors.NewConfigError("storefront", "no catalog source configured", nil)
	}

	ch := c.refreshes.DoChan("refresh", func() (any, error) {
		// Detach from the first caller so its cancellation does not fail
		// everyone sharing the fetch.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RefreshTimeout)
		defer cancel()
		return c.refresh(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*differ.Changeset), nil
	}
}

func (c *client) refresh(ctx context.Context) (*differ.Changeset, error) {
	src := c.options.source
	logger := logging.FromContext(ctx).With().Str("source", src.ID().String()).Logger()

	start := time.Now()
	catalog, err := src.Fetch(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Catalog refresh failed")
		return nil, errors.WrapResource("fetch", "catalog", src.ID().String(), err)
	}

	changes := c.SetCatalog(catalog)
	logger.Info().
		Int("products", catalog.Len()).
		Int("added", len(changes.Added)).
		Int("updated", len(changes.Updated)).
		Int("removed", len(changes.Removed)).
		Dur("took", time.Since(start)).
		Msg("Catalog refreshed")
	return changes, nil
}

// SetCatalog installs catalog and fires hooks for what changed.
func (c *client) SetCatalog(catalog *catalogs.Catalog) *differ.Changeset {
	c.mu.Lock()
	old := c.catalog
	c.catalog = catalog
	c.refreshedAt = time.Now()
	c.mu.Unlock()

	changes := differ.New().Catalogs(old, catalog)
	c.hooks.triggerChangeset(changes)
	return changes
}

// current returns the catalog to reconcile against, refreshing first when
// it is missing or older than the allowed staleness. A failed refresh falls
// back to the stale catalog when there is one.
func (c *client) current(ctx context.Context) (*catalogs.Catalog, error) {
	c.mu.RLock()
	catalog, refreshedAt := c.catalog, c.refreshedAt
	c.mu.RUnlock()

	fresh := catalog != nil && time.Since(refreshedAt) <= c.options.maxStaleness
	if fresh || c.options.source == nil {
		if catalog == nil {
			return nil, errors.NewNotFoundError("catalog", "current")
		}
		return catalog, nil
	}

	if _, err := c.Refresh(ctx); err != nil {
		if catalog == nil {
			return nil, err
		}
		logging.FromContext(ctx).Warn().Err(err).Msg("Using stale catalog")
		return catalog, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog, nil
}
