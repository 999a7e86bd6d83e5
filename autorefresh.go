package storefront

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
	"github.com/vyfood/storefront/pkg/sources"
)

// AutoRefresher provides controls for automatic catalog refreshes.
type AutoRefresher interface {
	// AutoRefreshOn starts refreshing the catalog in the background.
	AutoRefreshOn() error

	// AutoRefreshOff stops background refreshes and waits for them to end.
	AutoRefreshOff() error
}

// AutoRefreshOn begins automatic refreshes.
func (c *client) AutoRefreshOn() error {
	if c.options.source == nil {
		return errors.NewConfigError("storefront", "auto-refresh needs a catalog source", nil)
	}
	if c.autoInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRefreshInterval",
			Value:   c.autoInterval,
			Message: "refresh interval must be positive",
		}
	}

	// Stop any running loop first.
	if err := c.AutoRefreshOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.autoCancel = cancel
	c.autoDone = done

	watcher, watch := c.options.source.(sources.Watcher)
	watch = watch && c.options.watch

	go func() {
		defer close(done)
		var wg sync.WaitGroup
		if watch {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := watcher.Watch(ctx, func() { c.refreshOnce(ctx) }); err != nil {
					logging.Error().Err(err).Msg("Catalog watch stopped")
				}
			}()
		}
		c.loop(ctx)
		wg.Wait()
	}()

	logging.Debug().Dur("interval", c.autoInterval).Bool("watch", watch).Msg("Auto-refresh started")
	return nil
}

func (c *client) loop(ctx context.Context) {
	ticker := time.NewTicker(c.autoInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.refreshOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (c *client) refreshOnce(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()
	changes, err := c.Refresh(refreshCtx)
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return
		}
		logging.Error().Err(err).Msg("Auto-refresh failed")
		return
	}
	if !changes.AffectsCarts() {
		return
	}

	// Stored carts follow the new catalog without waiting for their owners.
	n, err := c.ReconcileAll(ctx)
	if err != nil {
		if !stderrors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Reconciling stored carts failed")
		}
		return
	}
	logging.Info().Int("changed", n).Int("affected", len(changes.AffectedProductIDs())).Msg("Stored carts reconciled")
}

// AutoRefreshOff stops automatic refreshes.
func (c *client) AutoRefreshOff() error {
	c.autoMu.Lock()
	cancel, done := c.autoCancel, c.autoDone
	c.autoCancel, c.autoDone = nil, nil
	c.autoMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
