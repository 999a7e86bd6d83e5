package storefront

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/vyfood/storefront/pkg/cart"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
	"github.com/vyfood/storefront/pkg/orders"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// OrderPlacer accepts orders at checkout.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order *orders.Order) (*orders.Order, error)
}

// Carts loads, mutates and checks out session carts.
type Carts interface {
	// LoadCart reconciles the session's stored cart against the catalog,
	// persists the result and returns it.
	LoadCart(ctx context.Context, sessionID string) (*reconcile.Result, error)

	// UpdateCart loads the cart, applies fn and persists the outcome. The
	// returned result carries the notices of both the load and the update.
	UpdateCart(ctx context.Context, sessionID string, fn func(*cart.Cart, *catalogs.Catalog) error) (*reconcile.Result, error)

	// ClearCart empties the session's cart.
	ClearCart(ctx context.Context, sessionID string) error

	// Checkout places an order for the session's cart. If reconciliation
	// changes the cart the order is refused with a *CartChangedError so the
	// customer can review the notices first.
	Checkout(ctx context.Context, sessionID string, req orders.Request) (*orders.Order, error)

	// ReconcileAll reconciles every stored cart and returns how many changed.
	ReconcileAll(ctx context.Context) (int, error)
}

// CartChangedError is returned by Checkout when the cart had to be
// reconciled. The reconciled cart has already been saved.
type CartChangedError struct {
	Result *reconcile.Result
}

// Error implements the error interface.
func (e *CartChangedError) Error() string {
	return fmt.Sprintf("cart changed before checkout: %s", strings.Join(e.Result.Messages(), " "))
}

// Is implements errors.Is support.
func (e *CartChangedError) Is(target error) bool {
	return target == errors.ErrCartChanged
}

// LoadCart reconciles and persists the session's cart.
func (c *client) LoadCart(ctx context.Context, sessionID string) (*reconcile.Result, error) {
	unlock := c.locks.lock(sessionID)
	defer unlock()
	res, _, err := c.load(ctx, sessionID)
	return res, err
}

// load reconciles the stored cart and returns the catalog it used.
func (c *client) load(ctx context.Context, sessionID string) (*reconcile.Result, *catalogs.Catalog, error) {
	ctx = logging.WithSession(ctx, sessionID)

	catalog, err := c.current(ctx)
	if err != nil {
		return nil, nil, err
	}

	persisted, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	res, err := c.reconciler.ReconcilePersisted(persisted, catalog)
	if err != nil {
		return nil, nil, err
	}
	if err := c.persist(ctx, sessionID, res); err != nil {
		return nil, nil, err
	}

	if res.Changed {
		logging.FromContext(ctx).Info().
			Int("notices", len(res.Notices)).
			Bool("reset", res.Reset).
			Msg(res.Summary())
		c.hooks.triggerCartReconciled(sessionID, res)
	}
	return res, catalog, nil
}

func (c *client) persist(ctx context.Context, sessionID string, res *reconcile.Result) error {
	if !res.NeedsPersist() {
		return nil
	}
	if res.Cart.IsEmpty() {
		return c.store.Delete(ctx, sessionID)
	}
	return c.store.Save(ctx, sessionID, res.Persisted)
}

// UpdateCart applies fn to the reconciled cart and persists it. A stock error
// from fn still persists the clamped cart and is returned with the result.
func (c *client) UpdateCart(ctx context.Context, sessionID string, fn func(*cart.Cart, *catalogs.Catalog) error) (*reconcile.Result, error) {
	unlock := c.locks.lock(sessionID)
	defer unlock()

	loaded, catalog, err := c.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	updated := loaded.Cart.Clone()
	updated.SetMaxQuantity(c.reconciler.MaxQuantity())
	fnErr := fn(updated, catalog)
	if fnErr != nil && !errors.IsOutOfStock(fnErr) {
		return loaded, fnErr
	}

	res, err := c.reconciler.Reconcile(updated, catalog)
	if err != nil {
		return nil, err
	}
	res.Input = loaded.Persisted
	if err := c.persist(ctx, sessionID, res); err != nil {
		return nil, err
	}

	res.Notices = append(loaded.Notices, res.Notices...)
	res.Changed = loaded.Changed || res.Changed
	res.Reset = loaded.Reset
	return res, fnErr
}

// ClearCart deletes the session's cart.
func (c *client) ClearCart(ctx context.Context, sessionID string) error {
	unlock := c.locks.lock(sessionID)
	defer unlock()
	return c.store.Delete(ctx, sessionID)
}

// Checkout places the order and clears the cart.
func (c *client) Checkout(ctx context.Context, sessionID string, req orders.Request) (*orders.Order, error) {
	if c.options.orders == nil {
		return nil, errors.NewConfigError("storefront", "checkout needs an order backend", nil)
	}

	unlock := c.locks.lock(sessionID)
	defer unlock()

	res, _, err := c.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if res.Changed {
		return nil, &CartChangedError{Result: res}
	}
	if res.Cart.IsEmpty() {
		return nil, errors.NewValidationError("cart", 0, "cart is empty")
	}

	order := orders.FromCart(res.Cart, req)
	logger := logging.FromContext(logging.WithSession(ctx, sessionID)).With().Str("order_id", order.ID).Logger()

	placed, err := c.options.orders.PlaceOrder(ctx, order)
	if err != nil {
		logger.Warn().Err(err).Msg("Order rejected")
		return nil, err
	}
	if err := c.store.Delete(ctx, sessionID); err != nil {
		logger.Error().Err(err).Msg("Order placed but cart not cleared")
	}
	logger.Info().Int("items", order.Count()).Stringer("subtotal", order.Subtotal).Msg("Order placed")
	return placed, nil
}

// ReconcileAll reconciles every stored cart.
func (c *client) ReconcileAll(ctx context.Context) (int, error) {
	sessions, err := c.store.Sessions(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, id := range sessions {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		res, err := c.LoadCart(ctx, id)
		if err != nil {
			return changed, err
		}
		if res.Changed {
			changed++
		}
	}
	return changed, nil
}

// sessionLocks serializes cart access per session using a fixed set of
// striped mutexes.
type sessionLocks struct {
	stripes [64]sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{}
}

func (l *sessionLocks) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	m.Lock()
	return m.Unlock
}
