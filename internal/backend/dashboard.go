package backend

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/orders"
)

// LowStockThreshold is the stock level at which the dashboard flags a product.
const LowStockThreshold = 5

// Dashboard summarizes the shop for the back office.
type Dashboard struct {
	Products     int                `json:"products"`
	Hidden       int                `json:"hidden"`
	Users        int                `json:"users"`
	Orders       int                `json:"orders"`
	PendingCount int                `json:"pending_orders"`
	Revenue      catalogs.Money     `json:"revenue"`
	LowStock     []catalogs.Product `json:"low_stock"`
	RecentOrders []orders.Order     `json:"recent_orders"`
}

// Dashboard loads products, users and orders concurrently and summarizes
// them. Any failure cancels the other loads.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		products []catalogs.Product
		users    []User
		all      []orders.Order
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(constants.MaxConcurrentRequests)
	eg.Go(func() (err error) {
		products, err = c.ListProducts(egCtx)
		return err
	})
	eg.Go(func() (err error) {
		users, err = c.ListUsers(egCtx)
		return err
	})
	eg.Go(func() (err error) {
		all, err = c.ListOrders(egCtx, true)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		Products:     len(products),
		Users:        len(users),
		Orders:       len(all),
		LowStock:     []catalogs.Product{},
		RecentOrders: []orders.Order{},
	}
	for _, p := range products {
		if p.Hidden {
			d.Hidden++
			continue
		}
		if p.Stock <= LowStockThreshold {
			d.LowStock = append(d.LowStock, p)
		}
	}
	for _, o := range all {
		switch o.Status {
		case orders.StatusCancelled:
			continue
		case orders.StatusPending:
			d.PendingCount++
		}
		d.Revenue += o.Subtotal
	}

	slices.SortFunc(all, func(a, b orders.Order) int { return b.CreatedAt.Compare(a.CreatedAt.Time) })
	d.RecentOrders = append(d.RecentOrders, all[:min(len(all), 10)]...)
	return d, nil
}
