// Package cart models a shopping cart and its persisted string form.
//
// The persisted form is the JSON array of lines the browser keeps in local
// storage. Carts are not safe for concurrent use; the storefront serializes
// access per session.
package cart

import (
	"fmt"
	"slices"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
)

// Line is one product in the cart. Name, Image and UnitPrice are snapshots
// taken when the line was added and may be stale until reconciled.
type Line struct {
	ProductID string         `json:"id" yaml:"id"`
	Name      string         `json:"name,omitempty" yaml:"name,omitempty"`
	Image     string         `json:"image,omitempty" yaml:"image,omitempty"`
	UnitPrice catalogs.Money `json:"price" yaml:"price"`
	Quantity  int            `json:"quantity" yaml:"quantity"`
}

// Total returns the line total.
func (l Line) Total() catalogs.Money {
	return l.UnitPrice.Times(l.Quantity)
}

// Cart is an ordered list of lines, at most one per product.
type Cart struct {
	Lines []Line `json:"lines" yaml:"lines"`

	// maxQuantity caps every line; zero means constants.MaxLineQuantity.
	maxQuantity int
}

// SetMaxQuantity sets the per-line cap applied by Add and SetQuantity.
// Zero or less restores constants.MaxLineQuantity.
func (c *Cart) SetMaxQuantity(n int) {
	c.maxQuantity = max(n, 0)
}

// MaxQuantity returns the per-line cap.
func (c *Cart) MaxQuantity() int {
	if c.maxQuantity > 0 {
		return c.maxQuantity
	}
	return constants.MaxLineQuantity
}

// New returns an empty cart.
func New(lines ...Line) *Cart {
	return &Cart{Lines: slices.Clone(lines)}
}

func (c *Cart) index(productID string) int {
	return slices.IndexFunc(c.Lines, func(l Line) bool { return l.ProductID == productID })
}

// Line returns the line for a product.
func (c *Cart) Line(productID string) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// Add puts quantity units of p in the cart, merging with an existing line.
// The resulting quantity is clamped to the product's stock and to the cart's
// MaxQuantity; when clamping happens the cart is still updated and a
// *errors.StockError is returned so the caller can tell the user.
func (c *Cart) Add(p catalogs.Product, quantity int) error {
	if quantity <= 0 {
		return errors.NewValidationError("quantity", quantity, "must be positive")
	}
	if p.Hidden {
		return errors.NewNotFoundError("product", p.ID)
	}
	if p.Stock <= 0 {
		return errors.NewStockError(p.ID, quantity, 0)
	}

	i := c.index(p.ID)
	if i < 0 {
		if len(c.Lines) >= constants.MaxCartLines {
			return errors.NewValidationError("lines", len(c.Lines), fmt.Sprintf("cart cannot hold more than %d products", constants.MaxCartLines))
		}
		c.Lines = append(c.Lines, Line{ProductID: p.ID})
		i = len(c.Lines) - 1
	}

	line := &c.Lines[i]
	line.Name = p.Name
	line.Image = p.Image
	line.UnitPrice = p.Price

	requested := line.Quantity + quantity
	if limit := c.MaxQuantity(); requested > limit && limit < p.Stock {
		line.Quantity = limit
		return errors.NewLimitError(p.ID, requested, limit)
	}
	if requested > p.Stock {
		line.Quantity = p.Stock
		return errors.NewStockError(p.ID, requested, p.Stock)
	}
	line.Quantity = requested
	return nil
}

// SetQuantity replaces a line's quantity. A quantity of zero or less removes
// the line; one above MaxQuantity is clamped and reported.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	i := c.index(productID)
	if i < 0 {
		return errors.NewNotFoundError("cart line", productID)
	}
	if quantity <= 0 {
		c.Lines = slices.Delete(c.Lines, i, i+1)
		return nil
	}
	if limit := c.MaxQuantity(); quantity > limit {
		c.Lines[i].Quantity = limit
		return errors.NewLimitError(productID, quantity, limit)
	}
	c.Lines[i].Quantity = quantity
	return nil
}

// Remove deletes the line for a product.
func (c *Cart) Remove(productID string) error {
	i := c.index(productID)
	if i < 0 {
		return errors.NewNotFoundError("cart line", productID)
	}
	c.Lines = slices.Delete(c.Lines, i, i+1)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Count returns the total number of units.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Subtotal returns the sum of the line totals.
func (c *Cart) Subtotal() catalogs.Money {
	var total catalogs.Money
	for _, l := range c.Lines {
		total = total.Plus(l.Total())
	}
	return total
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	return &Cart{Lines: slices.Clone(c.Lines), maxQuantity: c.maxQuantity}
}
