// Package reconcile merges a persisted shopping cart against a freshly
// fetched product catalog.
//
// Rules are applied per line, in cart order:
//
//  1. lines with a non-positive quantity or no product ID are dropped
//  2. duplicate lines for one product are merged into the first occurrence
//  3. lines for products missing from the catalog, or hidden, are removed
//  4. lines for products with no stock are removed
//  5. quantities above the stock (or the configured cap) are reduced
//  6. unit prices that differ from the catalog are replaced
//  7. names and images are refreshed from the catalog without a notice
//
// Removal wins over every other rule, so a removed line yields exactly one
// notice. Reconciling a result again yields no notices.
package reconcile

import (
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/vyfood/storefront/pkg/cart"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
)

// Reconciler applies the reconciliation rules. It holds no state between
// calls and is safe for concurrent use.
type Reconciler struct {
	currency    currency.Unit
	language    language.Tag
	maxQuantity int
	printer     *Printer
}

// New creates a Reconciler with options.
func New(opts ...Option) (*Reconciler, error) {
	r := defaults()
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.printer = NewPrinter(r.language, r.currency)
	return r, nil
}

// Printer returns the printer notices are rendered with.
func (r *Reconciler) Printer() *Printer {
	return r.printer
}

// PrinterFor returns a printer for the browser's Accept-Language header,
// falling back to the reconciler's own printer.
func (r *Reconciler) PrinterFor(acceptLanguage string) *Printer {
	tag, ok := MatchLanguage(acceptLanguage)
	if !ok {
		return r.printer
	}
	return NewPrinter(tag, r.currency)
}

// MaxQuantity returns the per-line quantity cap.
func (r *Reconciler) MaxQuantity() int {
	return r.maxQuantity
}

// Reconcile reconciles c against catalog. The input cart is not modified.
func (r *Reconciler) Reconcile(c *cart.Cart, catalog *catalogs.Catalog) (*Result, error) {
	if catalog == nil {
		return nil, errors.NewValidationError("catalog", nil, "cannot reconcile without a catalog")
	}
	if c == nil {
		c = cart.New()
	}

	b := newBuilder(r, c)

	merged, counts := r.collapse(b, c.Lines)
	for i := range merged {
		r.apply(b, merged[i], counts[merged[i].ProductID], catalog)
	}

	return b.build()
}

// ReconcilePersisted decodes a persisted cart string and reconciles it. A
// string that cannot be decoded yields an empty cart and a NoticeCartReset
// notice rather than an error.
func (r *Reconciler) ReconcilePersisted(persisted string, catalog *catalogs.Catalog) (*Result, error) {
	if catalog == nil {
		return nil, errors.NewValidationError("catalog", nil, "cannot reconcile without a catalog")
	}
	c, err := cart.Decode(persisted)
	if err != nil {
		b := newBuilder(r, cart.New())
		b.reset = true
		b.notice(Notice{Kind: NoticeCartReset})
		res, err := b.build()
		if err != nil {
			return nil, err
		}
		res.Input = persisted
		return res, nil
	}
	res, err := r.Reconcile(c, catalog)
	if err != nil {
		return nil, err
	}
	res.Input = persisted
	return res, nil
}

// collapse applies rules 1 and 2. It returns the surviving lines in order of
// first occurrence and how many input lines were folded into each.
func (r *Reconciler) collapse(b *builder, lines []cart.Line) ([]cart.Line, map[string]int) {
	out := make([]cart.Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	counts := make(map[string]int, len(lines))

	for _, l := range lines {
		l.ProductID = strings.TrimSpace(l.ProductID)
		if l.ProductID == "" || l.Quantity <= 0 {
			b.stats.Invalid++
			b.notice(Notice{Kind: NoticeInvalidLine, ProductID: l.ProductID, Name: l.Name, OldQuantity: l.Quantity})
			continue
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity = addSaturating(out[i].Quantity, l.Quantity)
			counts[l.ProductID]++
			continue
		}
		index[l.ProductID] = len(out)
		counts[l.ProductID] = 1
		out = append(out, l)
	}
	return out, counts
}

// apply runs rules 3 to 7 on one collapsed line.
func (r *Reconciler) apply(b *builder, line cart.Line, occurrences int, catalog *catalogs.Catalog) {
	product, ok := catalog.Get(line.ProductID)
	if !ok || product.Hidden {
		b.stats.Removed++
		b.notice(Notice{Kind: NoticeRemoved, ProductID: line.ProductID, Name: line.Name, OldQuantity: line.Quantity})
		return
	}
	if product.Stock <= 0 {
		b.stats.OutOfStock++
		b.notice(Notice{Kind: NoticeOutOfStock, ProductID: line.ProductID, Name: product.Name, OldQuantity: line.Quantity})
		return
	}

	if occurrences > 1 {
		b.stats.Merged++
		b.notice(Notice{Kind: NoticeMerged, ProductID: line.ProductID, Name: product.Name, NewQuantity: line.Quantity})
	}

	if limit := min(product.Stock, r.maxQuantity); line.Quantity > limit {
		b.stats.Reduced++
		b.notice(Notice{
			Kind:        NoticeQuantityReduced,
			ProductID:   line.ProductID,
			Name:        product.Name,
			OldQuantity: line.Quantity,
			NewQuantity: limit,
		})
		line.Quantity = limit
	}

	if line.UnitPrice != product.Price {
		b.stats.Repriced++
		b.notice(Notice{
			Kind:      NoticePriceChanged,
			ProductID: line.ProductID,
			Name:      product.Name,
			OldPrice:  line.UnitPrice,
			NewPrice:  product.Price,
		})
		line.UnitPrice = product.Price
	}

	if line.Name != product.Name || line.Image != product.Image {
		b.stats.Refreshed++
		line.Name = product.Name
		line.Image = product.Image
	}

	b.keep(line)
}

func addSaturating(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Reconcile reconciles c against catalog with a Reconciler built from opts.
func Reconcile(c *cart.Cart, catalog *catalogs.Catalog, opts ...Option) (*Result, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return r.Reconcile(c, catalog)
}

// ReconcilePersisted decodes and reconciles a persisted cart string with a
// Reconciler built from opts.
func ReconcilePersisted(persisted string, catalog *catalogs.Catalog, opts ...Option) (*Result, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return r.ReconcilePersisted(persisted, catalog)
}
