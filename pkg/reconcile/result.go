package reconcile

import (
	"fmt"
	"strings"

	"github.com/vyfood/storefront/pkg/cart"
	"github.com/vyfood/storefront/pkg/catalogs"
)

// Result is the outcome of reconciling one cart.
type Result struct {
	// Cart is the reconciled cart.
	Cart *cart.Cart `json:"cart"`

	// Notices lists every change, in the order the rules produced them.
	Notices []Notice `json:"notices"`

	// Changed is true when any notice was produced. Silent name or image
	// refreshes do not count.
	Changed bool `json:"changed"`

	// Reset is true when the persisted input could not be decoded.
	Reset bool `json:"reset,omitempty"`

	// Input is the persisted string that was reconciled, if any.
	Input string `json:"-"`

	// Persisted is the encoded reconciled cart.
	Persisted string `json:"-"`

	Stats Stats `json:"stats"`
}

// Stats counts what reconciliation did.
type Stats struct {
	LinesIn        int            `json:"lines_in"`
	LinesOut       int            `json:"lines_out"`
	Invalid        int            `json:"invalid"`
	Merged         int            `json:"merged"`
	Removed        int            `json:"removed"`
	OutOfStock     int            `json:"out_of_stock"`
	Reduced        int            `json:"reduced"`
	Repriced       int            `json:"repriced"`
	Refreshed      int            `json:"refreshed"`
	SubtotalBefore catalogs.Money `json:"subtotal_before"`
	SubtotalAfter  catalogs.Money `json:"subtotal_after"`
}

// HasNotices returns true if the user should be told about something.
func (r *Result) HasNotices() bool {
	return len(r.Notices) > 0
}

// NeedsPersist reports whether the stored string differs from the result.
func (r *Result) NeedsPersist() bool {
	return r.Input != r.Persisted
}

// Messages returns the rendered notice texts in order.
func (r *Result) Messages() []string {
	out := make([]string, 0, len(r.Notices))
	for _, n := range r.Notices {
		out = append(out, n.Text)
	}
	return out
}

// Summary returns a one-line description of the result.
func (r *Result) Summary() string {
	if r.Reset {
		return "Saved cart was unreadable and has been reset."
	}
	if !r.Changed {
		return fmt.Sprintf("Cart is up to date (%d items, subtotal %s).", r.Cart.Count(), r.Stats.SubtotalAfter)
	}

	var parts []string
	add := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(r.Stats.Invalid, "invalid")
	add(r.Stats.Merged, "merged")
	add(r.Stats.Removed, "removed")
	add(r.Stats.OutOfStock, "out of stock")
	add(r.Stats.Reduced, "reduced")
	add(r.Stats.Repriced, "repriced")
	return fmt.Sprintf("Cart updated: %s. Subtotal %s -> %s.",
		strings.Join(parts, ", "), r.Stats.SubtotalBefore, r.Stats.SubtotalAfter)
}

// builder accumulates a Result while the rules run.
type builder struct {
	r       *Reconciler
	lines   []cart.Line
	notices []Notice
	stats   Stats
	reset   bool
}

func newBuilder(r *Reconciler, in *cart.Cart) *builder {
	b := &builder{r: r, notices: []Notice{}}
	b.stats.LinesIn = len(in.Lines)
	for _, l := range in.Lines {
		if l.Quantity > 0 {
			b.stats.SubtotalBefore = b.stats.SubtotalBefore.Plus(l.Total())
		}
	}
	return b
}

func (b *builder) notice(n Notice) {
	n.Text = n.Message(b.r.printer)
	b.notices = append(b.notices, n)
}

func (b *builder) keep(l cart.Line) {
	b.lines = append(b.lines, l)
}

func (b *builder) build() (*Result, error) {
	c := cart.New(b.lines...)
	persisted, err := c.Encode()
	if err != nil {
		return nil, err
	}
	b.stats.LinesOut = len(c.Lines)
	b.stats.SubtotalAfter = c.Subtotal()
	return &Result{
		Cart:      c,
		Notices:   b.notices,
		Changed:   len(b.notices) > 0,
		Reset:     b.reset,
		Persisted: persisted,
		Stats:     b.stats,
	}, nil
}

// Localize re-renders every notice message with pr.
func (r *Result) Localize(pr *Printer) {
	for i := range r.Notices {
		r.Notices[i].Text = r.Notices[i].Message(pr)
	}
}
