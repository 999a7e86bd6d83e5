// Package emoji provides symbol constants for CLI output.
// The symbols give reconciliation notices and command results a consistent
// look across commands.
package emoji

import "github.com/vyfood/storefront/pkg/reconcile"

// Status symbols.
const (
	// Success marks completed operations and unchanged carts.
	Success = "✓"

	// Error marks failures.
	Error = "✗"

	// Warning marks notices the customer has to read.
	Warning = "!"

	// Info marks informational lines.
	Info = "i"
)

// Notice symbols, one per reconciliation outcome.
const (
	Removed  = "✗"
	Reduced  = "↓"
	Merged   = "+"
	Repriced = "$"
	Reset    = "↺"
)

// ForNotice returns the symbol for a notice kind.
func ForNotice(kind reconcile.Kind) string {
	switch kind {
	case reconcile.NoticeInvalidLine, reconcile.NoticeRemoved, reconcile.NoticeOutOfStock:
		return Removed
	case reconcile.NoticeQuantityReduced:
		return Reduced
	case reconcile.NoticeMerged:
		return Merged
	case reconcile.NoticePriceChanged:
		return Repriced
	case reconcile.NoticeCartReset:
		return Reset
	default:
		return Info
	}
}
