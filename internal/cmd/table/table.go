// Package table converts storefront values into rows for CLI tables.
package table

import (
	"strconv"
	"strings"

	"github.com/vyfood/storefront/internal/cmd/emoji"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/differ"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// maxDescription bounds descriptions in wide tables.
const maxDescription = 60

// ProductsToTableData converts products to table format. Prices are rendered
// with pr.
func ProductsToTableData(products []catalogs.Product, wide bool, pr *reconcile.Printer) Data {
	headers := []string{"ID", "Name", "Category", "Price", "Stock"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Status", "Description")
		align = append(align, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		row := []string{
			p.ID,
			p.Name,
			orDash(p.Category),
			pr.Money(p.Price),
			strconv.Itoa(p.Stock),
		}
		if wide {
			row = append(row, productStatus(p), orDash(truncate(p.Description, maxDescription)))
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

func productStatus(p catalogs.Product) string {
	switch {
	case p.Hidden:
		return "hidden"
	case p.Stock <= 0:
		return "sold out"
	default:
		return "available"
	}
}

// CartToTableData converts a reconciled cart to table format with a subtotal
// row.
func CartToTableData(res *reconcile.Result, pr *reconcile.Printer) Data {
	rows := make([][]string, 0, len(res.Cart.Lines)+1)
	for _, l := range res.Cart.Lines {
		rows = append(rows, []string{
			l.ProductID,
			l.Name,
			strconv.Itoa(l.Quantity),
			pr.Money(l.UnitPrice),
			pr.Money(l.Total()),
		})
	}
	rows = append(rows, []string{"", "Subtotal", strconv.Itoa(res.Cart.Count()), "", pr.Money(res.Cart.Subtotal())})

	return Data{
		Headers:         []string{"ID", "Name", "Qty", "Price", "Total"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
}

// NoticesToTableData converts reconciliation notices to table format.
func NoticesToTableData(notices []reconcile.Notice) Data {
	rows := make([][]string, 0, len(notices))
	for _, n := range notices {
		rows = append(rows, []string{emoji.ForNotice(n.Kind), n.Kind.String(), orDash(n.ProductID), n.Text})
	}
	return Data{
		Headers: []string{"", "Kind", "Product", "Message"},
		Rows:    rows,
	}
}

// ChangesetToTableData converts a catalog changeset to table format.
func ChangesetToTableData(changes *differ.Changeset) Data {
	rows := make([][]string, 0, changes.Total())
	for _, p := range changes.Added {
		rows = append(rows, []string{"added", p.ID, p.Name, "-"})
	}
	for _, u := range changes.Updated {
		fields := make([]string, 0, len(u.Changes))
		for _, c := range u.Changes {
			fields = append(fields, c.Path)
		}
		rows = append(rows, []string{"updated", u.ID, u.New.Name, orDash(strings.Join(fields, ", "))})
	}
	for _, p := range changes.Removed {
		rows = append(rows, []string{"removed", p.ID, p.Name, "-"})
	}
	return Data{
		Headers: []string{"Change", "ID", "Name", "Fields"},
		Rows:    rows,
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
