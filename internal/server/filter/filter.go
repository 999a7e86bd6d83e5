// Package filter provides query parameter parsing and filtering for API endpoints.
package filter

import (
	"cmp"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/vyfood/storefront/pkg/catalogs"
)

// Default and maximum page sizes.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ProductQuery contains the product list criteria.
type ProductQuery struct {
	// Catalog-level filters
	Filter catalogs.Filter

	// Price range, inclusive; zero means unbounded
	MinPrice catalogs.Money
	MaxPrice catalogs.Money

	// Pagination
	Sort   string
	Order  string
	Limit  int
	Offset int
}

// ParseProductQuery extracts product list parameters from an HTTP request.
func ParseProductQuery(r *http.Request) ProductQuery {
	q := r.URL.Query()

	query := ProductQuery{
		Filter: catalogs.Filter{
			Expression: q.Get("filter"),
			Category:   q.Get("category"),
			Query:      strings.TrimSpace(q.Get("q")),
		},
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Limit:  min(max(parseIntOrDefault(q.Get("limit"), DefaultLimit), 1), MaxLimit),
		Offset: max(parseIntOrDefault(q.Get("offset"), 0), 0),
	}

	if v := q.Get("available"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			query.Filter.AvailableOnly = b
		}
	}
	if v := q.Get("min_price"); v != "" {
		if m, err := catalogs.ParseMoney(v); err == nil {
			query.MinPrice = m
		}
	}
	if v := q.Get("max_price"); v != "" {
		if m, err := catalogs.ParseMoney(v); err == nil {
			query.MaxPrice = m
		}
	}

	return query
}

// Key returns a stable cache key for the query.
func (f ProductQuery) Key() string {
	return strings.Join([]string{
		f.Filter.Expression,
		strings.ToLower(f.Filter.Category),
		strings.ToLower(f.Filter.Query),
		strconv.FormatBool(f.Filter.AvailableOnly),
		strconv.FormatInt(int64(f.MinPrice), 10),
		strconv.FormatInt(int64(f.MaxPrice), 10),
		f.Sort, f.Order,
		strconv.Itoa(f.Limit), strconv.Itoa(f.Offset),
	}, "|")
}

// Apply drops hidden and out-of-range products, sorts and returns one page
// along with the number of matches before paging.
func (f ProductQuery) Apply(products []catalogs.Product) ([]catalogs.Product, int) {
	filtered := make([]catalogs.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			filtered = append(filtered, p)
		}
	}
	f.sort(filtered)

	total := len(filtered)
	if f.Offset >= total {
		return []catalogs.Product{}, total
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return filtered[f.Offset:end], total
}

func (f ProductQuery) matches(p catalogs.Product) bool {
	if p.Hidden {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	return true
}

// sort orders products in place by the sort field. Unknown fields keep
// catalog order.
func (f ProductQuery) sort(products []catalogs.Product) {
	var compare func(a, b catalogs.Product) int
	switch f.Sort {
	case "price":
		compare = func(a, b catalogs.Product) int { return cmp.Compare(a.Price, b.Price) }
	case "name":
		compare = func(a, b catalogs.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case "stock":
		compare = func(a, b catalogs.Product) int { return cmp.Compare(a.Stock, b.Stock) }
	default:
		return
	}
	if strings.EqualFold(f.Order, "desc") {
		asc := compare
		compare = func(a, b catalogs.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(products, compare)
}

// parseIntOrDefault parses an integer or returns default.
func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}
