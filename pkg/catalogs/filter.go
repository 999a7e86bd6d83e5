package catalogs

import (
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/vyfood/storefront/pkg/errors"
)

// Filter selects products from a catalog. Empty fields match everything.
type Filter struct {
	// Expression is an expr-lang boolean expression evaluated per product,
	// for example `price < 5000 && stock > 0`.
	Expression string

	// Category matches case-insensitively.
	Category string

	// Query is a case-insensitive substring of the name or description.
	Query string

	// AvailableOnly drops hidden and sold-out products.
	AvailableOnly bool
}

// productEnv is the environment filter expressions are evaluated against.
type productEnv struct {
	ID          string `expr:"id"`
	Name        string `expr:"name"`
	Description string `expr:"description"`
	Category    string `expr:"category"`
	Price       int64  `expr:"price"`
	Stock       int    `expr:"stock"`
	Hidden      bool   `expr:"hidden"`
	Available   bool   `expr:"available"`
}

func envFor(p Product) productEnv {
	return productEnv{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       int64(p.Price),
		Stock:       p.Stock,
		Hidden:      p.Hidden,
		Available:   p.IsAvailable(),
	}
}

// programs caches compiled filter expressions by source text.
var programs sync.Map

// CompileFilter compiles and caches a filter expression so syntax errors can be
// reported before any product is evaluated.
func CompileFilter(expression string) (*vm.Program, error) {
	if cached, ok := programs.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.Env(productEnv{}), expr.AsBool())
	if err != nil {
		return nil, errors.NewParseError("expr", "", err.Error(), err)
	}
	programs.Store(expression, program)
	return program, nil
}

// Filter returns the products matching f in catalog order.
func (c *Catalog) Filter(f Filter) ([]Product, error) {
	var program *vm.Program
	if strings.TrimSpace(f.Expression) != "" {
		var err error
		if program, err = CompileFilter(f.Expression); err != nil {
			return nil, err
		}
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	var out []Product
	for _, p := range c.List() {
		if f.AvailableOnly && !p.IsAvailable() {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if program != nil {
			result, err := expr.Run(program, envFor(p))
			if err != nil {
				return nil, errors.NewParseError("expr", "", err.Error(), err)
			}
			if ok, _ := result.(bool); !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}
