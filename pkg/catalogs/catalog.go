// Package catalogs holds the product catalog the storefront sells from.
//
// A Catalog is a concurrency-safe, insertion-ordered set of products keyed by
// ID. Catalogs are replaced wholesale on refresh; callers that need a stable
// view take a Copy.
package catalogs

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	pkgerrors "github.com/vyfood/storefront/pkg/errors"
)

// Catalog is a concurrent safe, ordered collection of products.
type Catalog struct {
	mu        sync.RWMutex
	order     []string
	products  map[string]*Product
	source    string
	fetchedAt time.Time
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithSource records where the catalog was loaded from.
func WithSource(source string) Option {
	return func(c *Catalog) {
		c.source = source
	}
}

// WithFetchedAt records when the catalog was fetched.
func WithFetchedAt(t time.Time) Option {
	return func(c *Catalog) {
		c.fetchedAt = t
	}
}

// WithCapacity sets the initial capacity of the product map.
func WithCapacity(capacity int) Option {
	return func(c *Catalog) {
		c.products = make(map[string]*Product, capacity)
		c.order = make([]string, 0, capacity)
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		products: make(map[string]*Product),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromProducts builds a catalog from a product list, rejecting duplicate IDs
// and products that fail validation.
func NewFromProducts(products []Product, opts ...Option) (*Catalog, error) {
	c := New(append([]Option{WithCapacity(len(products))}, opts...)...)
	var errs []error
	for _, p := range products {
		if err := c.Add(p); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Source returns where the catalog was loaded from.
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// FetchedAt returns when the catalog was fetched. Zero means never.
func (c *Catalog) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Get returns a product by id and whether it exists.
func (c *Catalog) Get(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return Product{}, false
	}
	return *p, true
}

// Exists checks if a product exists without returning it.
func (c *Catalog) Exists(id string) bool {
	c.mu.RLock()
	_, ok := c.products[id]
	c.mu.RUnlock()
	return ok
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// List returns every product in insertion order.
func (c *Catalog) List() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.products[id])
	}
	return out
}

// Set inserts or replaces a product (upsert). A replaced product keeps its
// position in the listing order.
func (c *Catalog) Set(p Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.products[p.ID]; !exists {
		c.order = append(c.order, p.ID)
	}
	c.products[p.ID] = &p
	return nil
}

// Add adds a product, returning an error if it already exists.
func (c *Catalog) Add(p Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("product %q: %w", p.ID, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.products[p.ID]; exists {
		return fmt.Errorf("product %q: %w", p.ID, pkgerrors.ErrAlreadyExists)
	}
	c.order = append(c.order, p.ID)
	c.products[p.ID] = &p
	return nil
}

// Delete removes a product by id.
func (c *Catalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.products[id]; !exists {
		return pkgerrors.NewNotFoundError("product", id)
	}
	delete(c.products, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	return nil
}

// Categories returns the distinct product categories, sorted.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}

// Copy returns a deep copy of the catalog.
func (c *Catalog) Copy() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := &Catalog{
		order:     slices.Clone(c.order),
		products:  make(map[string]*Product, len(c.products)),
		source:    c.source,
		fetchedAt: c.fetchedAt,
	}
	for id, p := range c.products {
		pc := *p
		cp.products[id] = &pc
	}
	return cp
}

// Validate checks every product and reports all violations.
func (c *Catalog) Validate() error {
	var errs []error
	for _, p := range c.List() {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("product %q: %w", p.ID, err))
		}
	}
	return errors.Join(errs...)
}
