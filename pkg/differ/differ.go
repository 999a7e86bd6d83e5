package differ

import (
	"strconv"

	"github.com/vyfood/storefront/pkg/catalogs"
)

// Differ handles change detection between catalogs.
type Differ interface {
	// Products compares two product lists and returns changes.
	Products(existing, updated []catalogs.Product) *Changeset

	// Catalogs compares two complete catalogs. A nil catalog is empty.
	Catalogs(existing, updated *catalogs.Catalog) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
}

// New creates a Differ.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalogs compares two complete catalogs.
func (d *differ) Catalogs(existing, updated *catalogs.Catalog) *Changeset {
	var before, after []catalogs.Product
	if existing != nil {
		before = existing.List()
	}
	if updated != nil {
		after = updated.List()
	}
	return d.Products(before, after)
}

// Products compares two product lists. Added and updated products follow the
// order of updated, removed products the order of existing.
func (d *differ) Products(existing, updated []catalogs.Product) *Changeset {
	changeset := &Changeset{
		Added:   []catalogs.Product{},
		Updated: []ProductUpdate{},
		Removed: []catalogs.Product{},
	}

	existingMap := make(map[string]catalogs.Product, len(existing))
	for _, p := range existing {
		existingMap[p.ID] = p
	}
	newMap := make(map[string]struct{}, len(updated))

	for _, p := range updated {
		newMap[p.ID] = struct{}{}
		old, ok := existingMap[p.ID]
		if !ok {
			changeset.Added = append(changeset.Added, p)
			continue
		}
		if changes := d.fields(old, p); len(changes) > 0 {
			changeset.Updated = append(changeset.Updated, ProductUpdate{
				ID:       p.ID,
				Existing: old,
				New:      p,
				Changes:  changes,
			})
		}
	}

	for _, p := range existing {
		if _, ok := newMap[p.ID]; !ok {
			changeset.Removed = append(changeset.Removed, p)
		}
	}
	return changeset
}

func (d *differ) fields(old, updated catalogs.Product) []FieldChange {
	var changes []FieldChange
	add := func(path, before, after string) {
		if before == after || d.ignoreFields[path] {
			return
		}
		changes = append(changes, FieldChange{Path: path, OldValue: before, NewValue: after})
	}

	add("name", old.Name, updated.Name)
	add("description", old.Description, updated.Description)
	add("category", old.Category, updated.Category)
	add("image", old.Image, updated.Image)
	add("price", old.Price.String(), updated.Price.String())
	add("stock", strconv.Itoa(old.Stock), strconv.Itoa(updated.Stock))
	add("hidden", strconv.FormatBool(old.Hidden), strconv.FormatBool(updated.Hidden))
	return changes
}
