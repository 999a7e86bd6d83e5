// Package differ compares product catalogs and reports what changed.
package differ

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vyfood/storefront/pkg/catalogs"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a product was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a product was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a product was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string `json:"path"`      // Field name (e.g., "price")
	OldValue string `json:"old_value"` // Previous value (string representation)
	NewValue string `json:"new_value"` // New value (string representation)
}

// ProductUpdate represents an update to an existing product.
type ProductUpdate struct {
	ID       string           `json:"id"`
	Existing catalogs.Product `json:"existing"`
	New      catalogs.Product `json:"new"`
	Changes  []FieldChange    `json:"changes"`
}

// Changed reports whether the update touches the named field.
func (u ProductUpdate) Changed(path string) bool {
	return slices.ContainsFunc(u.Changes, func(c FieldChange) bool { return c.Path == path })
}

// Changeset represents all changes between two catalogs.
type Changeset struct {
	Added   []catalogs.Product `json:"added"`
	Updated []ProductUpdate    `json:"updated"`
	Removed []catalogs.Product `json:"removed"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Updated) > 0 || len(c.Removed) > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return !c.HasChanges()
}

// Total returns the number of changed products.
func (c *Changeset) Total() int {
	return len(c.Added) + len(c.Updated) + len(c.Removed)
}

// cartFields are the fields reconciliation looks at.
var cartFields = []string{"price", "stock", "hidden", "name", "image"}

// AffectsCarts reports whether stored carts may reconcile differently after
// this change.
func (c *Changeset) AffectsCarts() bool {
	return len(c.AffectedProductIDs()) > 0
}

// AffectedProductIDs returns the IDs of removed products and of products
// whose cart-relevant fields changed.
func (c *Changeset) AffectedProductIDs() []string {
	var ids []string
	for _, p := range c.Removed {
		ids = append(ids, p.ID)
	}
	for _, u := range c.Updated {
		if slices.ContainsFunc(cartFields, u.Changed) {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}
	var parts []string
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(c.Updated)))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(c.Removed)))
	}
	return fmt.Sprintf("Products: %s (Total: %d changes)", strings.Join(parts, ", "), c.Total())
}

// Print writes a detailed, human-readable view of the changeset.
func (c *Changeset) Print(w io.Writer) {
	fmt.Fprintln(w, c.String())
	if c.IsEmpty() {
		return
	}
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(c.Added) > 0 {
		fmt.Fprintf(w, "\nAdded (%d):\n", len(c.Added))
		for _, p := range c.Added {
			fmt.Fprintf(w, "  • %s (%s) %s\n", p.ID, p.Name, p.Price)
		}
	}
	if len(c.Updated) > 0 {
		fmt.Fprintf(w, "\nUpdated (%d):\n", len(c.Updated))
		for _, u := range c.Updated {
			fmt.Fprintf(w, "  • %s:\n", u.ID)
			for _, change := range u.Changes {
				fmt.Fprintf(w, "    - %s: %s → %s\n", change.Path, change.OldValue, change.NewValue)
			}
		}
	}
	if len(c.Removed) > 0 {
		fmt.Fprintf(w, "\nRemoved (%d):\n", len(c.Removed))
		for _, p := range c.Removed {
			fmt.Fprintf(w, "  • %s (%s)\n", p.ID, p.Name)
		}
	}
}
