package catalogs

import (
	"errors"
	"strings"
	"time"

	"github.com/vyfood/storefront/pkg/constants"
	pkgerrors "github.com/vyfood/storefront/pkg/errors"
)

// Product is a sellable item as published by the backend.
type Product struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
	Image       string    `json:"image,omitempty" yaml:"image,omitempty"`
	Price       Money     `json:"price" yaml:"price"`
	Stock       int       `json:"stock" yaml:"stock"`
	Hidden      bool      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// IsAvailable reports whether the product can be put in a cart at all.
func (p Product) IsAvailable() bool {
	return !p.Hidden && p.Stock > 0
}

// Validate checks the product invariants and returns every violation joined.
func (p Product) Validate() error {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, pkgerrors.NewValidationError("id", p.ID, "cannot be empty"))
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, pkgerrors.NewValidationError("name", p.Name, "cannot be empty"))
	}
	if len(p.Name) > constants.MaxProductNameLength {
		errs = append(errs, pkgerrors.NewValidationError("name", len(p.Name), "is too long"))
	}
	if len(p.Description) > constants.MaxDescriptionLength {
		errs = append(errs, pkgerrors.NewValidationError("description", len(p.Description), "is too long"))
	}
	if p.Price < 0 {
		errs = append(errs, pkgerrors.NewValidationError("price", p.Price, "cannot be negative"))
	}
	if p.Stock < 0 {
		errs = append(errs, pkgerrors.NewValidationError("stock", p.Stock, "cannot be negative"))
	}
	return errors.Join(errs...)
}
