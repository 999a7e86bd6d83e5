package reconcile

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
)

// Option configures a Reconciler.
type Option func(*Reconciler) error

// WithCurrency sets the ISO 4217 currency used to render prices in notices.
func WithCurrency(code string) Option {
	return func(r *Reconciler) error {
		unit, err := currency.ParseISO(strings.TrimSpace(code))
		if err != nil {
			return errors.NewValidationError("currency", code, fmt.Sprintf("unknown currency: %v", err))
		}
		r.currency = unit
		return nil
	}
}

// WithLanguage sets the BCP 47 language notices are rendered in.
func WithLanguage(tag string) Option {
	return func(r *Reconciler) error {
		lang, err := language.Parse(strings.TrimSpace(tag))
		if err != nil {
			return errors.NewValidationError("language", tag, fmt.Sprintf("invalid language tag: %v", err))
		}
		r.language = lang
		return nil
	}
}

// WithMaxQuantity caps the quantity of any single line. The cap applies on
// top of the product's stock.
func WithMaxQuantity(max int) Option {
	return func(r *Reconciler) error {
		if max < 1 {
			return errors.NewValidationError("max_quantity", max, "must be at least 1")
		}
		r.maxQuantity = max
		return nil
	}
}

func defaults() *Reconciler {
	return &Reconciler{
		currency:    currency.MustParseISO(constants.DefaultCurrency),
		language:    language.MustParse(constants.DefaultLanguage),
		maxQuantity: constants.MaxLineQuantity,
	}
}
