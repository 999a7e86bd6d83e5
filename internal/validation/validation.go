// Package validation checks the storefront's forms before they are sent to
// the backend. Every check reports all failing fields at once.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vyfood/storefront/internal/backend"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/orders"
)

// Field limits.
const (
	MaxNameLength     = 100
	MaxAddressLength  = 300
	MaxNoteLength     = 500
	MinPasswordLength = 8
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Vietnamese numbers after NormalizePhone: 0xxxxxxxxx or +84xxxxxxxxx.
	phonePattern = regexp.MustCompile(`^(\+84|0)[0-9]{9,10}$`)
)

// Errors collects the field errors of one form.
type Errors struct {
	Fields []*errors.ValidationError
}

// Error implements the error interface.
func (e *Errors) Error() string {
	switch len(e.Fields) {
	case 0:
		return "validation failed"
	case 1:
		return e.Fields[0].Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("validation failed for %d fields: %s", len(e.Fields), strings.Join(msgs, "; "))
}

// Is implements errors.Is support.
func (e *Errors) Is(target error) bool {
	return target == errors.ErrInvalidInput
}

// Unwrap returns the individual field errors.
func (e *Errors) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f
	}
	return errs
}

// Messages maps each failing field to its first message.
func (e *Errors) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}

func (e *Errors) add(field string, value any, message string) {
	e.Fields = append(e.Fields, errors.NewValidationError(field, value, message))
}

// err returns nil when no field failed.
func (e *Errors) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *Errors) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		e.add(field, value, "is required")
		return false
	}
	return true
}

func (e *Errors) maxLength(field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		e.add(field, value, fmt.Sprintf("must be at most %d characters", limit))
	}
}

func (e *Errors) email(field, value string) {
	if e.required(field, value) && !IsEmail(value) {
		e.add(field, value, "must be a valid email address")
	}
}

func (e *Errors) phone(field, value string, required bool) {
	if strings.TrimSpace(value) == "" {
		if required {
			e.add(field, value, "is required")
		}
		return
	}
	if !IsPhone(value) {
		e.add(field, value, "must be a valid phone number")
	}
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// IsPhone reports whether s is a Vietnamese phone number.
func IsPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}

// NormalizePhone strips spaces, dots and dashes.
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '-':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// Checkout validates the checkout form.
func Checkout(req orders.Request) error {
	var e Errors
	if e.required("name", req.Customer.Name) {
		e.maxLength("name", req.Customer.Name, MaxNameLength)
	}
	e.phone("phone", req.Customer.Phone, true)
	if e.required("address", req.Customer.Address) {
		e.maxLength("address", req.Customer.Address, MaxAddressLength)
	}
	if req.Customer.Email != "" && !IsEmail(req.Customer.Email) {
		e.add("email", req.Customer.Email, "must be a valid email address")
	}
	if !req.Payment.IsValid() {
		e.add("payment_method", string(req.Payment), fmt.Sprintf("must be one of %v", orders.PaymentMethods()))
	}
	e.maxLength("note", req.Note, MaxNoteLength)
	return e.err()
}

// Profile validates the profile form.
func Profile(p backend.ProfileUpdate) error {
	var e Errors
	if e.required("name", p.Name) {
		e.maxLength("name", p.Name, MaxNameLength)
	}
	e.email("email", p.Email)
	e.phone("phone", p.Phone, false)
	e.maxLength("address", p.Address, MaxAddressLength)
	return e.err()
}

// Registration validates the sign-up form. confirm is the repeated password.
func Registration(reg backend.Registration, confirm string) error {
	var e Errors
	if e.required("name", reg.Name) {
		e.maxLength("name", reg.Name, MaxNameLength)
	}
	e.email("email", reg.Email)
	if msg := passwordProblem(reg.Password); msg != "" {
		e.add("password", nil, msg)
	}
	if confirm != reg.Password {
		e.add("confirm_password", nil, "does not match the password")
	}
	return e.err()
}

// Login validates the login form.
func Login(c backend.Credentials) error {
	var e Errors
	e.email("email", c.Email)
	e.required("password", c.Password)
	return e.err()
}

func passwordProblem(pw string) string {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return "must contain a letter and a digit"
	}
	return ""
}

// Product validates the admin product form.
func Product(p catalogs.Product) error {
	var e Errors
	if e.required("name", p.Name) {
		e.maxLength("name", p.Name, MaxNameLength)
	}
	e.required("category", p.Category)
	if p.Price < 0 {
		e.add("price", p.Price, "must not be negative")
	}
	if p.Stock < 0 {
		e.add("stock", p.Stock, "must not be negative")
	}
	return e.err()
}
