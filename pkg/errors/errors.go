// Package errors defines the storefront's error vocabulary. Typed errors
// carry detail for logs and responses; each one also matches a sentinel
// through errors.Is, so callers branch on a kind without type assertions:
//
//	if errors.IsOutOfStock(err) { ... }
package errors

import "errors"

// Re-exported so packages need a single errors import.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Kinds.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrRateLimited        = errors.New("rate limited")
	ErrTimeout            = errors.New("timed out")

	// ErrOutOfStock: a product cannot supply the requested quantity.
	ErrOutOfStock = errors.New("out of stock")

	// ErrCartChanged: reconciliation modified the cart and the customer has
	// to review it before checking out.
	ErrCartChanged = errors.New("cart changed")
)

func IsNotFound(err error) bool           { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool      { return errors.Is(err, ErrAlreadyExists) }
func IsValidationError(err error) bool    { return errors.Is(err, ErrInvalidInput) }
func IsUnauthorized(err error) bool       { return errors.Is(err, ErrUnauthorized) }
func IsBackendUnavailable(err error) bool { return errors.Is(err, ErrBackendUnavailable) }
func IsRateLimited(err error) bool        { return errors.Is(err, ErrRateLimited) }
func IsTimeout(err error) bool            { return errors.Is(err, ErrTimeout) }
func IsOutOfStock(err error) bool         { return errors.Is(err, ErrOutOfStock) }
func IsCartChanged(err error) bool        { return errors.Is(err, ErrCartChanged) }

// causeText is err.Error(), or "" for nil.
func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
