package errors

import (
	"fmt"
	"net/http"
)

// statusKinds maps backend HTTP statuses to kinds. 5xx statuses are
// handled separately.
var statusKinds = map[int]error{
	http.StatusBadRequest:          ErrInvalidInput,
	http.StatusUnauthorized:        ErrUnauthorized,
	http.StatusForbidden:           ErrUnauthorized,
	http.StatusNotFound:            ErrNotFound,
	http.StatusConflict:            ErrAlreadyExists,
	http.StatusUnprocessableEntity: ErrInvalidInput,
	http.StatusTooManyRequests:     ErrRateLimited,
	http.StatusGatewayTimeout:      ErrTimeout,
}

// KindForStatus returns the kind an HTTP status maps to, or nil.
func KindForStatus(status int) error {
	if kind, ok := statusKinds[status]; ok {
		return kind
	}
	if status >= 500 {
		return ErrBackendUnavailable
	}
	return nil
}

// APIError is a failed call to the storefront backend.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{Service: service, StatusCode: statusCode, Message: message}
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	kind := KindForStatus(e.StatusCode)
	return kind != nil && target == kind
}

// WrapAPI reports a transport failure against service. Nil stays nil.
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Service: service, StatusCode: statusCode, Message: err.Error(), Err: err}
}

// AuthenticationError: credentials were missing or rejected.
type AuthenticationError struct {
	Service string
	Method  string
	Message string
	Err     error
}

func NewAuthenticationError(service, method, message string, err error) *AuthenticationError {
	return &AuthenticationError{Service: service, Method: method, Message: message, Err: err}
}

func (e *AuthenticationError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error for %s (%s): %s", e.Service, e.Method, e.Message)
}

func (e *AuthenticationError) Unwrap() error        { return e.Err }
func (e *AuthenticationError) Is(target error) bool { return target == ErrUnauthorized }

// TimeoutError: a backend call ran past its deadline.
type TimeoutError struct {
	Operation string
	Err       error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s timed out", e.Operation)
	}
	return fmt.Sprintf("%s timed out: %v", e.Operation, e.Err)
}

func (e *TimeoutError) Unwrap() error        { return e.Err }
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
