// Package response provides the JSON envelope every storefront API endpoint
// answers with: a data field on success and an error field on failure.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/vyfood/storefront/pkg/errors"
)

// Response is the envelope of every API response.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error describes a failed request. Fields carries per-field form errors.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Success wraps data.
func Success(data any) Response { return Response{Data: data} }

// Fail wraps an error description.
func Fail(code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// JSON writes resp with status.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is out; an encoding failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(resp)
}

func OK(w http.ResponseWriter, data any)      { JSON(w, http.StatusOK, Success(data)) }
func Created(w http.ResponseWriter, data any) { JSON(w, http.StatusCreated, Success(data)) }
func NoContent(w http.ResponseWriter)         { w.WriteHeader(http.StatusNoContent) }

func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

func Unauthorized(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusUnauthorized, Fail("UNAUTHORIZED", message, details))
}

func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// Conflict answers 409 and still carries data, so a client told its cart
// changed can render the notices.
func Conflict(w http.ResponseWriter, code, message string, data any) {
	resp := Fail(code, message, "")
	resp.Data = data
	JSON(w, http.StatusConflict, resp)
}

// Invalid answers 422 with one message per failing form field.
func Invalid(w http.ResponseWriter, message string, fields map[string]string) {
	resp := Fail("VALIDATION_FAILED", message, "")
	resp.Error.Fields = fields
	JSON(w, http.StatusUnprocessableEntity, resp)
}

func RateLimited(w http.ResponseWriter, details string) {
	JSON(w, http.StatusTooManyRequests, Fail("RATE_LIMITED", "Rate limit exceeded", details))
}

// InternalError answers 500 without revealing err.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError,
		Fail("INTERNAL_ERROR", "Internal server error", "An unexpected error occurred"))
}

func ServiceUnavailable(w http.ResponseWriter, details string) {
	JSON(w, http.StatusServiceUnavailable, Fail("SERVICE_UNAVAILABLE", "Service unavailable", details))
}

// fieldErrors is implemented by multi-field validation errors.
type fieldErrors interface {
	Messages() map[string]string
}

// errorKind maps an error sentinel to a status and code. An empty title
// uses the error text as the message; otherwise the text goes to details.
type errorKind struct {
	sentinel error
	status   int
	code     string
	title    string
}

// Checked in order: the first matching sentinel wins.
var errorKinds = []errorKind{
	{errors.ErrCartChanged, http.StatusConflict, "CART_CHANGED", ""},
	{errors.ErrOutOfStock, http.StatusConflict, "OUT_OF_STOCK", ""},
	{errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND", ""},
	{errors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{errors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", ""},
	{errors.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST", ""},
	{errors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded"},
	{errors.ErrTimeout, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out"},
	{errors.ErrBackendUnavailable, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "Backend unavailable"},
}

// ErrorFromType writes the response matching err's kind. Form errors list
// their fields; backend 4xx statuses with no storefront meaning pass
// through; anything unrecognized is a 500.
func ErrorFromType(w http.ResponseWriter, err error) {
	var fields fieldErrors
	if errors.As(err, &fields) {
		Invalid(w, "Please correct the highlighted fields", fields.Messages())
		return
	}
	for _, k := range errorKinds {
		if !errors.Is(err, k.sentinel) {
			continue
		}
		if k.title == "" {
			JSON(w, k.status, Fail(k.code, err.Error(), ""))
		} else {
			JSON(w, k.status, Fail(k.code, k.title, err.Error()))
		}
		return
	}
	var apiErr *errors.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		JSON(w, apiErr.StatusCode, Fail("BACKEND_REJECTED", apiErr.Message, ""))
		return
	}
	InternalError(w, err)
}
