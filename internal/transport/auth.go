package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/vyfood/storefront/pkg/errors"
)

// Authenticator puts the storefront's service credential on a request.
type Authenticator interface {
	Apply(req *http.Request, credential string)
}

// AuthFunc adapts a function to Authenticator.
type AuthFunc func(req *http.Request, credential string)

// Apply calls f.
func (f AuthFunc) Apply(req *http.Request, credential string) { f(req, credential) }

// NoAuth sends no credential.
var NoAuth Authenticator = AuthFunc(func(*http.Request, string) {})

// Bearer sends the credential as "Authorization: Bearer <credential>".
func Bearer() Authenticator {
	return AuthFunc(func(req *http.Request, credential string) {
		req.Header.Set("Authorization", "Bearer "+credential)
	})
}

// APIKeyHeader sends the credential in the named header.
func APIKeyHeader(name string) Authenticator {
	return AuthFunc(func(req *http.Request, credential string) {
		req.Header.Set(name, credential)
	})
}

// APIKeyQuery sends the credential as a query parameter, keeping any
// parameters already present.
func APIKeyQuery(param string) Authenticator {
	return AuthFunc(func(req *http.Request, credential string) {
		if req.URL == nil {
			return
		}
		q := req.URL.Query()
		q.Set(param, credential)
		req.URL.RawQuery = q.Encode()
	})
}

// DefaultAuthScheme is the scheme the VyFood backend expects.
const DefaultAuthScheme = "header:X-API-Key"

// ParseAuth reads a scheme of the form "none", "bearer", "header:<name>" or
// "query:<param>". The empty string means DefaultAuthScheme.
func ParseAuth(scheme string) (Authenticator, error) {
	if scheme == "" {
		scheme = DefaultAuthScheme
	}
	kind, arg, _ := strings.Cut(scheme, ":")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "none":
		return NoAuth, nil
	case "bearer":
		return Bearer(), nil
	case "header":
		if arg != "" {
			return APIKeyHeader(http.CanonicalHeaderKey(arg)), nil
		}
	case "query":
		if arg != "" {
			return APIKeyQuery(arg), nil
		}
	}
	return nil, &errors.ValidationError{
		Field:   "auth",
		Value:   scheme,
		Message: `want "none", "bearer", "header:<name>" or "query:<param>"`,
	}
}

type tokenKey struct{}

// WithToken attaches the end user's bearer token to ctx. The client forwards
// it to the backend unchanged.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// Token returns the end user's bearer token from ctx, if any.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// TokenFromRequest extracts a bearer token from an incoming request. The
// scheme name is matched case-insensitively.
func TokenFromRequest(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
