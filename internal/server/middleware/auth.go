package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vyfood/storefront/internal/server/response"
)

// AuthConfig guards the admin API with a static key.
type AuthConfig struct {
	Enabled    bool
	APIKey     string
	HeaderName string
	// Prefixes lists the path prefixes that require the key.
	Prefixes []string
}

// DefaultAuthConfig protects /api/v1/admin with the X-Admin-Key header.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		HeaderName: "X-Admin-Key",
		Prefixes:   []string{"/api/v1/admin"},
	}
}

// Auth rejects requests to protected prefixes that lack the admin key. With
// no key configured the admin API is closed entirely.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled || !isProtected(r.URL.Path, config.Prefixes) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(config.HeaderName)
			if config.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(config.APIKey)) != 1 {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("key_provided", key != "").
					Msg("Admin authentication failed")

				response.Unauthorized(w, "Invalid or missing admin key", "Provide the admin key in the "+config.HeaderName+" header")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProtected(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
