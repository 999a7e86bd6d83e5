package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vyfood/storefront/internal/transport"
	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/logging"
)

type sessionKey struct{}

// SessionConfig controls the cart session cookie.
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// DefaultSessionConfig returns a 30-day vyfood_session cookie.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName: constants.SessionCookieName,
		MaxAge:     30 * 24 * time.Hour,
	}
}

// Session makes sure every request carries a cart session ID. A missing or
// malformed cookie is replaced by a fresh UUID.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = constants.SessionCookieName
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, id)
			ctx = logging.WithSession(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the request's cart session ID.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// WithSessionID stores a session ID, for handlers used without Session.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// ForwardToken copies the caller's bearer token into the context so backend
// calls are made on the end user's behalf.
func ForwardToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := transport.TokenFromRequest(r); token != "" {
			r = r.WithContext(transport.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
