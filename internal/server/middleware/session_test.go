package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vyfood/storefront/internal/transport"
	"github.com/vyfood/storefront/pkg/constants"
)

func TestSessionIssuesCookie(t *testing.T) {
	var seen string
	h := Session(DefaultSessionConfig())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != constants.SessionCookieName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if cookies[0].Value != seen || !cookies[0].HttpOnly {
		t.Errorf("cookie %+v does not match context session %q", cookies[0], seen)
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("session is not a UUID: %q", seen)
	}
}

func TestSessionKeepsValidCookie(t *testing.T) {
	id := uuid.NewString()
	var seen string
	h := Session(DefaultSessionConfig())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: id})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if seen != id {
		t.Errorf("expected %s, got %s", id, seen)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("cookie reissued for a valid session")
	}
}

func TestSessionReplacesForgedCookie(t *testing.T) {
	var seen string
	h := Session(DefaultSessionConfig())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "../../etc/passwd"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("forged session kept: %q", seen)
	}
}

func TestForwardToken(t *testing.T) {
	var token string
	h := ForwardToken(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		token = transport.Token(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if token != "user-token" {
		t.Errorf("expected forwarded token, got %q", token)
	}
}
