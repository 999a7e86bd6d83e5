package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
)

func TestClientHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(APIKeyHeader("X-API-Key"), WithAPIKey("service-key"), WithUserAgent("vyfood-test"))
	ctx := WithToken(logging.WithRequestID(context.Background(), "req-1"), "user-token")

	var out struct{ OK bool }
	if err := c.JSON(ctx, http.MethodPost, srv.URL+"/orders", map[string]string{"a": "b"}, &out); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !out.OK {
		t.Error("response not decoded")
	}

	checks := map[string]string{
		"X-API-Key":               "service-key",
		"Authorization":           "Bearer user-token",
		constants.RequestIDHeader: "req-1",
		"Content-Type":            "application/json",
		"Accept":                  "application/json",
		"User-Agent":              "vyfood-test",
	}
	for header, want := range checks {
		if got.Get(header) != want {
			t.Errorf("%s = %q, want %q", header, got.Get(header), want)
		}
	}
}

func TestClientGeneratesRequestID(t *testing.T) {
	var id string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = r.Header.Get(constants.RequestIDHeader)
	}))
	defer srv.Close()

	resp, err := New(nil).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(id) != 36 {
		t.Errorf("expected a UUID request ID, got %q", id)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		message string
		check   func(error) bool
	}{
		{http.StatusNotFound, `{"error":"product not found"}`, "product not found", errors.IsNotFound},
		{http.StatusUnauthorized, `{"message":"token expired"}`, "token expired", errors.IsUnauthorized},
		{http.StatusBadRequest, `{"error":{"message":"bad phone"}}`, "bad phone", errors.IsValidationError},
		{http.StatusBadGateway, `upstream exploded`, "upstream exploded", errors.IsBackendUnavailable},
		{http.StatusTooManyRequests, ``, "429 Too Many Requests", errors.IsRateLimited},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))

		err := New(nil, WithService("vyfood-api")).JSON(context.Background(), http.MethodGet, srv.URL+"/products/x", nil, nil)
		srv.Close()

		var apiErr *errors.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected APIError, got %v", tt.status, err)
		}
		if apiErr.Message != tt.message {
			t.Errorf("status %d: message = %q, want %q", tt.status, apiErr.Message, tt.message)
		}
		if apiErr.Service != "vyfood-api" || apiErr.Endpoint != "GET /products/x" {
			t.Errorf("status %d: service/endpoint = %q %q", tt.status, apiErr.Service, apiErr.Endpoint)
		}
		if !tt.check(err) {
			t.Errorf("status %d: error classification failed for %v", tt.status, err)
		}
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	err := New(nil).JSON(context.Background(), http.MethodGet, addr, nil, nil)
	if !errors.IsBackendUnavailable(err) {
		t.Errorf("expected backend unavailable, got %v", err)
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Errorf("dial error not kept in the chain: %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error text lost the cause: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = New(nil).JSON(ctx, http.MethodGet, addr, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := New(nil).JSON(ctx, http.MethodGet, srv.URL+"/products", nil, nil)
	if !errors.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "GET /products") {
		t.Errorf("timeout should name the endpoint: %v", err)
	}
}

func TestRequestBuilder(t *testing.T) {
	rb, err := NewRequestBuilder("https://api.example.com/v1/")
	if err != nil {
		t.Fatal(err)
	}
	got := rb.URL(url.Values{"category": {"noodles"}}, "products", "phở bò")
	want := "https://api.example.com/v1/products/ph%E1%BB%9F%20b%C3%B2?category=noodles"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}

	for _, bad := range []string{"", "not a url", "/relative"} {
		if _, err := NewRequestBuilder(bad); !errors.IsValidationError(err) {
			t.Errorf("NewRequestBuilder(%q) should fail", bad)
		}
	}
}

func TestDecodeResponseEmptyBody(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody}
	var target map[string]any
	if err := DecodeResponse(resp, &target); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	resp = &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{bad`))}
	var perr *errors.ParseError
	if err := DecodeResponse(resp, &target); !errors.As(err, &perr) {
		t.Errorf("expected ParseError, got %v", err)
	}
}
