package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRateLimiterRefill(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(2, &logger)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("first requests rejected")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("third request allowed")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("limit shared across IPs")
	}

	now = now.Add(30 * time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Error("token not refilled after half a minute")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("refilled more than one token")
	}

	now = now.Add(10 * time.Minute)
	rl.sweep()
	if len(rl.buckets) != 0 {
		t.Errorf("idle buckets kept: %d", len(rl.buckets))
	}
}

func TestRetryAfter(t *testing.T) {
	logger := zerolog.Nop()
	for limit, want := range map[int]string{1: "60", 2: "30", 300: "1", 7: "9"} {
		if got := NewRateLimiter(limit, &logger).retryAfter(); got != want {
			t.Errorf("retryAfter(%d) = %s, want %s", limit, got, want)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(1, &logger)
	h := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := func(forwarded string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "198.51.100.9:5555"
		if forwarded != "" {
			r.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	if code := req(""); code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if code := req(""); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}
	// Without trusted proxies the header cannot buy a fresh bucket.
	for _, fwd := range []string{"203.0.113.7", "203.0.113.8, 198.51.100.9"} {
		if code := req(fwd); code != http.StatusTooManyRequests {
			t.Errorf("spoofed X-Forwarded-For %q = %d, want 429", fwd, code)
		}
	}
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(1, &logger)
	proxies, err := ParseProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", ""})
	if err != nil {
		t.Fatal(err)
	}
	rl.TrustProxies(proxies)

	tests := []struct {
		name      string
		remote    string
		forwarded []string
		want      string
	}{
		{"direct client", "198.51.100.9:1", []string{"203.0.113.7"}, "198.51.100.9"},
		{"one proxy", "10.0.0.1:1", []string{"203.0.113.7"}, "203.0.113.7"},
		{"spoofed prefix", "10.0.0.1:1", []string{"6.6.6.6, 203.0.113.7"}, "203.0.113.7"},
		{"proxy chain", "10.0.0.1:1", []string{"203.0.113.7, 192.0.2.1", "10.1.1.1"}, "203.0.113.7"},
		{"no header", "10.0.0.1:1", nil, "10.0.0.1"},
		{"only proxies", "10.0.0.1:1", []string{"10.2.2.2"}, "10.2.2.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for _, v := range tt.forwarded {
				r.Header.Add("X-Forwarded-For", v)
			}
			if got := rl.clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseProxiesRejectsGarbage(t *testing.T) {
	if _, err := ParseProxies([]string{"10.0.0.0/8", "proxy.local"}); err == nil {
		t.Error("expected error for a host name")
	}
}

func TestRateLimiterRunStops(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(1, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
