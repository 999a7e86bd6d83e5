package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vyfood/storefront/internal/server/response"
)

// RateLimiter keeps one token bucket per client IP. Each bucket holds a
// minute's allowance and refills evenly over the minute.
type RateLimiter struct {
	perMinute int
	every     rate.Limit
	logger    *zerolog.Logger
	now       func() time.Time
	trusted   []netip.Prefix

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per minute per IP.
func NewRateLimiter(perMinute int, logger *zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		every:     rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		logger:    logger,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
	}
}

// TrustProxies makes the limiter key requests arriving from these networks
// on their X-Forwarded-For client instead of the proxy's address.
func (rl *RateLimiter) TrustProxies(proxies []netip.Prefix) {
	rl.trusted = proxies
}

// ParseProxies reads IP addresses and CIDR ranges. A bare address trusts
// only itself.
func ParseProxies(values []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if p, err := netip.ParsePrefix(v); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: not an IP address or CIDR range", v)
		}
		out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return out, nil
}

// Allow takes a token from ip's bucket.
func (rl *RateLimiter) Allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.every, rl.perMinute)}
		rl.buckets[ip] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	return b.lim.AllowN(now, 1)
}

// retryAfter is the refill time of one token, in whole seconds.
func (rl *RateLimiter) retryAfter() string {
	secs := math.Ceil(60 / float64(max(rl.perMinute, 1)))
	return strconv.Itoa(int(secs))
}

// Run forgets buckets idle for two minutes until ctx ends.
func (rl *RateLimiter) Run(ctx context.Context) {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-2 * time.Minute)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP is the socket address unless that is a trusted proxy. Then
// X-Forwarded-For is walked from the right, skipping trusted hops, so a
// client cannot pick its own bucket by prepending addresses.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	if !rl.isTrusted(ip) {
		return ip
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !rl.isTrusted(hop) {
			return hop
		}
		ip = hop
	}
	return ip
}

// RateLimit answers 429 with Retry-After once a client's bucket is empty.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := rl.clientIP(r)
			if rl.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			rl.logger.Warn().Str("client_ip", ip).Str("path", r.URL.Path).Msg("Client over rate limit")
			w.Header().Set("Retry-After", rl.retryAfter())
			response.RateLimited(w, "Too many requests. Please try again later.")
		})
	}
}
