package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/vyfood/storefront/internal/server/middleware"
	"github.com/vyfood/storefront/pkg/errors"
)

// Config describes the HTTP server.
type Config struct {
	Host string
	Port int

	// PathPrefix mounts the JSON API, e.g. "/api/v1".
	PathPrefix string

	// StaticDir serves the storefront page from disk. Empty serves the
	// embedded build.
	StaticDir string

	CORSEnabled bool
	// CORSOrigins restricts CORS; empty allows any origin.
	CORSOrigins []string

	// AdminKey must accompany admin requests. Empty closes the admin API.
	AdminKey string

	SessionCookie string
	SecureCookies bool

	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
	// TrustedProxies lists the addresses or CIDR ranges whose
	// X-Forwarded-For header names the client. Empty trusts no one.
	TrustedProxies []string
	// CacheTTL bounds how long rendered catalog responses are reused.
	CacheTTL time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig listens on localhost:8080 and serves the API at /api/v1.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8080,
		PathPrefix:   "/api/v1",
		RateLimit:    300,
		CacheTTL:     30 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// normalize fills zero values from DefaultConfig and rejects settings the
// server cannot run with.
func (c Config) normalize() (Config, error) {
	def := DefaultConfig()
	if c.PathPrefix == "" {
		c.PathPrefix = def.PathPrefix
	}
	c.PathPrefix = "/" + strings.Trim(c.PathPrefix, "/")
	if c.CacheTTL == 0 {
		c.CacheTTL = def.CacheTTL
	}

	switch {
	case c.Port < 0 || c.Port > 65535:
		return c, errors.NewConfigError("server", fmt.Sprintf("port %d out of range", c.Port), nil)
	case c.PathPrefix == "/":
		return c, errors.NewConfigError("server", "API path prefix cannot be the site root", nil)
	case c.RateLimit < 0:
		return c, errors.NewConfigError("server", "rate limit cannot be negative", nil)
	case c.CacheTTL < 0:
		return c, errors.NewConfigError("server", "cache TTL cannot be negative", nil)
	}
	if _, err := middleware.ParseProxies(c.TrustedProxies); err != nil {
		return c, errors.NewConfigError("server", "invalid trusted proxies", err)
	}
	return c, nil
}
