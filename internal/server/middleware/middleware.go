// Package middleware provides HTTP middleware for the storefront server:
// request IDs, access logging, panic recovery, cart sessions, token
// forwarding, CORS, admin authentication and rate limiting.
package middleware

import (
	"bufio"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vyfood/storefront/internal/server/response"
	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/logging"
)

const maxRequestIDLen = 128

// Chain composes middleware. The first one listed sees the request first.
func Chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

// Logger gives every request an ID and a scoped logger, then writes one
// access log entry when the handler returns. A client-supplied X-Request-ID
// is reused. 5xx responses log at error level, 4xx at warn, and health
// probes at debug.
func Logger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r)
			w.Header().Set(constants.RequestIDHeader, id)

			scoped := logger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
			ctx := logging.WithRequestID(logging.WithLogger(r.Context(), &scoped), id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			accessEvent(logger, r.URL.Path, rec.status).
				Str(logging.RequestIDField, id).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int64("bytes", rec.bytes).
				Dur("duration_ms", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(constants.RequestIDHeader); id != "" && len(id) <= maxRequestIDLen {
		return id
	}
	return uuid.NewString()
}

func accessEvent(logger *zerolog.Logger, path string, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return logger.Error()
	case status >= http.StatusBadRequest:
		return logger.Warn()
	case strings.HasSuffix(path, "/health") || strings.HasSuffix(path, "/ready"):
		return logger.Debug()
	}
	return logger.Info()
}

// Recovery turns a handler panic into a 500 envelope and logs the stack.
// http.ErrAbortHandler is re-raised.
func Recovery(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error().
					Interface("panic", v).
					Str(logging.RequestIDField, logging.RequestID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("Panic recovered")
				response.InternalError(w, nil)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder remembers the status code and body size.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(p []byte) (int, error) {
	rec.wroteHeader = true
	n, err := rec.ResponseWriter.Write(p)
	rec.bytes += int64(n)
	return n, err
}

// Flush passes SSE flushes through.
func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack passes WebSocket upgrades through.
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	rec.wroteHeader = true
	rec.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}
