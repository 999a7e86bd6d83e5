package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// Field names shared by every storefront log entry.
const (
	SessionField   = "session_id"
	ProductField   = "product_id"
	SourceField    = "source"
	OperationField = "operation"
	RequestIDField = "request_id"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
)

// WithLogger stores l in ctx. A nil l stores the default logger.
func WithLogger(ctx context.Context, l *zerolog.Logger) context.Context {
	if l == nil {
		l = Default()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored by WithLogger. Loggers attached
// with zerolog's own Logger.WithContext are honored too; otherwise the
// default logger is returned.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return zerolog.Ctx(ctx)
}

// Ctx is FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// extend derives a child of the context logger and stores it back.
func extend(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	l := fn(FromContext(ctx).With()).Logger()
	return WithLogger(ctx, &l)
}

// WithRequestID records the request ID in ctx and on its logger.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	return extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str(RequestIDField, id)
	})
}

// RequestID returns the ID set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithSession tags the context logger with a cart session.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str(SessionField, sessionID)
	})
}

// WithProduct tags the context logger with a product.
func WithProduct(ctx context.Context, productID string) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str(ProductField, productID)
	})
}

// WithSource tags the context logger with a catalog source.
func WithSource(ctx context.Context, source string) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str(SourceField, source)
	})
}

// WithOperation tags the context logger with an operation name.
func WithOperation(ctx context.Context, op string) context.Context {
	return extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str(OperationField, op)
	})
}

// WithFields attaches arbitrary fields, in key order.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Fields(fields)
	})
}

// WithError attaches err under "error". A nil err leaves ctx unchanged.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return extend(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Err(err)
	})
}
