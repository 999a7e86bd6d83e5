// Package logging wraps zerolog for the storefront.
//
// A process-wide logger is built from LOG_* / VYFOOD_LOG_* environment
// variables at start-up and replaced by the CLI once flags are parsed.
// Request- and cart-scoped loggers travel in a context.Context:
//
//	ctx := logging.WithSession(ctx, id)
//	logging.FromContext(ctx).Info().Int("lines", n).Msg("Cart reconciled")
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Nop discards everything.
var Nop = zerolog.Nop()

var std = NewLoggerFromConfig(ConfigFromEnv())

func init() {
	zerolog.DefaultContextLogger = &std
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &std
}

// SetDefault replaces the process-wide logger. zerolog's global logger and
// the fallback for contexts without a logger follow it.
func SetDefault(l zerolog.Logger) {
	std = l
	log.Logger = l
}

// New returns a JSON logger writing to w at the current global level.
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(zerolog.GlobalLevel()).With().Timestamp().Logger()
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event { return std.Debug() }

// Info starts an info event on the default logger.
func Info() *zerolog.Event { return std.Info() }

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event { return std.Warn() }

// Error starts an error event on the default logger.
func Error() *zerolog.Event { return std.Error() }

// Fatal starts a fatal event; the process exits after Msg.
func Fatal() *zerolog.Event { return std.Fatal() }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
