package app

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vyfood/storefront/pkg/logging"
)

var cliLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger builds the CLI logger. --log-level wins over -q, and -q wins
// over -v. Debug and trace record the caller.
func NewLogger(config *Config) zerolog.Logger {
	level := logLevel(config, os.Stderr)
	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
}

// logLevel resolves the effective level name, writing conflicts and unknown
// names to warn.
func logLevel(config *Config, warn io.Writer) string {
	if config.LogLevel != "" {
		level := strings.ToLower(config.LogLevel)
		if !slices.Contains(cliLevels, level) {
			fmt.Fprintf(warn, "Warning: unknown log level %q, using info\n", config.LogLevel)
			return "info"
		}
		return level
	}

	switch {
	case config.Verbose && config.Quiet:
		fmt.Fprintln(warn, "Warning: --verbose and --quiet both set, using --quiet")
		return "warn"
	case config.Quiet:
		return "warn"
	case config.Verbose:
		return "debug"
	}
	return "info"
}
