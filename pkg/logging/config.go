package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vyfood/storefront/pkg/constants"
)

// Config describes how a logger is built.
type Config struct {
	// Level: trace, debug, info, warn, error or off.
	Level string
	// Format: json, console or auto (console on a terminal).
	Format string
	// Output: stderr, stdout, discard or a file path.
	Output string
	// TimeFormat is a named layout (kitchen, rfc3339, stamp) or a Go layout.
	// Only console output uses it.
	TimeFormat string
	NoColor    bool
	AddCaller  bool
	// Fields are attached to every entry.
	Fields map[string]any
}

// DefaultConfig returns info-level auto-format logging to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// ConfigFromEnv overlays the environment on DefaultConfig. Each setting is
// read from VYFOOD_LOG_<NAME> first, then LOG_<NAME>. DEBUG=1 selects the
// debug level when no level is set.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	for name, dst := range map[string]*string{
		"LEVEL":       &cfg.Level,
		"FORMAT":      &cfg.Format,
		"OUTPUT":      &cfg.Output,
		"TIME_FORMAT": &cfg.TimeFormat,
	} {
		if v := logEnv(name); v != "" {
			*dst = v
		}
	}
	if logEnv("LEVEL") == "" && os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	cfg.AddCaller = logEnv("CALLER") == "true"
	cfg.Fields = parseFields(logEnv("FIELDS"))
	return cfg
}

// NewLoggerFromConfig builds a logger and sets zerolog's global level to
// match. Debug and trace loggers always record the caller.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	c := zerolog.New(cfg.writer()).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		c = c.Caller()
	}
	if len(cfg.Fields) > 0 {
		c = c.Fields(cfg.Fields)
	}
	return c.Logger()
}

// Configure builds a logger from cfg and makes it the default.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigureFromEnv is Configure(ConfigFromEnv()).
func ConfigureFromEnv() {
	Configure(ConfigFromEnv())
}

// ParseLevel maps a level name to a zerolog level. Unknown names and the
// empty string give info.
func ParseLevel(name string) zerolog.Level {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func (c *Config) writer() io.Writer {
	out := openOutput(c.Output)

	format := strings.ToLower(c.Format)
	if format == "" || format == "auto" {
		format = "json"
		if isTerminal(out) {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeLayout(c.TimeFormat),
		NoColor:    c.NoColor,
	}
}

func openOutput(dest string) io.Writer {
	switch strings.ToLower(dest) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v; writing to stderr\n", err)
		return os.Stderr
	}
	return f
}

var timeLayouts = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"datetime":    time.DateTime,
}

func timeLayout(name string) string {
	if layout, ok := timeLayouts[strings.ToLower(name)]; ok {
		return layout
	}
	if strings.Contains(name, "2006") || strings.Contains(name, "15:04") {
		return name
	}
	return time.Kitchen
}

// parseFields reads "k=v,k2=v2".
func parseFields(s string) map[string]any {
	fields := make(map[string]any)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if k = strings.TrimSpace(k); ok && k != "" {
			fields[k] = strings.TrimSpace(v)
		}
	}
	return fields
}

func logEnv(name string) string {
	if v := os.Getenv("VYFOOD_LOG_" + name); v != "" {
		return v
	}
	return os.Getenv("LOG_" + name)
}
