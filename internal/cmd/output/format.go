// Package output renders CLI results as tables, JSON or YAML.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Format names an output encoding selected with -o/--format.
type Format string

// Supported formats. Wide is a table with extra columns.
const (
	FormatTable Format = "table"
	FormatWide  Format = "wide"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var formats = []Format{FormatTable, FormatWide, FormatJSON, FormatYAML}

// IsTable reports whether f renders a table. The empty format does.
func (f Format) IsTable() bool {
	return f == "" || f == FormatTable || f == FormatWide
}

// ParseFormat validates a --format value, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return f, nil
	}
	for _, known := range formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(formats))
	for i, known := range formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("invalid format %q: must be one of: %s", s, strings.Join(names, ", "))
}

// DetectFormat returns the requested format, or a table on a terminal and
// JSON when stdout is piped.
func DetectFormat(requested string) Format {
	if requested != "" {
		return Format(strings.ToLower(requested))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}
