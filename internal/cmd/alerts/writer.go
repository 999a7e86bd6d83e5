package alerts

import (
	"io"
	"strings"
)

// Writer prints alerts.
type Writer interface {
	WriteAlert(*Alert) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(*Alert) error

// WriteAlert calls f.
func (f WriterFunc) WriteAlert(a *Alert) error { return f(a) }

// DiscardWriter drops every alert.
var DiscardWriter Writer = WriterFunc(func(*Alert) error { return nil })

// NewWriterTo prints the headline and then each detail as "  - detail".
// With color the icon takes the level's color.
func NewWriterTo(w io.Writer, color bool) Writer {
	return WriterFunc(func(a *Alert) error {
		var b strings.Builder
		if color {
			b.WriteString(a.Level.Color() + a.Icon + resetColor)
			b.WriteString(strings.TrimPrefix(a.String(), a.Icon))
		} else {
			b.WriteString(a.String())
		}
		b.WriteByte('\n')
		for _, d := range a.Details {
			b.WriteString("  - " + d + "\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
