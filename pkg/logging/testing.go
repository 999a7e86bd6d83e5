package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger records JSON log entries in memory.
type TestLogger struct {
	*zerolog.Logger

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewTestLogger returns a trace-level logger that records everything it is
// given. The global level is lowered for the test and restored afterwards.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	tl := &TestLogger{}
	l := zerolog.New(tl).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	tl.Logger = &l
	return tl
}

// CaptureLoggingForTest installs a TestLogger as the default logger until
// the test ends.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()

	prev := *Default()
	tl := NewTestLogger(t)
	SetDefault(*tl.Logger)
	t.Cleanup(func() { SetDefault(prev) })
	return tl
}

// Write implements io.Writer.
func (tl *TestLogger) Write(p []byte) (int, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buf.Write(p)
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buf.String()
}

// Reset drops recorded entries.
func (tl *TestLogger) Reset() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.buf.Reset()
}

// Entries decodes each recorded line. Lines that are not JSON are skipped.
func (tl *TestLogger) Entries() []map[string]any {
	var entries []map[string]any
	sc := bufio.NewScanner(strings.NewReader(tl.Output()))
	for sc.Scan() {
		var e map[string]any
		if json.Unmarshal(sc.Bytes(), &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

// Find returns the first entry whose message is msg.
func (tl *TestLogger) Find(msg string) (map[string]any, bool) {
	for _, e := range tl.Entries() {
		if e[zerolog.MessageFieldName] == msg {
			return e, true
		}
	}
	return nil, false
}

// AssertContains fails t unless the raw output contains each of substrs.
func (tl *TestLogger) AssertContains(t testing.TB, substrs ...string) {
	t.Helper()
	out := tl.Output()
	for _, s := range substrs {
		if !strings.Contains(out, s) {
			t.Errorf("log output missing %q\n%s", s, out)
		}
	}
}

// AssertNotContains fails t if the raw output contains s.
func (tl *TestLogger) AssertNotContains(t testing.TB, s string) {
	t.Helper()
	if out := tl.Output(); strings.Contains(out, s) {
		t.Errorf("log output unexpectedly contains %q\n%s", s, out)
	}
}
