package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vyfood/storefront/pkg/logging"
)

func TestSetDefault(t *testing.T) {
	original := *logging.Default()
	defer logging.SetDefault(original)

	var buf bytes.Buffer
	logging.SetDefault(zerolog.New(&buf).Level(zerolog.DebugLevel))

	logging.Info().Msg("catalog refreshed")
	log.Warn().Msg("cart reset")

	out := buf.String()
	for _, want := range []string{"catalog refreshed", "cart reset"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestContextWithoutLoggerUsesDefault(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)

	ctx := logging.WithSession(context.Background(), "session-42")
	logging.FromContext(ctx).Info().Msg("line clamped")

	entry, ok := tl.Find("line clamped")
	if !ok {
		t.Fatalf("entry not recorded: %s", tl.Output())
	}
	if entry[logging.SessionField] != "session-42" {
		t.Errorf("session_id = %v, want session-42", entry[logging.SessionField])
	}
}

func TestZerologContextLoggerIsHonored(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := tl.Logger.WithContext(context.Background())

	logging.Ctx(logging.WithProduct(ctx, "pho-bo")).Info().Msg("sold out")

	tl.AssertContains(t, `"product_id":"pho-bo"`, "sold out")
}

func TestRequestID(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRequestID(ctx, "req-1")

	if got := logging.RequestID(ctx); got != "req-1" {
		t.Fatalf("RequestID() = %q, want req-1", got)
	}
	if got := logging.RequestID(context.Background()); got != "" {
		t.Fatalf("RequestID() on empty context = %q", got)
	}
	logging.Ctx(ctx).Info().Msg("proxied")
	tl.AssertContains(t, `"request_id":"req-1"`)
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("first")
	tl.Logger.Error().Str("kind", "conflict").Msg("second")

	if n := len(tl.Entries()); n != 2 {
		t.Fatalf("got %d entries, want 2", n)
	}
	entry, ok := tl.Find("second")
	if !ok || entry["level"] != "error" || entry["kind"] != "conflict" {
		t.Errorf("unexpected entry %v", entry)
	}

	tl.Reset()
	if len(tl.Entries()) != 0 {
		t.Error("entries remain after Reset")
	}
	tl.AssertNotContains(t, "first")
}
