package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyfood/storefront/pkg/logging"
)

func TestContextFields(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
		//nolint:staticcheck // nil context is tolerated
		assert.Same(t, logging.Default(), logging.FromContext(nil))
	})

	t.Run("fields accumulate", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithSession(ctx, "s-1")
		ctx = logging.WithSource(ctx, "backend")
		ctx = logging.WithOperation(ctx, "reconcile")
		ctx = logging.WithFields(ctx, map[string]any{"lines": 3, "changed": true})
		ctx = logging.WithError(ctx, errors.New("stale price"))

		logging.FromContext(ctx).Info().Msg("done")

		entry, ok := tl.Find("done")
		require.True(t, ok, tl.Output())
		assert.Equal(t, "s-1", entry[logging.SessionField])
		assert.Equal(t, "backend", entry[logging.SourceField])
		assert.Equal(t, "reconcile", entry[logging.OperationField])
		assert.EqualValues(t, 3, entry["lines"])
		assert.Equal(t, true, entry["changed"])
		assert.Equal(t, "stale price", entry["error"])
	})

	t.Run("parent logger is not modified", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		parent := logging.WithLogger(context.Background(), tl.Logger)
		_ = logging.WithSession(parent, "child")

		logging.FromContext(parent).Info().Msg("parent")
		tl.AssertNotContains(t, "child")
	})

	t.Run("no-op inputs", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, logging.WithError(ctx, nil))
		assert.Equal(t, ctx, logging.WithFields(ctx, nil))
	})
}
