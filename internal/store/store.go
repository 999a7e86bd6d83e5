// Package store persists cart strings by session.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/vyfood/storefront/pkg/errors"
)

// Store keeps one persisted cart string per session. A session without a
// cart loads as the empty string.
type Store interface {
	Load(ctx context.Context, sessionID string) (string, error)
	Save(ctx context.Context, sessionID, payload string) error
	Delete(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)

	// Prune deletes carts not saved since before and returns how many went.
	Prune(ctx context.Context, before time.Time) (int, error)

	Close() error
}

func checkSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.NewValidationError("session_id", sessionID, "cannot be empty")
	}
	return nil
}
