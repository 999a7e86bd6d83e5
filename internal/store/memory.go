package store

import (
	"context"
	"slices"
	"sync"
	"time"
)

type entry struct {
	payload   string
	updatedAt time.Time
}

// Memory is an in-process Store. Carts are lost on restart.
type Memory struct {
	mu    sync.RWMutex
	carts map[string]entry
	now   func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		carts: make(map[string]entry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the stored cart string.
func (m *Memory) Load(ctx context.Context, sessionID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkSession(sessionID); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.carts[sessionID].payload, nil
}

// Save stores the cart string.
func (m *Memory) Save(ctx context.Context, sessionID, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkSession(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = entry{payload: payload, updatedAt: m.now()}
	return nil
}

// Delete removes the session's cart. Deleting a missing cart is not an error.
func (m *Memory) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkSession(sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

// Sessions returns the sessions with a stored cart, sorted.
func (m *Memory) Sessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.carts))
	for id := range m.carts {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

// Prune deletes carts last saved before the given time.
func (m *Memory) Prune(ctx context.Context, before time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.carts {
		if e.updatedAt.Before(before) {
			delete(m.carts, id)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
