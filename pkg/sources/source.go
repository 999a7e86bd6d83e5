// Package sources defines where the storefront gets its product catalog from.
//
// The production source is the backend REST service (see internal/backend).
// A catalog file can stand in for it during development or serve as a
// fallback when the backend is unreachable.
package sources

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
)

// ID represents the identifier of a catalog source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Common source IDs.
const (
	BackendID ID = "backend"
	FileID    ID = "file"
	StaticID  ID = "static"
)

// Source fetches a complete product catalog.
type Source interface {
	// ID identifies the source in logs and events.
	ID() ID

	// Fetch retrieves a fresh catalog.
	Fetch(ctx context.Context) (*catalogs.Catalog, error)
}

// Watcher is implemented by sources that can announce changes themselves.
// Watch blocks until ctx is done, calling onChange after each change.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Static serves a fixed catalog.
type Static struct {
	catalog *catalogs.Catalog
}

// NewStatic returns a source that always yields a copy of catalog.
func NewStatic(catalog *catalogs.Catalog) *Static {
	return &Static{catalog: catalog}
}

// ID returns StaticID.
func (s *Static) ID() ID { return StaticID }

// Fetch returns a copy of the catalog.
func (s *Static) Fetch(ctx context.Context) (*catalogs.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.catalog == nil {
		return nil, errors.NewNotFoundError("catalog", string(StaticID))
	}
	return s.catalog.Copy(), nil
}

// Chain tries each source in order and returns the first catalog fetched.
type Chain struct {
	sources []Source
}

// NewChain returns a source that falls back through sources.
func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

// ID joins the IDs of the chained sources.
func (c *Chain) ID() ID {
	ids := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		ids = append(ids, s.ID().String())
	}
	return ID(strings.Join(ids, "+"))
}

// Fetch returns the catalog of the first source that succeeds. Cancellation
// stops the chain immediately.
func (c *Chain) Fetch(ctx context.Context) (*catalogs.Catalog, error) {
	if len(c.sources) == 0 {
		return nil, errors.NewConfigError("sources", "no catalog source configured", nil)
	}
	var errs []error
	for _, s := range c.sources {
		catalog, err := s.Fetch(ctx)
		if err == nil {
			return catalog, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logging.Warn().Err(err).Str("source", s.ID().String()).Msg("Catalog source failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", s.ID(), err))
	}
	return nil, stderrors.Join(errs...)
}

// Watch forwards to every chained source that is a Watcher.
func (c *Chain) Watch(ctx context.Context, onChange func()) error {
	var watchers []Watcher
	for _, s := range c.sources {
		if w, ok := s.(Watcher); ok {
			watchers = append(watchers, w)
		}
	}
	if len(watchers) == 0 {
		<-ctx.Done()
		return nil
	}
	errCh := make(chan error, len(watchers))
	for _, w := range watchers {
		go func(w Watcher) {
			errCh <- w.Watch(ctx, onChange)
		}(w)
	}
	var errs []error
	for range watchers {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
