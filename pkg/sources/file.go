package sources

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
)

// File loads the catalog from a YAML or JSON file.
type File struct {
	path     string
	debounce time.Duration
}

// FileOption configures a File source.
type FileOption func(*File)

// WithDebounce sets how long Watch waits for further writes before
// reporting a change.
func WithDebounce(d time.Duration) FileOption {
	return func(f *File) {
		f.debounce = d
	}
}

// NewFile creates a file source.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{path: path, debounce: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID returns FileID.
func (f *File) ID() ID { return FileID }

// Path returns the catalog file path.
func (f *File) Path() string { return f.path }

// Fetch loads the catalog file.
func (f *File) Fetch(ctx context.Context) (*catalogs.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	catalog, err := catalogs.Load(f.path)
	if err != nil {
		return nil, errors.WrapResource("load", "catalog", f.path, err)
	}
	return catalog, nil
}

// Watch calls onChange whenever the catalog file is written, created or
// renamed into place. The parent directory is watched so editors that
// replace the file atomically are seen too.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapResource("create", "watcher", f.path, err)
	}
	defer watcher.Close()

	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return errors.WrapIO("watch", dir, err)
	}
	target := filepath.Clean(f.path)

	logger := logging.FromContext(ctx).With().Str("path", f.path).Logger()
	logger.Debug().Msg("Watching catalog file")

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(f.debounce)
			} else {
				timer.Reset(f.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			logger.Info().Msg("Catalog file changed")
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Catalog watcher error")
		}
	}
}
