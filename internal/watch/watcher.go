// Package watch re-renders a preview whenever its input files change.
//
// Watcher turns raw fsnotify events into debounced batches of changed paths.
// Live binds those batches to a preview.Coordinator: template and definition
// edits reload the bundle immediately, value edits go through the
// coordinator's deferred update path.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a changed path is reported.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher reports changes to a fixed set of files. It watches their parent
// directories so editors that save by rename are still seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	logger   *zap.Logger
}

// New watches paths. Run or Close must be called to release the watcher.
func New(paths []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]struct{}),
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	if len(w.files) == 0 {
		return nil, fmt.Errorf("watch: no files to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch: add %q: %w", dir, err)
		}
	}
	w.fsw = fsw
	return w, nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced batches of changed absolute paths to fn until ctx is
// done. fn runs on the Run goroutine. Run closes the watcher and returns
// ctx.Err().
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	defer func() { _ = w.fsw.Close() }()

	tick := w.debounce / 2
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return ctx.Err()
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(event.Name)
			if _, ok := w.files[name]; !ok {
				continue
			}
			pending[name] = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ctx.Err()
			}
			w.logger.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			var ready []string
			for name, last := range pending {
				if now.Sub(last) >= w.debounce {
					ready = append(ready, name)
					delete(pending, name)
				}
			}
			if len(ready) == 0 {
				continue
			}
			sort.Strings(ready)
			w.logger.Debug("files changed", zap.Strings("paths", ready))
			fn(ready)
		}
	}
}
