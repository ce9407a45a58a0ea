// Package watch reports changes to a set of files.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DEFAULT_DEBOUNCE = 100 * time.Millisecond

// Watcher watches the directories holding a set of files, and reports
// writes to those files.
type Watcher struct {
	Debounce time.Duration // Quiet time before a change is reported.
	Logger   *zap.Logger   // Nil is silent.

	watcher *fsnotify.Watcher
	files   map[string]bool
}

// New watches the named files. The files need not exist yet, but their
// directories must.
func New(paths ...string) (w *Watcher, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}

	w = &Watcher{
		Debounce: DEFAULT_DEBOUNCE,
		watcher:  watcher,
		files:    make(map[string]bool, len(paths)),
	}

	dirs := map[string]bool{}
	for _, path := range paths {
		var abs string
		abs, err = filepath.Abs(path)
		if err != nil {
			break
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true

		err = watcher.Add(dir)
		if err != nil {
			break
		}
	}

	if err != nil {
		watcher.Close()
		w = nil
		return
	}

	return
}

func (w *Watcher) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

func (w *Watcher) match(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	return w.files[filepath.Clean(event.Name)]
}

// Run calls changed after each burst of writes to the watched files, until
// the context is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, changed func()) (err error) {
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.match(event) {
				w.logger().Debug("watch: event", zap.Stringer("op", event.Op), zap.String("name", event.Name))
				pending = time.After(w.Debounce)
			}
		case watch_err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger().Warn("watch: error", zap.Error(watch_err))
		case <-pending:
			pending = nil
			changed()
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
