// Package watch triggers re-renders when the source document changes on
// disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay coalesces the burst of events editors produce while saving
// into a single render pass.
const settleDelay = 100 * time.Millisecond

// Watcher observes one document path. Changes are coalesced: at most one
// render pass is pending at a time, and a change arriving while a pass runs
// schedules a fresh pass whose result supersedes the in-flight one.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string
	log  *zap.Logger
}

// New watches the directory containing path rather than the file itself,
// because editors replace files via rename which would drop a direct watch.
func New(path string, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("unable to watch %q: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		fsw:  fsw,
		path: filepath.Clean(path),
		log:  log,
	}, nil
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run blocks until the context is canceled, invoking render once per
// coalesced change. Render errors are logged and the loop keeps going: the
// next save may produce a valid document again.
func (w *Watcher) Run(ctx context.Context, render func(context.Context) error) error {
	timer := time.NewTimer(settleDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("Document changed on disk", zap.String("op", ev.Op.String()))
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(settleDelay)
			pending = true

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File watcher error", zap.Error(err))

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := render(ctx); err != nil {
				w.log.Error("Unable to re-render document", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
