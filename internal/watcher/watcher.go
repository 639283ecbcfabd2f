// Package watcher reloads the pacing-profiles file when it changes on
// disk, so profile tweaks apply without restarting the service.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

type Watcher interface {
	// Watch blocks until ctx is cancelled, invoking the callback for
	// events on the given file.
	Watch(ctx context.Context, path string) error
	OnChange(callback func(path string, event EventType))
}

// FSWatcher watches a single file via fsnotify. Events are debounced:
// editors often emit several writes per save.
type FSWatcher struct {
	logger   *slog.Logger
	callback func(path string, event EventType)
	debounce time.Duration
}

func NewFSWatcher(logger *slog.Logger) *FSWatcher {
	return &FSWatcher{logger: logger, debounce: 200 * time.Millisecond}
}

func (w *FSWatcher) OnChange(callback func(path string, event EventType)) {
	w.callback = callback
}

func (w *FSWatcher) Watch(ctx context.Context, path string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Watch the directory, not the file: editors replace files on save
	// and the watch would die with the old inode.
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	w.logger.Info("watching file", "path", path)

	var timer *time.Timer
	var pending EventType
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping", "path", path)
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
				pending = EventDelete
			case ev.Op.Has(fsnotify.Create):
				pending = EventCreate
			case ev.Op.Has(fsnotify.Write):
				pending = EventModify
			default:
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if w.callback != nil {
				w.callback(path, pending)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// StubWatcher blocks without watching anything. Used when no profiles
// file is configured; tests can deliver events by hand with Fire.
type StubWatcher struct {
	logger   *slog.Logger
	callback func(path string, event EventType)
}

func NewStubWatcher(logger *slog.Logger) *StubWatcher {
	return &StubWatcher{logger: logger}
}

func (w *StubWatcher) Watch(ctx context.Context, path string) error {
	w.logger.Info("watcher stub: watch requested", "path", path)
	<-ctx.Done()
	return nil
}

func (w *StubWatcher) OnChange(callback func(path string, event EventType)) {
	w.callback = callback
}

// Fire invokes the registered callback as if the file had changed.
func (w *StubWatcher) Fire(path string, event EventType) {
	if w.callback != nil {
		w.callback(path, event)
	}
}
