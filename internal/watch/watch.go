// Package watch debounces filesystem change notifications for schema
// directories, restricting them to .sql files: events that touch
// non-SQL files are ignored. Grounded on
// original_source/src/commands/apply/watch.rs's get_changed_sql_file +
// debounce loop, translated from its channel/recv_timeout idiom into
// fsnotify's event channel plus a reset timer, since notify's
// RecursiveMode::Recursive has no direct fsnotify equivalent — each
// subdirectory is added explicitly instead.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the interval change notifications are debounced by
// when the caller doesn't override it.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a directory tree for .sql file changes and invokes a
// callback no more often than once per debounce window.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
}

// New creates a Watcher with the given debounce interval. A zero interval
// uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{fsWatcher: fsWatcher, debounce: debounce}, nil
}

// Close releases the underlying OS watch handles.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// addTree registers dir and every subdirectory beneath it, since fsnotify
// watches are not recursive.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsWatcher.Add(path)
		}
		return nil
	})
}

// Watch blocks, invoking onChange with the path (as fsnotify reports it,
// i.e. prefixed by root) of the last .sql file event in each debounced
// batch of events, until ctx is cancelled. Only
// Create/Write/Remove/Rename events touching a .sql file restart the
// debounce timer; everything else is ignored.
func (w *Watcher) Watch(ctx context.Context, root string, onChange func(path string) error) error {
	if err := w.addTree(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	var timer *time.Timer
	var pending string
	timerC := func() <-chan time.Time {
		if timer == nil {
			return nil
		}
		return timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher error: %w", err)

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			path := sqlFileFromEvent(event)
			if path == "" {
				continue
			}
			pending = path
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			}

		case <-timerC():
			timer = nil
			changed := pending
			pending = ""
			if err := onChange(changed); err != nil {
				return err
			}
		}
	}
}

// sqlFileFromEvent reports the event's path if it names a .sql file and
// the event is a kind worth reacting to (create, write, remove, rename).
func sqlFileFromEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return ""
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".sql") {
		return ""
	}
	return event.Name
}
