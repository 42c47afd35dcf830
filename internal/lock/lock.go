// Package lock provides the process-level mutual exclusion required
// around apply: at most one apply may run per project root at a
// time. Grounded on original_source/src/commands/apply/lock.rs, with the
// hand-rolled os.Stat/modified-time staleness check backed by an actual
// cross-process advisory lock (github.com/gofrs/flock) instead of a bare
// file-existence test, so a crashed holder's lock is released by the OS
// even before the staleness threshold elapses.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// StaleTimeout is how old an unreleased lock file may be before a new
// apply is allowed to forcibly reclaim it.
const StaleTimeout = 10 * time.Minute

const lockFilename = ".pgmt_apply.lock"

// Lock guards one project root against concurrent apply invocations.
type Lock struct {
	path string
	fl   *flock.Flock
}

// New returns a Lock for the given project root. Acquire must be called
// before the lock takes effect.
func New(rootDir string) *Lock {
	path := filepath.Join(rootDir, lockFilename)
	return &Lock{path: path, fl: flock.New(path)}
}

// Acquire takes the lock, reclaiming it first if the existing lock file is
// older than StaleTimeout. It returns an error naming the lock file path
// if another apply currently holds it.
func (l *Lock) Acquire() error {
	if info, err := os.Stat(l.path); err == nil {
		if time.Since(info.ModTime()) > StaleTimeout {
			_ = os.Remove(l.path)
			l.fl = flock.New(l.path)
		}
	}

	locked, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire apply lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another pgmt apply operation is currently running; if you're sure no other apply is running, remove: %s", l.path)
	}

	content := fmt.Sprintf("PID: %d\nStarted: %s", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(l.path, []byte(content), 0o644); err != nil {
		_ = l.fl.Unlock()
		return fmt.Errorf("write apply lock file: %w", err)
	}
	return nil
}

// Release unlocks and removes the lock file. Safe to call on an
// unacquired Lock.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release apply lock: %w", err)
	}
	_ = os.Remove(l.path)
	return nil
}
