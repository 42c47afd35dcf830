package lock

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	if err := l.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFilename)); err != nil {
		t.Fatalf("lock file not written: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFilename)); !os.IsNotExist(err) {
		t.Fatalf("lock file should be removed after release, err=%v", err)
	}
}

func TestAcquireRefusesConcurrentHolder(t *testing.T) {
	dir := t.TempDir()
	first := New(dir)
	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer first.Release()

	second := New(dir)
	if err := second.Acquire(); err == nil {
		t.Fatal("expected second Acquire to fail while first holds the lock")
	}
}

func TestAcquireReclaimsStaleLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, lockFilename)
	if err := os.WriteFile(path, []byte("PID: 1\nStarted: stale"), 0o644); err != nil {
		t.Fatalf("write stale lock: %v", err)
	}
	stale := time.Now().Add(-StaleTimeout - time.Minute)
	if err := os.Chtimes(path, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	l := New(dir)
	if err := l.Acquire(); err != nil {
		t.Fatalf("expected stale lock to be reclaimed, got: %v", err)
	}
	_ = l.Release()
}
