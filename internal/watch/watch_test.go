package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchDebouncesAndFiltersNonSQL(t *testing.T) {
	dir := t.TempDir()

	w, err := New(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 10)
	go func() {
		_ = w.Watch(ctx, dir, func(path string) error {
			changes <- path
			return nil
		})
	}()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write notes.txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "table.sql"), []byte("CREATE TABLE t();"), 0o644); err != nil {
		t.Fatalf("write table.sql: %v", err)
	}

	select {
	case path := <-changes:
		if filepath.Ext(path) != ".sql" {
			t.Fatalf("expected a .sql change, got %q", path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for debounced change notification")
	}
}
