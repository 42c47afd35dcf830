package logger

import (
	"io"
	"log/slog"
	"testing"
)

func TestGetFallsBackWhenNoneSet(t *testing.T) {
	mu.Lock()
	globalLogger = nil
	debugEnabled = false
	mu.Unlock()

	if got := Get(); got == nil {
		t.Fatal("Get() returned nil with no global logger set")
	}
}

func TestSetGlobalIsReturnedByGet(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetGlobal(custom, true)
	defer SetGlobal(nil, false)

	if got := Get(); got != custom {
		t.Errorf("Get() = %p; want the logger passed to SetGlobal (%p)", got, custom)
	}
	if !IsDebug() {
		t.Errorf("IsDebug() = false; want true after SetGlobal(_, true)")
	}
}

func TestIsDebugDefaultsFalse(t *testing.T) {
	mu.Lock()
	globalLogger = nil
	debugEnabled = false
	mu.Unlock()

	if IsDebug() {
		t.Errorf("IsDebug() = true; want false before any SetGlobal call")
	}
}
