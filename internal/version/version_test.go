package version

import (
	"strings"
	"testing"
)

func TestVersionTrimsWhitespace(t *testing.T) {
	v := Version()
	if v == "" {
		t.Fatal("Version() returned empty string")
	}
	if strings.TrimSpace(v) != v {
		t.Errorf("Version() = %q; want no leading/trailing whitespace", v)
	}
}

func TestGetGitCommitDefaultsUnknown(t *testing.T) {
	if got := GetGitCommit(); got != "unknown" {
		t.Errorf("GetGitCommit() = %q; want %q when not set via ldflags", got, "unknown")
	}
}

func TestGetBuildDateDefaultsUnknown(t *testing.T) {
	if got := GetBuildDate(); got != "unknown" {
		t.Errorf("GetBuildDate() = %q; want %q when not set via ldflags", got, "unknown")
	}
}

func TestPlatformIncludesOSAndArch(t *testing.T) {
	p := Platform()
	if !strings.Contains(p, "/") {
		t.Errorf("Platform() = %q; want a GOOS/GOARCH-shaped string", p)
	}
}
