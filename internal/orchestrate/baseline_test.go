package orchestrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
)

func TestCreateBaselineEmptyCatalog(t *testing.T) {
	dir := t.TempDir()

	result, err := CreateBaseline(context.Background(), BaselineRequest{
		Catalog:      catalog.Empty(),
		Version:      1234567890,
		Description:  "test_baseline",
		BaselinesDir: dir,
	})
	if err != nil {
		t.Fatalf("CreateBaseline: %v", err)
	}

	if result.Version != 1234567890 {
		t.Fatalf("version = %d", result.Version)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Fatalf("baseline file not written: %v", err)
	}
	if result.ObjectCount != 0 {
		t.Fatalf("object count = %d, want 0", result.ObjectCount)
	}

	filename := filepath.Base(result.Path)
	if !strings.HasPrefix(filename, DefaultBaselineFilenamePrefix) {
		t.Fatalf("filename %q missing prefix %q", filename, DefaultBaselineFilenamePrefix)
	}
	if !strings.HasSuffix(filename, ".sql") {
		t.Fatalf("filename %q missing .sql suffix", filename)
	}
}

func TestCreateBaselineWithSchema(t *testing.T) {
	dir := t.TempDir()

	cat := catalog.Empty()
	cat.Schemas = append(cat.Schemas, &catalog.Schema{Name: "app"})
	cat.BuildDependencyIndex()

	result, err := CreateBaseline(context.Background(), BaselineRequest{
		Catalog:        cat,
		Version:        42,
		Description:    "initial",
		BaselinesDir:   dir,
		FilenamePrefix: "B",
	})
	if err != nil {
		t.Fatalf("CreateBaseline: %v", err)
	}

	if filepath.Base(result.Path) != "B42.sql" {
		t.Fatalf("filename = %q", filepath.Base(result.Path))
	}
	if !strings.Contains(result.BaselineSQL, "CREATE SCHEMA") {
		t.Fatalf("baseline sql missing CREATE SCHEMA: %q", result.BaselineSQL)
	}
	if result.ObjectCount != 1 {
		t.Fatalf("object count = %d, want 1", result.ObjectCount)
	}
}
