package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/logger"
)

// DefaultBaselineFilenamePrefix is used when a BaselineRequest leaves
// FilenamePrefix empty; the prefix itself is configurable per request.
const DefaultBaselineFilenamePrefix = "V"

// BaselineRequest carries everything needed to snapshot a catalog into a
// baseline file: generate a migration from an empty catalog to Catalog and
// write the result to disk.
type BaselineRequest struct {
	Catalog        *catalog.Catalog
	Version        uint64
	Description    string
	BaselinesDir   string
	FilenamePrefix string
}

// BaselineResult reports where the baseline was written and what it
// contains.
type BaselineResult struct {
	Path        string
	BaselineSQL string
	ObjectCount int
	Version     uint64
}

// CreateBaseline renders the given catalog as if it were being created from
// nothing and writes the result under BaselinesDir, mirroring
// original_source/src/baseline/operations.rs's create_baseline.
func CreateBaseline(ctx context.Context, request BaselineRequest) (*BaselineResult, error) {
	prefix := request.FilenamePrefix
	if prefix == "" {
		prefix = DefaultBaselineFilenamePrefix
	}

	generation, err := GenerateMigration(GenerationInput{
		OldCatalog:  catalog.Empty(),
		NewCatalog:  request.Catalog,
		Description: request.Description,
		Version:     request.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("generate baseline sql: %w", err)
	}

	if err := os.MkdirAll(request.BaselinesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create baselines directory: %w", err)
	}

	filename := fmt.Sprintf("%s%d.sql", prefix, request.Version)
	path := filepath.Join(request.BaselinesDir, filename)

	logger.Get().InfoContext(ctx, "writing baseline", "path", path, "version", request.Version)

	if err := os.WriteFile(path, []byte(generation.MigrationSQL), 0o644); err != nil {
		return nil, fmt.Errorf("write baseline file: %w", err)
	}

	return &BaselineResult{
		Path:        path,
		BaselineSQL: generation.MigrationSQL,
		ObjectCount: request.Catalog.ObjectCount(),
		Version:     request.Version,
	}, nil
}
