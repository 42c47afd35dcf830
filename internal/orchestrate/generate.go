// Package orchestrate wires the catalog/diff/cascade/order/render/executor
// packages into the four top-level operations: generate-migration, apply,
// baseline, and validate. Each orchestrator is
// kept as close to a pure function as its I/O requirements allow — see
// original_source/src/migrate/generation.rs for the pattern generate.go
// mirrors exactly.
package orchestrate

import (
	"strings"

	"github.com/gdpotter/pgmt/internal/cascade"
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/diff"
	"github.com/gdpotter/pgmt/internal/order"
	"github.com/gdpotter/pgmt/internal/render"
	"github.com/gdpotter/pgmt/internal/step"
)

const migrationFilenamePrefix = "V"

// GenerationInput is all pure data: no database handle, no filesystem
// access. This mirrors original_source's MigrationGenerationInput exactly.
type GenerationInput struct {
	OldCatalog  *catalog.Catalog
	NewCatalog  *catalog.Catalog
	Description string
	Version     uint64
}

// GenerationResult is the pure output: the rendered SQL, the filename it
// should be written under, the ordered steps, and whether anything changed.
type GenerationResult struct {
	MigrationSQL      string
	MigrationFilename string
	Steps             []step.Step
	HasChanges        bool
}

// GenerateMigration is the pure function at the heart of the
// generate-migration orchestrator: diff → cascade → order → render. It
// performs no I/O; callers are responsible for writing MigrationSQL to
// MigrationFilename under migrations/.
func GenerateMigration(input GenerationInput) (*GenerationResult, error) {
	steps := diff.DiffAll(input.OldCatalog, input.NewCatalog)
	expanded := cascade.Expand(steps, input.OldCatalog, input.NewCatalog)
	ordered, err := order.Order(expanded, input.OldCatalog, input.NewCatalog)
	if err != nil {
		return nil, err
	}

	hasChanges := len(ordered) > 0

	migrationSQL := "-- No changes detected\n"
	if hasChanges {
		migrationSQL = render.JoinSQL(render.Flatten(ordered))
	}

	filename := migrationFilenamePrefix + formatVersion(input.Version) + "_" + sanitizeDescription(input.Description) + ".sql"

	return &GenerationResult{
		MigrationSQL:      migrationSQL,
		MigrationFilename: filename,
		Steps:             ordered,
		HasChanges:        hasChanges,
	}, nil
}

func formatVersion(v uint64) string {
	if v == 0 {
		return "0"
	}
	var digits []byte
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}

// sanitizeDescription lowercases the description, collapses every run of
// non-alphanumeric characters to a single underscore, and trims leading/
// trailing underscores, producing a lowercased-alnum-with-underscores slug.
func sanitizeDescription(description string) string {
	var b strings.Builder
	lastWasUnderscore := false
	for _, r := range strings.ToLower(description) {
		if isAlphanumeric(r) {
			b.WriteRune(r)
			lastWasUnderscore = false
		} else if !lastWasUnderscore {
			b.WriteByte('_')
			lastWasUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

func isAlphanumeric(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
