package orchestrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/migrations"
	"github.com/gdpotter/pgmt/internal/step"
	"github.com/gdpotter/pgmt/testutil"
)

func writeSchemaFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write schema file: %v", err)
	}
}

func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

func TestApplyNoChangesWhenSchemaFilesMatchDevDatabase(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	dev, shadow := testutil.StartContainerPair(ctx, t)

	if _, err := dev.ExecContext(ctx, "CREATE TABLE widgets (id integer PRIMARY KEY);"); err != nil {
		t.Fatalf("seed dev database: %v", err)
	}

	dir := t.TempDir()
	writeSchemaFile(t, dir, "widgets.sql", "CREATE TABLE widgets (id integer PRIMARY KEY);\n")

	result, err := Apply(ctx, ApplyInput{
		DevDB:        dev,
		ShadowDB:     shadow,
		TargetSchema: "public",
		SchemaDir:    dir,
		Mode:         DryRun,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Outcome != NoChanges {
		t.Fatalf("outcome = %s, want no_changes", result.Outcome)
	}
}

func TestApplyForceModeAppliesSafeChange(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	dev, shadow := testutil.StartContainerPair(ctx, t)

	dir := t.TempDir()
	writeSchemaFile(t, dir, "widgets.sql", "CREATE TABLE widgets (id integer PRIMARY KEY);\n")

	result, err := Apply(ctx, ApplyInput{
		DevDB:        dev,
		ShadowDB:     shadow,
		TargetSchema: "public",
		SchemaDir:    dir,
		Mode:         Force,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Outcome != Applied {
		t.Fatalf("outcome = %s, want applied", result.Outcome)
	}

	var exists bool
	err = dev.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'widgets')").
		Scan(&exists)
	if err != nil {
		t.Fatalf("check table exists: %v", err)
	}
	if !exists {
		t.Fatal("expected widgets table to have been created on the dev database")
	}
}

func TestApplyRequireApprovalRefusesDestructiveDrop(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	dev, shadow := testutil.StartContainerPair(ctx, t)

	if _, err := dev.ExecContext(ctx, "CREATE TABLE widgets (id integer PRIMARY KEY);"); err != nil {
		t.Fatalf("seed dev database: %v", err)
	}

	dir := t.TempDir()
	// Schema files describe a state with widgets dropped: an empty
	// directory, so the diff sees a DROP TABLE.

	result, err := Apply(ctx, ApplyInput{
		DevDB:        dev,
		ShadowDB:     shadow,
		TargetSchema: "public",
		SchemaDir:    dir,
		Mode:         RequireApproval,
	})
	if err == nil {
		t.Fatal("expected RequireApproval to refuse a destructive plan")
	}
	if result.Outcome != DestructiveRequired {
		t.Fatalf("outcome = %s, want destructive_required", result.Outcome)
	}
}

func TestApplyInteractiveCancelsWhenConfirmDeclines(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	dev, shadow := testutil.StartContainerPair(ctx, t)

	if _, err := dev.ExecContext(ctx, "CREATE TABLE widgets (id integer PRIMARY KEY);"); err != nil {
		t.Fatalf("seed dev database: %v", err)
	}

	dir := t.TempDir()

	result, err := Apply(ctx, ApplyInput{
		DevDB:        dev,
		ShadowDB:     shadow,
		TargetSchema: "public",
		SchemaDir:    dir,
		Mode:         Interactive,
		Confirm: func([]step.RenderedSql) (bool, error) {
			return false, nil
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Outcome != Cancelled {
		t.Fatalf("outcome = %s, want cancelled", result.Outcome)
	}
}

func TestApplyRecordsTrackingRowOnSuccess(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	dev, shadow := testutil.StartContainerPair(ctx, t)

	dir := t.TempDir()
	writeSchemaFile(t, dir, "widgets.sql", "CREATE TABLE widgets (id integer PRIMARY KEY);\n")

	result, err := Apply(ctx, ApplyInput{
		DevDB:               dev,
		ShadowDB:            shadow,
		TargetSchema:        "public",
		SchemaDir:           dir,
		Mode:                Force,
		TrackingSchema:      "public",
		TrackingTable:       "pgmt_migrations",
		TrackingVersion:     1,
		TrackingDescription: "create widgets",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Outcome != Applied {
		t.Fatalf("outcome = %s, want applied", result.Outcome)
	}

	versions, err := migrations.AppliedVersions(ctx, dev, "public", "pgmt_migrations")
	if err != nil {
		t.Fatalf("AppliedVersions: %v", err)
	}
	if len(versions) != 1 || versions[0] != 1 {
		t.Fatalf("AppliedVersions = %v, want [1]", versions)
	}
}

func TestApplyDryRunDoesNotRecordTrackingRow(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	dev, shadow := testutil.StartContainerPair(ctx, t)

	dir := t.TempDir()
	writeSchemaFile(t, dir, "widgets.sql", "CREATE TABLE widgets (id integer PRIMARY KEY);\n")

	result, err := Apply(ctx, ApplyInput{
		DevDB:               dev,
		ShadowDB:            shadow,
		TargetSchema:        "public",
		SchemaDir:           dir,
		Mode:                DryRun,
		TrackingSchema:      "public",
		TrackingTable:       "pgmt_migrations",
		TrackingVersion:     1,
		TrackingDescription: "create widgets",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Outcome != Applied {
		t.Fatalf("outcome = %s, want applied", result.Outcome)
	}

	var exists bool
	err = dev.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'pgmt_migrations')").
		Scan(&exists)
	if err != nil {
		t.Fatalf("check tracking table exists: %v", err)
	}
	if exists {
		t.Fatal("dry run should not have created the migration tracking table")
	}
}

func TestApplyObjectFilterExcludesIgnoredTable(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()
	dev, shadow := testutil.StartContainerPair(ctx, t)

	if _, err := dev.ExecContext(ctx, "CREATE TABLE legacy_audit (id integer PRIMARY KEY);"); err != nil {
		t.Fatalf("seed dev database: %v", err)
	}

	dir := t.TempDir()
	// No schema file for legacy_audit: without a filter this would diff as
	// a DROP TABLE. The filter removes it from both sides first.

	dropLegacyAudit := func(c *catalog.Catalog) *catalog.Catalog {
		filtered := *c
		filtered.Tables = nil
		for _, tbl := range c.Tables {
			if tbl.Name != "legacy_audit" {
				filtered.Tables = append(filtered.Tables, tbl)
			}
		}
		filtered.BuildDependencyIndex()
		return &filtered
	}

	result, err := Apply(ctx, ApplyInput{
		DevDB:        dev,
		ShadowDB:     shadow,
		TargetSchema: "public",
		SchemaDir:    dir,
		Mode:         DryRun,
		ObjectFilter: dropLegacyAudit,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Outcome != NoChanges {
		t.Fatalf("outcome = %s, want no_changes (legacy_audit should have been filtered out)", result.Outcome)
	}
}
