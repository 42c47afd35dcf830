package migrations

import (
	"context"
	"testing"

	"github.com/gdpotter/pgmt/testutil"
)

func TestEnsureTableIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	db := testutil.StartContainer(ctx, t)

	if err := EnsureTable(ctx, db, "public", "pgmt_migrations"); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if err := EnsureTable(ctx, db, "public", "pgmt_migrations"); err != nil {
		t.Fatalf("EnsureTable (second call): %v", err)
	}

	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'pgmt_migrations')",
	).Scan(&exists)
	if err != nil {
		t.Fatalf("check table exists: %v", err)
	}
	if !exists {
		t.Fatal("expected pgmt_migrations table to exist after EnsureTable")
	}
}

func TestRecordAndAppliedVersions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	db := testutil.StartContainer(ctx, t)

	if err := EnsureTable(ctx, db, "public", "pgmt_migrations"); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}

	if err := Record(ctx, db, "public", "pgmt_migrations", 1, "initial"); err != nil {
		t.Fatalf("Record(1): %v", err)
	}
	if err := Record(ctx, db, "public", "pgmt_migrations", 2, "add widgets"); err != nil {
		t.Fatalf("Record(2): %v", err)
	}

	versions, err := AppliedVersions(ctx, db, "public", "pgmt_migrations")
	if err != nil {
		t.Fatalf("AppliedVersions: %v", err)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Fatalf("AppliedVersions = %v, want [1 2]", versions)
	}
}

func TestAppliedVersionsEmptyTable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	db := testutil.StartContainer(ctx, t)

	if err := EnsureTable(ctx, db, "public", "pgmt_migrations"); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}

	versions, err := AppliedVersions(ctx, db, "public", "pgmt_migrations")
	if err != nil {
		t.Fatalf("AppliedVersions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("AppliedVersions on an empty table = %v, want none", versions)
	}
}
