package orchestrate

import (
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
)

func TestValidateNoDifferences(t *testing.T) {
	empty := catalog.Empty()
	result := Validate(ValidationInput{
		ExpectedCatalog:   empty,
		ActualCatalog:     empty,
		AppliedMigrations: []uint64{1000, 2000},
		Baseline:          &BaselineInfo{Version: 1234567890, ObjectCount: 0, Description: "test baseline"},
	})

	if result.Status != "success" {
		t.Fatalf("status = %q, want success", result.Status)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", result.ExitCode)
	}
	if len(result.Conflicts) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(result.Conflicts))
	}
	if len(result.SuggestedActions) != 0 {
		t.Fatalf("expected no suggested actions, got %d", len(result.SuggestedActions))
	}
}

func TestValidateUnexpectedTableIsUnapplliedMigrationConflict(t *testing.T) {
	expected := catalog.Empty()
	actual := catalog.Empty()
	actual.Tables = append(actual.Tables, &catalog.Table{Schema: "public", Name: "users"})
	actual.BuildDependencyIndex()

	result := Validate(ValidationInput{
		ExpectedCatalog:     expected,
		ActualCatalog:       actual,
		UnappliedMigrations: []uint64{2000},
	})

	if result.Status != "conflict" || result.ExitCode != 1 {
		t.Fatalf("status=%q exit=%d, want conflict/1", result.Status, result.ExitCode)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	c := result.Conflicts[0]
	if c.ConflictType != "unexpected_existence" {
		t.Fatalf("conflict type = %q", c.ConflictType)
	}
	if c.LikelySource != "unapplied_migration" {
		t.Fatalf("likely source = %q", c.LikelySource)
	}
	if c.ObjectName != "public.users" {
		t.Fatalf("object name = %q", c.ObjectName)
	}

	var haveRebase bool
	for _, a := range result.SuggestedActions {
		if a.Action == "rebase_migration" {
			haveRebase = true
		}
	}
	if !haveRebase {
		t.Fatal("expected a rebase_migration suggested action")
	}
}

func TestValidateMissingTableIsManualChangeConflict(t *testing.T) {
	expected := catalog.Empty()
	expected.Tables = append(expected.Tables, &catalog.Table{Schema: "public", Name: "users"})
	expected.BuildDependencyIndex()
	actual := catalog.Empty()

	result := Validate(ValidationInput{
		ExpectedCatalog: expected,
		ActualCatalog:   actual,
	})

	if result.Status != "conflict" {
		t.Fatalf("status = %q, want conflict", result.Status)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	c := result.Conflicts[0]
	if c.ConflictType != "missing_object" {
		t.Fatalf("conflict type = %q", c.ConflictType)
	}
	if c.LikelySource != "manual_change" {
		t.Fatalf("likely source = %q", c.LikelySource)
	}

	var haveApply bool
	for _, a := range result.SuggestedActions {
		if a.Action == "apply_migrations" {
			haveApply = true
		}
	}
	if !haveApply {
		t.Fatal("expected an apply_migrations suggested action")
	}
}
