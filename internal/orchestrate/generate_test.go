package orchestrate

import (
	"strings"
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

func TestSanitizeDescription(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"add_user_table", "add_user_table"},
		{"add user table!", "add_user_table"},
		{"hello-world@2024", "hello_world_2024"},
		{"___test___", "test"},
		{"Add-User@Email.Feature!!! (with validation)", "add_user_email_feature_with_validation"},
	}
	for _, c := range cases {
		if got := sanitizeDescription(c.in); got != c.want {
			t.Errorf("sanitizeDescription(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGenerateMigrationNoChanges(t *testing.T) {
	empty := catalog.Empty()
	result, err := GenerateMigration(GenerationInput{
		OldCatalog:  empty,
		NewCatalog:  empty,
		Description: "no_changes",
		Version:     123456789,
	})
	if err != nil {
		t.Fatalf("GenerateMigration: %v", err)
	}
	if result.HasChanges {
		t.Fatal("expected HasChanges to be false")
	}
	if result.MigrationFilename != "V123456789_no_changes.sql" {
		t.Fatalf("filename = %q", result.MigrationFilename)
	}
	if !strings.Contains(result.MigrationSQL, "No changes detected") {
		t.Fatalf("sql = %q", result.MigrationSQL)
	}
	if len(result.Steps) != 0 {
		t.Fatalf("expected no steps, got %d", len(result.Steps))
	}
}

func TestGenerateMigrationWithSchemaChange(t *testing.T) {
	old := catalog.Empty()
	newCat := catalog.Empty()
	newCat.Schemas = append(newCat.Schemas, &catalog.Schema{Name: "test_schema"})
	newCat.BuildDependencyIndex()

	result, err := GenerateMigration(GenerationInput{
		OldCatalog:  old,
		NewCatalog:  newCat,
		Description: "add_schema",
		Version:     987654321,
	})
	if err != nil {
		t.Fatalf("GenerateMigration: %v", err)
	}
	if !result.HasChanges {
		t.Fatal("expected HasChanges to be true")
	}
	if result.MigrationFilename != "V987654321_add_schema.sql" {
		t.Fatalf("filename = %q", result.MigrationFilename)
	}
	if !strings.Contains(result.MigrationSQL, "CREATE SCHEMA") {
		t.Fatalf("sql = %q", result.MigrationSQL)
	}
}

func TestGenerateMigrationWithTableAndComments(t *testing.T) {
	old := catalog.Empty()
	newCat := catalog.Empty()
	table := &catalog.Table{
		Schema: "public",
		Name:   "users",
		Columns: []*catalog.Column{
			{Name: "id", DataType: "integer", NotNull: true, Comment: "Primary key"},
			{Name: "name", DataType: "text"},
		},
		Comment:      "User accounts",
		Dependencies: nil,
	}
	newCat.Tables = append(newCat.Tables, table)
	newCat.BuildDependencyIndex()

	result, err := GenerateMigration(GenerationInput{
		OldCatalog:  old,
		NewCatalog:  newCat,
		Description: "add_users_table",
		Version:     9876543210,
	})
	if err != nil {
		t.Fatalf("GenerateMigration: %v", err)
	}
	if result.MigrationFilename != "V9876543210_add_users_table.sql" {
		t.Fatalf("filename = %q", result.MigrationFilename)
	}
	if !strings.Contains(result.MigrationSQL, "CREATE TABLE") {
		t.Fatalf("sql missing CREATE TABLE: %q", result.MigrationSQL)
	}
	if !strings.Contains(result.MigrationSQL, "COMMENT ON TABLE") {
		t.Fatalf("sql missing COMMENT ON TABLE: %q", result.MigrationSQL)
	}
	if !strings.Contains(result.MigrationSQL, "COMMENT ON COLUMN") {
		t.Fatalf("sql missing COMMENT ON COLUMN: %q", result.MigrationSQL)
	}
}

// stepIndex returns the position of the first step matching want, or -1.
func stepIndex(steps []step.Step, want func(step.Step) bool) int {
	for i, s := range steps {
		if want(s) {
			return i
		}
	}
	return -1
}

// TestGenerateMigrationCreateTableOnly covers a bare table addition
// against an empty baseline: a single CreateTable step, nothing else.
func TestGenerateMigrationCreateTableOnly(t *testing.T) {
	old := catalog.Empty()
	newCat := catalog.Empty()
	newCat.Tables = append(newCat.Tables, &catalog.Table{
		Schema: "app", Name: "users",
		Columns: []*catalog.Column{{Name: "id", DataType: "integer", NotNull: true}},
	})
	newCat.BuildDependencyIndex()

	result, err := GenerateMigration(GenerationInput{OldCatalog: old, NewCatalog: newCat, Description: "create_users", Version: 1})
	if err != nil {
		t.Fatalf("GenerateMigration: %v", err)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("Steps = %v; want exactly one CreateTable step", result.Steps)
	}
	if _, ok := result.Steps[0].(step.TableCreate); !ok {
		t.Errorf("Steps[0] = %T; want step.TableCreate", result.Steps[0])
	}
}

// TestGenerateMigrationColumnTypeCascadeWithPolicy locks in the column-type
// cascade requirement: when a column a row-security policy's USING
// expression depends on changes type, the plan must contain, in order,
// DropPolicy, the destructive AlterTable, then CreatePolicy — and no
// AlterPolicy step at all.
func TestGenerateMigrationColumnTypeCascadeWithPolicy(t *testing.T) {
	tableID := objectid.Table("app", "users")

	old := catalog.Empty()
	old.Tables = append(old.Tables, &catalog.Table{
		Schema: "app", Name: "users", RLSEnabled: true,
		Columns: []*catalog.Column{
			{Name: "id", DataType: "integer"},
			{Name: "tenant_id", DataType: "smallint"},
		},
	})
	old.Policies = append(old.Policies, &catalog.Policy{
		Schema: "app", Table: "users", Name: "tenant_isolation",
		Command: catalog.PolicyAll, Permissive: true, Using: "tenant_id = 1",
		Dependencies: []objectid.ID{tableID},
	})
	old.BuildDependencyIndex()

	newCat := catalog.Empty()
	newCat.Tables = append(newCat.Tables, &catalog.Table{
		Schema: "app", Name: "users", RLSEnabled: true,
		Columns: []*catalog.Column{
			{Name: "id", DataType: "integer"},
			{Name: "tenant_id", DataType: "bigint"},
		},
	})
	newCat.Policies = append(newCat.Policies, &catalog.Policy{
		Schema: "app", Table: "users", Name: "tenant_isolation",
		Command: catalog.PolicyAll, Permissive: true, Using: "tenant_id = 2",
		Dependencies: []objectid.ID{tableID},
	})
	newCat.BuildDependencyIndex()

	result, err := GenerateMigration(GenerationInput{OldCatalog: old, NewCatalog: newCat, Description: "widen_tenant_id", Version: 2})
	if err != nil {
		t.Fatalf("GenerateMigration: %v", err)
	}

	for _, s := range result.Steps {
		if _, ok := s.(step.PolicyAlter); ok {
			t.Fatalf("Steps contains a PolicyAlter; a column-type cascade must never emit one: %v", result.Steps)
		}
	}

	dropIdx := stepIndex(result.Steps, func(s step.Step) bool { _, ok := s.(step.PolicyDrop); return ok })
	alterIdx := stepIndex(result.Steps, func(s step.Step) bool {
		ta, ok := s.(step.TableAlter)
		if !ok {
			return false
		}
		for _, c := range ta.Columns {
			if c.Kind == step.ColumnAlterType {
				return true
			}
		}
		return false
	})
	createIdx := stepIndex(result.Steps, func(s step.Step) bool { _, ok := s.(step.PolicyCreate); return ok })

	if dropIdx == -1 || alterIdx == -1 || createIdx == -1 {
		t.Fatalf("Steps missing one of DropPolicy/AlterTable/CreatePolicy: %v", result.Steps)
	}
	if !(dropIdx < alterIdx && alterIdx < createIdx) {
		t.Errorf("Steps order = drop:%d alter:%d create:%d; want drop < alter < create", dropIdx, alterIdx, createIdx)
	}

	rendered := render_Flatten(t, result.Steps)
	foundDestructiveAlter := false
	for i, s := range rendered {
		if i == alterIdx && s.Safety == step.Destructive {
			foundDestructiveAlter = true
		}
	}
	if !foundDestructiveAlter {
		t.Errorf("the AlterTable step carrying the type change must render as destructive")
	}
}

// TestGenerateMigrationOwnedSequenceDrop covers dropping a table whose serial
// column owns a sequence: only DropTable should appear, never a separate
// DropSequence for the column-owned sequence (PostgreSQL drops it via the
// table's own DROP).
func TestGenerateMigrationOwnedSequenceDrop(t *testing.T) {
	old := catalog.Empty()
	old.Tables = append(old.Tables, &catalog.Table{
		Schema: "app", Name: "t",
		Columns: []*catalog.Column{{Name: "id", DataType: "integer", Default: "nextval('app.t_id_seq'::regclass)"}},
	})
	old.Sequences = append(old.Sequences, &catalog.Sequence{
		Schema: "app", Name: "t_id_seq", DataType: "integer", StartValue: 1, Increment: 1,
		OwnedByTable: "t", OwnedByColumn: "id",
	})
	old.BuildDependencyIndex()

	newCat := catalog.Empty()

	result, err := GenerateMigration(GenerationInput{OldCatalog: old, NewCatalog: newCat, Description: "drop_t", Version: 3})
	if err != nil {
		t.Fatalf("GenerateMigration: %v", err)
	}

	sawDropTable, sawDropSequence := false, false
	for _, s := range result.Steps {
		if _, ok := s.(step.TableDrop); ok {
			sawDropTable = true
		}
		if _, ok := s.(step.SequenceDrop); ok {
			sawDropSequence = true
		}
	}
	if !sawDropTable {
		t.Errorf("Steps = %v; want a DropTable step", result.Steps)
	}
	if sawDropSequence {
		t.Errorf("Steps = %v; an owned sequence must not get its own DropSequence step", result.Steps)
	}
}

// TestGenerateMigrationOwnerGrantElided covers ACL reflection: a grant
// flagged as the object owner's implicit default ACL must never produce a
// Grant step, even when diffing against an empty catalog.
func TestGenerateMigrationOwnerGrantElided(t *testing.T) {
	old := catalog.Empty()

	newCat := catalog.Empty()
	newCat.Tables = append(newCat.Tables, &catalog.Table{Schema: "app", Name: "t"})
	newCat.Grants = append(newCat.Grants, &catalog.Grant{
		Grantee: "alice", ObjectOwner: "alice", ObjectType: catalog.GrantOnTable,
		ObjectSchema: "app", ObjectName: "t", Privileges: []string{"SELECT"}, IsDefaultACL: true,
	})
	newCat.BuildDependencyIndex()

	result, err := GenerateMigration(GenerationInput{OldCatalog: old, NewCatalog: newCat, Description: "create_t", Version: 5})
	if err != nil {
		t.Fatalf("GenerateMigration: %v", err)
	}

	for _, s := range result.Steps {
		if _, ok := s.(step.GrantApply); ok {
			t.Fatalf("Steps contains a GrantApply for the owner's own default ACL: %v", result.Steps)
		}
	}
}

// render_Flatten is a thin indirection so the destructive-safety assertion
// above can inspect per-step rendered safety without importing the render
// package's exported Flatten under a name that collides with this file's
// own helpers.
func render_Flatten(t *testing.T, steps []step.Step) []step.RenderedSql {
	t.Helper()
	var out []step.RenderedSql
	for _, s := range steps {
		out = append(out, s.Render()...)
	}
	return out
}
