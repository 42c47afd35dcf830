package diff

import (
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

func countKind[T any](steps []step.Step) int {
	n := 0
	for _, s := range steps {
		if _, ok := s.(T); ok {
			n++
		}
	}
	return n
}

func TestDiffTablesNewTableIsCreate(t *testing.T) {
	old := catalog.Empty()
	new := &catalog.Catalog{Tables: []*catalog.Table{{Schema: "app", Name: "users"}}}

	out := diffTables(old, new)
	if len(out) != 1 {
		t.Fatalf("diffTables() returned %d steps; want 1", len(out))
	}
	if _, ok := out[0].(step.TableCreate); !ok {
		t.Errorf("diffTables() = %T; want TableCreate", out[0])
	}
}

func TestDiffTablesRemovedTableIsDrop(t *testing.T) {
	old := &catalog.Catalog{Tables: []*catalog.Table{{Schema: "app", Name: "users"}}}
	new := catalog.Empty()

	out := diffTables(old, new)
	if len(out) != 1 {
		t.Fatalf("diffTables() returned %d steps; want 1", len(out))
	}
	if _, ok := out[0].(step.TableDrop); !ok {
		t.Errorf("diffTables() = %T; want TableDrop", out[0])
	}
}

func TestDiffTablesNeverEmitsWholeTableRecreateForExistingTable(t *testing.T) {
	old := &catalog.Catalog{Tables: []*catalog.Table{{
		Schema: "app", Name: "users",
		Columns: []*catalog.Column{{Name: "id", DataType: "integer"}},
	}}}
	new := &catalog.Catalog{Tables: []*catalog.Table{{
		Schema: "app", Name: "users",
		Columns: []*catalog.Column{{Name: "id", DataType: "bigint"}},
	}}}

	out := diffTables(old, new)
	for _, s := range out {
		if _, ok := s.(step.TableCreate); ok {
			t.Errorf("diffTables() emitted a TableCreate for an existing table's column change; want TableAlter only")
		}
		if _, ok := s.(step.TableDrop); ok {
			t.Errorf("diffTables() emitted a TableDrop for an existing table's column change; want TableAlter only")
		}
	}
	if countKind[step.TableAlter](out) != 1 {
		t.Fatalf("diffTables() returned %d TableAlter steps; want 1", countKind[step.TableAlter](out))
	}
}

func TestDiffColumnTypeChangeIsDestructiveAlterType(t *testing.T) {
	var alter step.TableAlter
	o := &catalog.Column{Name: "amount", DataType: "integer"}
	n := &catalog.Column{Name: "amount", DataType: "numeric"}

	changed := diffColumn(&alter, o, n)
	if !changed {
		t.Fatal("diffColumn() reported no change for a data type change")
	}
	if len(alter.Columns) != 1 || alter.Columns[0].Kind != step.ColumnAlterType {
		t.Fatalf("diffColumn() actions = %+v; want exactly one ColumnAlterType", alter.Columns)
	}
}

func TestDiffColumnNoChangeReportsFalse(t *testing.T) {
	var alter step.TableAlter
	same := &catalog.Column{Name: "amount", DataType: "integer", NotNull: true, Default: "0"}
	changed := diffColumn(&alter, same, same)
	if changed {
		t.Errorf("diffColumn() reported a change between identical columns")
	}
	if len(alter.Columns) != 0 {
		t.Errorf("diffColumn() appended actions for identical columns: %+v", alter.Columns)
	}
}

// TestDiffPoliciesCommandChangeForcesDropCreate covers the reviewed S2
// requirement: a command or permissiveness change has no ALTER form and must
// be DROP+CREATE, never a bare PolicyAlter.
func TestDiffPoliciesCommandChangeForcesDropCreate(t *testing.T) {
	old := &catalog.Catalog{Policies: []*catalog.Policy{{
		Schema: "app", Table: "orders", Name: "owner_only", Command: catalog.PolicySelect, Permissive: true,
	}}}
	new := &catalog.Catalog{Policies: []*catalog.Policy{{
		Schema: "app", Table: "orders", Name: "owner_only", Command: catalog.PolicyUpdate, Permissive: true,
	}}}

	out := diffPolicies(old, new)
	if countKind[step.PolicyAlter](out) != 0 {
		t.Errorf("diffPolicies() emitted a PolicyAlter for a command change; want none")
	}
	if countKind[step.PolicyDrop](out) != 1 || countKind[step.PolicyCreate](out) != 1 {
		t.Errorf("diffPolicies() = %#v; want exactly one PolicyDrop and one PolicyCreate", out)
	}
}

func TestDiffPoliciesUsingChangeIsInPlaceAlter(t *testing.T) {
	old := &catalog.Catalog{Policies: []*catalog.Policy{{
		Schema: "app", Table: "orders", Name: "owner_only", Command: catalog.PolicySelect, Permissive: true, Using: "true",
	}}}
	new := &catalog.Catalog{Policies: []*catalog.Policy{{
		Schema: "app", Table: "orders", Name: "owner_only", Command: catalog.PolicySelect, Permissive: true, Using: "owner_id = current_id()",
	}}}

	out := diffPolicies(old, new)
	if countKind[step.PolicyAlter](out) != 1 {
		t.Fatalf("diffPolicies() = %#v; want exactly one PolicyAlter for a USING-only change", out)
	}
	if countKind[step.PolicyDrop](out) != 0 || countKind[step.PolicyCreate](out) != 0 {
		t.Errorf("diffPolicies() emitted Drop/Create for a USING-only change; want in-place Alter")
	}
}

func TestDiffPoliciesNoChangeEmitsNothing(t *testing.T) {
	p := &catalog.Policy{Schema: "app", Table: "orders", Name: "owner_only", Roles: []string{"app_user"}}
	old := &catalog.Catalog{Policies: []*catalog.Policy{p}}
	new := &catalog.Catalog{Policies: []*catalog.Policy{p}}

	out := diffPolicies(old, new)
	if len(out) != 0 {
		t.Errorf("diffPolicies() = %#v; want no steps for an unchanged policy", out)
	}
}

func TestDiffViewsCompatibleChangeUsesCreateOrReplace(t *testing.T) {
	old := &catalog.Catalog{Views: []*catalog.View{{Schema: "app", Name: "active_users", Definition: "SELECT 1"}}}
	new := &catalog.Catalog{Views: []*catalog.View{{Schema: "app", Name: "active_users", Definition: "SELECT 2"}}}

	out := diffViews(old, new)
	if len(out) != 1 {
		t.Fatalf("diffViews() returned %d steps; want 1", len(out))
	}
	if _, ok := out[0].(step.ViewCreateOrReplace); !ok {
		t.Errorf("diffViews() = %T; want ViewCreateOrReplace", out[0])
	}
}

func TestCommentDiffTransitions(t *testing.T) {
	target := catalog.TableComment{Schema: "app", Name: "users"}

	if out := commentDiff(target, "same", "same"); out != nil {
		t.Errorf("commentDiff() = %v; want nil for unchanged comments", out)
	}
	if out := commentDiff(target, "old", ""); len(out) != 1 {
		t.Fatalf("commentDiff() clearing a comment returned %d steps; want 1", len(out))
	} else if _, ok := out[0].(step.CommentClear); !ok {
		t.Errorf("commentDiff() clearing a comment = %T; want CommentClear", out[0])
	}
	if out := commentDiff(target, "old", "new"); len(out) != 1 {
		t.Fatalf("commentDiff() changing a comment returned %d steps; want 1", len(out))
	} else if _, ok := out[0].(step.CommentSet); !ok {
		t.Errorf("commentDiff() changing a comment = %T; want CommentSet", out[0])
	}
}

func TestDiffAllDispatchesEveryKind(t *testing.T) {
	old := catalog.Empty()
	new := &catalog.Catalog{
		Schemas: []*catalog.Schema{{Name: "app"}},
		Tables:  []*catalog.Table{{Schema: "app", Name: "users"}},
		Views:   []*catalog.View{{Schema: "app", Name: "active_users", Definition: "SELECT 1"}},
	}

	out := DiffAll(old, new)
	if countKind[step.SchemaCreate](out) != 1 {
		t.Errorf("DiffAll() did not dispatch diffSchemas")
	}
	if countKind[step.TableCreate](out) != 1 {
		t.Errorf("DiffAll() did not dispatch diffTables")
	}
	if countKind[step.ViewCreate](out) != 1 {
		t.Errorf("DiffAll() did not dispatch diffViews")
	}
}

func TestDiffConstraintsAnyFieldChangeIsDropAdd(t *testing.T) {
	old := &catalog.Catalog{Constraints: []*catalog.Constraint{{
		Schema: "app", Table: "orders", Name: "fk_customer", Kind: catalog.ConstraintForeignKey,
		Columns: []string{"customer_id"}, RefSchema: "app", RefTable: "customers", RefColumns: []string{"id"}, OnDelete: "CASCADE",
	}}}
	new := &catalog.Catalog{Constraints: []*catalog.Constraint{{
		Schema: "app", Table: "orders", Name: "fk_customer", Kind: catalog.ConstraintForeignKey,
		Columns: []string{"customer_id"}, RefSchema: "app", RefTable: "customers", RefColumns: []string{"id"}, OnDelete: "SET NULL",
	}}}

	out := diffConstraints(old, new)
	if countKind[step.ConstraintDrop](out) != 1 || countKind[step.ConstraintAdd](out) != 1 {
		t.Fatalf("diffConstraints() = %#v; want one ConstraintDrop and one ConstraintAdd", out)
	}
}

func TestDiffConstraintsIdenticalEmitsNothing(t *testing.T) {
	c := &catalog.Constraint{Schema: "app", Table: "orders", Name: "uq_orders_number", Kind: catalog.ConstraintUnique, Columns: []string{"order_number"}}
	old := &catalog.Catalog{Constraints: []*catalog.Constraint{c}}
	new := &catalog.Catalog{Constraints: []*catalog.Constraint{c}}

	out := diffConstraints(old, new)
	if len(out) != 0 {
		t.Errorf("diffConstraints() = %#v; want no steps for an identical constraint", out)
	}
}

func TestDiffGrantsOwnerGrantIsFilteredBeforeComparison(t *testing.T) {
	old := &catalog.Catalog{}
	new := &catalog.Catalog{Grants: []*catalog.Grant{{
		Grantee: "alice", ObjectOwner: "alice", ObjectType: catalog.GrantOnTable,
		ObjectSchema: "app", ObjectName: "t", Privileges: []string{"SELECT"},
	}}}

	out := diffGrants(old, new)
	if len(out) != 0 {
		t.Errorf("diffGrants() = %#v; want no steps for an owner-equals-grantee grant", out)
	}
}

func TestDiffGrantsPrivilegeChangeIsRevokeThenApply(t *testing.T) {
	old := &catalog.Catalog{Grants: []*catalog.Grant{{
		Grantee: "app_user", ObjectType: catalog.GrantOnTable, ObjectSchema: "app", ObjectName: "t", Privileges: []string{"SELECT"},
	}}}
	new := &catalog.Catalog{Grants: []*catalog.Grant{{
		Grantee: "app_user", ObjectType: catalog.GrantOnTable, ObjectSchema: "app", ObjectName: "t", Privileges: []string{"SELECT", "INSERT"},
	}}}

	out := diffGrants(old, new)
	if len(out) != 2 {
		t.Fatalf("diffGrants() returned %d steps; want 2 (revoke, apply)", len(out))
	}
	if _, ok := out[0].(step.GrantRevoke); !ok {
		t.Errorf("diffGrants()[0] = %T; want GrantRevoke first", out[0])
	}
	if _, ok := out[1].(step.GrantApply); !ok {
		t.Errorf("diffGrants()[1] = %T; want GrantApply second", out[1])
	}
}

func TestIndexByID(t *testing.T) {
	tables := []*catalog.Table{{Schema: "app", Name: "a"}, {Schema: "app", Name: "b"}}
	idx := indexByID(tables, func(t *catalog.Table) objectid.ID { return t.ID() })
	if len(idx) != 2 {
		t.Fatalf("indexByID() returned %d entries; want 2", len(idx))
	}
	if idx[objectid.Table("app", "a")].Name != "a" {
		t.Errorf("indexByID() lookup for table a returned %+v", idx[objectid.Table("app", "a")])
	}
}
