package objectid

import "testing"

func TestStringFormatsPerKind(t *testing.T) {
	tests := []struct {
		name     string
		id       ID
		expected string
	}{
		{"schema", Schema("app"), "schema app"},
		{"table", Table("app", "users"), "table app.users"},
		{"view", View("app", "active_users"), "view app.active_users"},
		{"sequence", Sequence("app", "users_id_seq"), "sequence app.users_id_seq"},
		{"function with args", Function("app", "fn", "integer, text"), "function app.fn(integer, text)"},
		{"constraint", Constraint("app", "users", "users_pkey"), "constraint app.users.users_pkey"},
		{"trigger", Trigger("app", "users", "set_updated_at"), "trigger app.users.set_updated_at"},
		{"policy", Policy("app", "users", "owner_only"), "policy app.users.owner_only"},
		{"extension", Extension("pgcrypto"), "extension pgcrypto"},
		{"grant", Grant("role@table:app.users"), "grant role@table:app.users"},
		{"column", Column("app", "users", "email"), "column app.users.email"},
		{"comment wraps inner", Comment(Table("app", "users")), "comment on table app.users"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.String(); got != tt.expected {
				t.Errorf("String() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestSchemaOf(t *testing.T) {
	tests := []struct {
		name     string
		id       ID
		expected string
	}{
		{"schema itself", Schema("app"), "app"},
		{"table", Table("app", "users"), "app"},
		{"grant has no schema", Grant("role@table:app.users"), ""},
		{"extension has no schema", Extension("pgcrypto"), ""},
		{"comment delegates to inner", Comment(Table("app", "users")), "app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.SchemaOf(); got != tt.expected {
				t.Errorf("SchemaOf() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestLessOrdersByKindFirst(t *testing.T) {
	schema := Schema("app")
	table := Table("app", "users")
	if !schema.Less(table) {
		t.Errorf("expected Schema to sort before Table")
	}
	if table.Less(schema) {
		t.Errorf("expected Table to not sort before Schema")
	}
}

func TestLessOrdersBySchemaThenTableThenName(t *testing.T) {
	a := Table("a_schema", "z_table")
	b := Table("b_schema", "a_table")
	if !a.Less(b) {
		t.Errorf("expected schema comparison to dominate table name")
	}

	c := Constraint("app", "a_table", "z_constraint")
	d := Constraint("app", "b_table", "a_constraint")
	if !c.Less(d) {
		t.Errorf("expected table comparison to dominate constraint name when schema matches")
	}

	e := Constraint("app", "users", "a_constraint")
	f := Constraint("app", "users", "b_constraint")
	if !e.Less(f) {
		t.Errorf("expected name comparison to break ties when schema and table match")
	}
}

func TestLessGrantOrdersByKeyOnly(t *testing.T) {
	a := Grant("alice@table:app.users")
	b := Grant("bob@table:app.users")
	if !a.Less(b) {
		t.Errorf("expected Grant ordering to compare GrantKey directly")
	}
}

func TestLessCommentDelegatesToInner(t *testing.T) {
	a := Comment(Table("app", "a_table"))
	b := Comment(Table("app", "b_table"))
	if !a.Less(b) {
		t.Errorf("expected Comment ordering to delegate to the wrapped object")
	}
}

func TestIDEqualityIsValueBased(t *testing.T) {
	a := Table("app", "users")
	b := Table("app", "users")
	if a != b {
		t.Errorf("expected two identically-constructed table IDs to compare equal")
	}

	m := map[ID]bool{a: true}
	if !m[b] {
		t.Errorf("expected ID to be usable as a map key across equal values")
	}
}
