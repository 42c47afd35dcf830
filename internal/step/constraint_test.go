package step

import (
	"strings"
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
)

func TestConstraintAddForeignKeyIsRelationshipStep(t *testing.T) {
	c := &catalog.Constraint{
		Schema: "app", Table: "orders", Name: "orders_customer_fkey",
		Kind: catalog.ConstraintForeignKey,
		Columns: []string{"customer_id"}, RefSchema: "app", RefTable: "customers",
		RefColumns: []string{"id"}, OnDelete: "CASCADE",
	}
	step := ConstraintAdd{Constraint: c}

	if !step.Relationship() {
		t.Errorf("ConstraintAdd for a foreign key should be a Relationship step")
	}
	deps := step.ExtraDeps()
	if len(deps) != 1 || deps[0].Name != "customers" {
		t.Errorf("ExtraDeps() = %v; want a dependency on app.customers", deps)
	}

	out := step.Render()
	if !strings.Contains(out[0].Text, "FOREIGN KEY (\"customer_id\") REFERENCES \"app\".\"customers\" (\"id\") ON DELETE CASCADE") {
		t.Errorf("Render()[0].Text = %q", out[0].Text)
	}
}

func TestConstraintAddUniqueIsNotRelationship(t *testing.T) {
	c := &catalog.Constraint{Schema: "app", Table: "orders", Name: "orders_code_key", Kind: catalog.ConstraintUnique, Columns: []string{"code"}}
	step := ConstraintAdd{Constraint: c}
	if step.Relationship() {
		t.Errorf("ConstraintAdd for a UNIQUE constraint should not be a Relationship step")
	}
	if step.ExtraDeps() != nil {
		t.Errorf("ExtraDeps() = %v; want nil for a non-foreign-key constraint", step.ExtraDeps())
	}
}

func TestConstraintDropIsDestructive(t *testing.T) {
	d := ConstraintDrop{Schema: "app", Table: "orders", Name: "orders_code_key"}
	out := d.Render()
	if out[0].Safety != Destructive {
		t.Errorf("ConstraintDrop safety = %v; want Destructive", out[0].Safety)
	}
}
