package diff

import (
	"strings"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffConstraints: any change is DROP+ADD CONSTRAINT — PostgreSQL has no
// in-place ALTER for a constraint's own clause (deferrability aside, which
// pgmt folds into the same DROP+ADD for simplicity).
func diffConstraints(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Constraints, func(c *catalog.Constraint) objectid.ID { return c.ID() })
	newByID := indexByID(new.Constraints, func(c *catalog.Constraint) objectid.ID { return c.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.ConstraintAdd{Constraint: n})
			continue
		}
		if constraintEqual(o, n) {
			out = append(out, commentDiff(catalog.ConstraintComment{Schema: n.Schema, Table: n.Table, Name: n.Name}, o.Comment, n.Comment)...)
			continue
		}
		out = append(out, step.ConstraintDrop{Schema: o.Schema, Table: o.Table, Name: o.Name})
		out = append(out, step.ConstraintAdd{Constraint: n})
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.ConstraintDrop{Schema: o.Schema, Table: o.Table, Name: o.Name})
		}
	}
	return out
}

func constraintEqual(o, n *catalog.Constraint) bool {
	return o.Kind == n.Kind &&
		strings.Join(o.Columns, ",") == strings.Join(n.Columns, ",") &&
		o.RefSchema == n.RefSchema && o.RefTable == n.RefTable &&
		strings.Join(o.RefColumns, ",") == strings.Join(n.RefColumns, ",") &&
		o.OnDelete == n.OnDelete && o.OnUpdate == n.OnUpdate &&
		o.Deferrable == n.Deferrable && o.InitiallyDeferred == n.InitiallyDeferred &&
		o.CheckExpr == n.CheckExpr && o.Method == n.Method && o.Predicate == n.Predicate &&
		strings.Join(o.ExclusionElements, ",") == strings.Join(n.ExclusionElements, ",") &&
		strings.Join(o.ExclusionOpClasses, ",") == strings.Join(n.ExclusionOpClasses, ",") &&
		strings.Join(o.ExclusionOperators, ",") == strings.Join(n.ExclusionOperators, ",")
}
