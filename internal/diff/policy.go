package diff

import (
	"strings"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffPolicies: a command or permissiveness change requires DROP+CREATE
// (PostgreSQL has no ALTER for either); role/USING/WITH CHECK changes alone
// use ALTER POLICY in place. internal/cascade still converts that in-place
// alter to a DROP+CREATE pair when the policy's table has a coincident
// column type change in the same migration, since ALTER COLUMN ... TYPE
// fails while a policy still references the column.
func diffPolicies(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Policies, func(p *catalog.Policy) objectid.ID { return p.ID() })
	newByID := indexByID(new.Policies, func(p *catalog.Policy) objectid.ID { return p.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.PolicyCreate{Policy: n})
			continue
		}
		switch {
		case o.Command != n.Command || o.Permissive != n.Permissive:
			out = append(out, step.PolicyDrop{Schema: o.Schema, Table: o.Table, Name: o.Name})
			out = append(out, step.PolicyCreate{Policy: n})
		case !rolesEqual(o.Roles, n.Roles) || o.Using != n.Using || o.WithCheck != n.WithCheck:
			out = append(out, step.PolicyAlter{Policy: n})
		}
		out = append(out, commentDiff(catalog.PolicyComment{Schema: n.Schema, Table: n.Table, Name: n.Name}, o.Comment, n.Comment)...)
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.PolicyDrop{Schema: o.Schema, Table: o.Table, Name: o.Name})
		}
	}
	return out
}

func rolesEqual(a, b []string) bool {
	return strings.Join(a, ",") == strings.Join(b, ",")
}
