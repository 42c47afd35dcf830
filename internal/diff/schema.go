package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffSchemas: schema diffs are atomic — name is the only mutable-free
// field, so the only possible change once a schema exists is its comment.
func diffSchemas(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Schemas, func(s *catalog.Schema) objectid.ID { return s.ID() })
	newByID := indexByID(new.Schemas, func(s *catalog.Schema) objectid.ID { return s.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.SchemaCreate{Schema: n})
			continue
		}
		out = append(out, commentDiff(catalog.SchemaComment{Name: n.Name}, o.Comment, n.Comment)...)
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.SchemaDrop{Name: o.Name})
		}
	}
	return out
}
