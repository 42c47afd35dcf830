package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

func diffExtensions(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Extensions, func(e *catalog.Extension) objectid.ID { return e.ID() })
	newByID := indexByID(new.Extensions, func(e *catalog.Extension) objectid.ID { return e.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.ExtensionCreate{Extension: n})
			continue
		}
		// Schema or version changes require DROP+CREATE: there is no ALTER
		// EXTENSION form that changes the owning schema safely in place, and
		// version changes need the extension's own upgrade scripts, which
		// pgmt does not orchestrate.
		if o.Schema != n.Schema || o.Version != n.Version {
			out = append(out, step.ExtensionDrop{Name: o.Name})
			out = append(out, step.ExtensionCreate{Extension: n})
			continue
		}
		out = append(out, commentDiff(catalog.ExtensionComment{Name: n.Name}, o.Comment, n.Comment)...)
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.ExtensionDrop{Name: o.Name})
		}
	}
	return out
}
