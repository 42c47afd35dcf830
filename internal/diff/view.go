package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffViews: every definition or security-option change to an existing view
// is emitted as CREATE OR REPLACE VIEW, since columnListCompatible always
// reports true. A change that removes or renames output columns is not
// turned into DROP+CREATE, and security-option changes are not emitted as
// ALTER VIEW; the ViewDrop+ViewCreate branch below is never taken.
func diffViews(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Views, func(v *catalog.View) objectid.ID { return v.ID() })
	newByID := indexByID(new.Views, func(v *catalog.View) objectid.ID { return v.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.ViewCreate{View: n})
			continue
		}
		if o.Definition == n.Definition && o.SecurityInvoker == n.SecurityInvoker && o.SecurityBarrier == n.SecurityBarrier {
			out = append(out, commentDiff(catalog.ViewComment{Schema: n.Schema, Name: n.Name}, o.Comment, n.Comment)...)
			continue
		}
		if columnListCompatible(o.Definition, n.Definition) {
			out = append(out, step.ViewCreateOrReplace{View: n})
		} else {
			out = append(out, step.ViewDrop{Schema: o.Schema, Name: o.Name})
			out = append(out, step.ViewCreate{View: n})
		}
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.ViewDrop{Schema: o.Schema, Name: o.Name})
		}
	}
	return out
}

// columnListCompatible reports whether a definition change can be applied
// with CREATE OR REPLACE VIEW, which PostgreSQL refuses when existing output
// columns are removed or renamed. pgmt cannot inspect the view's compiled
// column list without a live connection, and this function does not parse
// the definitions: it always returns true, so a genuine incompatibility
// surfaces as the SQL error the executor reports when the REPLACE runs.
func columnListCompatible(_, _ string) bool {
	return true
}
