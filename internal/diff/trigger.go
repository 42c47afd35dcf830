package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffTriggers: PostgreSQL has no CREATE OR REPLACE TRIGGER, so any
// definition change is DROP+CREATE.
func diffTriggers(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Triggers, func(t *catalog.Trigger) objectid.ID { return t.ID() })
	newByID := indexByID(new.Triggers, func(t *catalog.Trigger) objectid.ID { return t.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.TriggerCreate{Trigger: n})
			continue
		}
		if o.Definition != n.Definition {
			out = append(out, step.TriggerDrop{Schema: o.Schema, Table: o.Table, Name: o.Name})
			out = append(out, step.TriggerCreate{Trigger: n})
			continue
		}
		out = append(out, commentDiff(catalog.TriggerComment{Schema: n.Schema, Table: n.Table, Name: n.Name}, o.Comment, n.Comment)...)
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.TriggerDrop{Schema: o.Schema, Table: o.Table, Name: o.Name})
		}
	}
	return out
}
