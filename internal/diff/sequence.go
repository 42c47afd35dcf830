package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffSequences: start value only applies at creation, so it is never
// compared; increment/bounds/cycle changes use ALTER SEQUENCE in place,
// and an ownership change is rendered as its own deferred relationship
// step.
func diffSequences(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Sequences, func(s *catalog.Sequence) objectid.ID { return s.ID() })
	newByID := indexByID(new.Sequences, func(s *catalog.Sequence) objectid.ID { return s.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.SequenceCreate{Sequence: n})
			continue
		}
		if o.Increment != n.Increment || !int64PtrEqual(o.MinValue, n.MinValue) ||
			!int64PtrEqual(o.MaxValue, n.MaxValue) || o.Cycle != n.Cycle {
			out = append(out, step.SequenceAlter{Sequence: n})
		}
		if o.OwnedByTable != n.OwnedByTable || o.OwnedByColumn != n.OwnedByColumn {
			out = append(out, step.SequenceOwnedByAlter{Sequence: n})
		}
		out = append(out, commentDiff(catalog.SequenceComment{Schema: n.Schema, Name: n.Name}, o.Comment, n.Comment)...)
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.SequenceDrop{Schema: o.Schema, Name: o.Name})
		}
	}
	return out
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
