package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffIndexes: any structural change (method, columns, predicate,
// uniqueness, storage params, tablespace) is DROP+CREATE; clustering is the
// one attribute alterable in place.
func diffIndexes(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Indexes, func(i *catalog.Index) objectid.ID { return i.ID() })
	newByID := indexByID(new.Indexes, func(i *catalog.Index) objectid.ID { return i.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.IndexCreate{Index: n})
			continue
		}
		if indexStructureEqual(o, n) {
			if o.Clustered != n.Clustered {
				out = append(out, step.IndexClusterAlter{Schema: n.Schema, Table: n.Table, Name: n.Name, Clustered: n.Clustered})
			}
			out = append(out, commentDiff(catalog.IndexComment{Schema: n.Schema, Name: n.Name}, o.Comment, n.Comment)...)
			continue
		}
		out = append(out, step.IndexDrop{Schema: o.Schema, Name: o.Name})
		out = append(out, step.IndexCreate{Index: n})
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.IndexDrop{Schema: o.Schema, Name: o.Name})
		}
	}
	return out
}

func indexStructureEqual(o, n *catalog.Index) bool {
	if o.Table != n.Table || o.Method != n.Method || o.Unique != n.Unique ||
		o.Predicate != n.Predicate || o.Tablespace != n.Tablespace || len(o.Columns) != len(n.Columns) {
		return false
	}
	for i := range o.Columns {
		a, b := o.Columns[i], n.Columns[i]
		if a.Expression != b.Expression || a.Collation != b.Collation || a.OpClass != b.OpClass ||
			a.Descending != b.Descending || a.NullsFirst != b.NullsFirst || a.Include != b.Include {
			return false
		}
	}
	if len(o.StorageParams) != len(n.StorageParams) {
		return false
	}
	for k, v := range o.StorageParams {
		if n.StorageParams[k] != v {
			return false
		}
	}
	return true
}
