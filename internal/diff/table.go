package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffTables computes column-level changes, never a whole-table DROP+CREATE
// for an existing table. A table disappearing or appearing outright is
// still DROP TABLE / CREATE TABLE.
func diffTables(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Tables, func(t *catalog.Table) objectid.ID { return t.ID() })
	newByID := indexByID(new.Tables, func(t *catalog.Table) objectid.ID { return t.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.TableCreate{Table: n})
			continue
		}
		out = append(out, diffTable(o, n)...)
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.TableDrop{Schema: o.Schema, Name: o.Name})
		}
	}
	return out
}

func diffTable(o, n *catalog.Table) []step.Step {
	alter := step.TableAlter{Schema: n.Schema, Name: n.Name}
	changed := false

	oldCols := make(map[string]*catalog.Column, len(o.Columns))
	for _, c := range o.Columns {
		oldCols[c.Name] = c
	}
	newCols := make(map[string]*catalog.Column, len(n.Columns))
	for _, c := range n.Columns {
		newCols[c.Name] = c
	}

	for name, nc := range newCols {
		oc, existed := oldCols[name]
		if !existed {
			alter.Columns = append(alter.Columns, step.ColumnAction{Kind: step.ColumnAdd, Column: nc})
			changed = true
			continue
		}
		changed = diffColumn(&alter, oc, nc) || changed
	}
	for name, oc := range oldCols {
		if _, stillExists := newCols[name]; !stillExists {
			alter.Columns = append(alter.Columns, step.ColumnAction{Kind: step.ColumnDropColumn, Column: oc})
			changed = true
		}
	}

	if !primaryKeyEqual(o.PrimaryKey, n.PrimaryKey) {
		if o.PrimaryKey != nil {
			alter.DropPrimaryKey = true
		}
		if n.PrimaryKey != nil {
			alter.AddPrimaryKey = n.PrimaryKey
		}
		changed = true
	}

	if o.RLSEnabled != n.RLSEnabled {
		v := n.RLSEnabled
		alter.SetRLSEnabled = &v
		changed = true
	}
	if o.RLSForced != n.RLSForced {
		v := n.RLSForced
		alter.SetRLSForced = &v
		changed = true
	}

	var out []step.Step
	if changed {
		out = append(out, alter)
	}
	out = append(out, commentDiff(catalog.TableComment{Schema: n.Schema, Name: n.Name}, o.Comment, n.Comment)...)
	return out
}

// diffColumn appends to alter's Columns slice and reports whether anything
// changed. A data type change is always Destructive (ColumnAlterType);
// pgmt never attempts a safe USING-clause rewrite.
func diffColumn(alter *step.TableAlter, o, n *catalog.Column) bool {
	changed := false
	if o.DataType != n.DataType {
		alter.Columns = append(alter.Columns, step.ColumnAction{Kind: step.ColumnAlterType, Column: n})
		changed = true
	}
	if o.NotNull != n.NotNull {
		kind := step.ColumnSetNotNull
		if !n.NotNull {
			kind = step.ColumnDropNotNull
		}
		alter.Columns = append(alter.Columns, step.ColumnAction{Kind: kind, Column: n})
		changed = true
	}
	if o.GeneratedExpr != "" && n.GeneratedExpr == "" {
		// A generated column losing its expression is destructive: the
		// stored values become an ordinary column with no way back.
		alter.Columns = append(alter.Columns, step.ColumnAction{Kind: step.ColumnDropGenerated, Column: n})
		changed = true
	} else if o.Default != n.Default && n.GeneratedExpr == "" {
		if n.Default == "" {
			alter.Columns = append(alter.Columns, step.ColumnAction{Kind: step.ColumnDropDefault, Column: n})
		} else {
			alter.Columns = append(alter.Columns, step.ColumnAction{Kind: step.ColumnSetDefault, Column: n})
		}
		changed = true
	}
	if o.Comment != n.Comment {
		alter.Columns = append(alter.Columns, step.ColumnAction{Kind: step.ColumnSetComment, Column: n, Comment: n.Comment})
		changed = true
	}
	return changed
}

func primaryKeyEqual(a, b *catalog.PrimaryKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}
