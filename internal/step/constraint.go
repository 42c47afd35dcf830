package step

import (
	"fmt"
	"strings"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

func constraintClause(c *catalog.Constraint) string {
	switch c.Kind {
	case catalog.ConstraintUnique:
		quoted := make([]string, len(c.Columns))
		for i, col := range c.Columns {
			quoted[i] = quote.Ident(col)
		}
		return fmt.Sprintf("UNIQUE (%s)", strings.Join(quoted, ", "))
	case catalog.ConstraintForeignKey:
		cols := make([]string, len(c.Columns))
		for i, col := range c.Columns {
			cols[i] = quote.Ident(col)
		}
		refCols := make([]string, len(c.RefColumns))
		for i, col := range c.RefColumns {
			refCols[i] = quote.Ident(col)
		}
		clause := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			strings.Join(cols, ", "), quote.Qualified(c.RefSchema, c.RefTable), strings.Join(refCols, ", "))
		if c.OnDelete != "" {
			clause += " ON DELETE " + c.OnDelete
		}
		if c.OnUpdate != "" {
			clause += " ON UPDATE " + c.OnUpdate
		}
		if c.Deferrable {
			clause += " DEFERRABLE"
			if c.InitiallyDeferred {
				clause += " INITIALLY DEFERRED"
			}
		}
		return clause
	case catalog.ConstraintCheck:
		return fmt.Sprintf("CHECK (%s)", c.CheckExpr)
	case catalog.ConstraintExclusion:
		elems := make([]string, len(c.ExclusionElements))
		for i, e := range c.ExclusionElements {
			op := ""
			if i < len(c.ExclusionOperators) {
				op = c.ExclusionOperators[i]
			}
			opClass := ""
			if i < len(c.ExclusionOpClasses) && c.ExclusionOpClasses[i] != "" {
				opClass = " " + c.ExclusionOpClasses[i]
			}
			elems[i] = fmt.Sprintf("%s%s WITH %s", e, opClass, op)
		}
		clause := fmt.Sprintf("EXCLUDE USING %s (%s)", c.Method, strings.Join(elems, ", "))
		if c.Predicate != "" {
			clause += " WHERE (" + c.Predicate + ")"
		}
		return clause
	default:
		return ""
	}
}

// ConstraintAdd is `ALTER TABLE ... ADD CONSTRAINT`. Foreign-key constraint
// creation is a relationship step deferred to the orderer's trailing phase
// so both endpoints of the reference exist first.
type ConstraintAdd struct {
	base
	Constraint *catalog.Constraint
}

func (c ConstraintAdd) ID() objectid.ID {
	return objectid.Constraint(c.Constraint.Schema, c.Constraint.Table, c.Constraint.Name)
}
func (c ConstraintAdd) Kind() OpKind { return Create }
func (c ConstraintAdd) Relationship() bool {
	return c.Constraint.Kind == catalog.ConstraintForeignKey
}
func (c ConstraintAdd) ExtraDeps() []objectid.ID {
	if c.Constraint.Kind != catalog.ConstraintForeignKey {
		return nil
	}
	return []objectid.ID{objectid.Table(c.Constraint.RefSchema, c.Constraint.RefTable)}
}
func (c ConstraintAdd) Render() []RenderedSql {
	qualified := quote.Qualified(c.Constraint.Schema, c.Constraint.Table)
	stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s;",
		qualified, quote.Ident(c.Constraint.Name), constraintClause(c.Constraint))
	out := []RenderedSql{safe(stmt)}
	if c.Constraint.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON CONSTRAINT %s ON %s IS %s;",
			quote.Ident(c.Constraint.Name), qualified, quote.Literal(c.Constraint.Comment))))
	}
	return out
}

// ConstraintDrop is `ALTER TABLE ... DROP CONSTRAINT`. Destructive: a
// FOREIGN KEY/CHECK/UNIQUE/EXCLUSION constraint's guarantee lapses.
type ConstraintDrop struct {
	base
	Schema, Table, Name string
}

func (c ConstraintDrop) ID() objectid.ID { return objectid.Constraint(c.Schema, c.Table, c.Name) }
func (c ConstraintDrop) Kind() OpKind    { return Drop }
func (c ConstraintDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;",
		quote.Qualified(c.Schema, c.Table), quote.Ident(c.Name)))}
}
