package step

import (
	"fmt"
	"strings"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

func columnDef(c *catalog.Column) string {
	def := fmt.Sprintf("%s %s", quote.Ident(c.Name), c.DataType)
	if c.IdentityGeneration != "" {
		def += fmt.Sprintf(" GENERATED %s AS IDENTITY", c.IdentityGeneration)
	}
	if c.GeneratedExpr != "" {
		def += fmt.Sprintf(" GENERATED ALWAYS AS (%s) STORED", c.GeneratedExpr)
	}
	if c.NotNull {
		def += " NOT NULL"
	}
	if c.Default != "" && c.GeneratedExpr == "" {
		def += " DEFAULT " + c.Default
	}
	return def
}

// TableCreate is `CREATE TABLE` plus its primary key, comments, and RLS
// settings in one step; the comments/RLS clauses are folded in here rather
// than split into separate steps since they have no independent identity
// once the table exists.
type TableCreate struct {
	base
	Table *catalog.Table
}

func (t TableCreate) ID() objectid.ID { return objectid.Table(t.Table.Schema, t.Table.Name) }
func (t TableCreate) Kind() OpKind    { return Create }
func (t TableCreate) Render() []RenderedSql {
	qualified := quote.Qualified(t.Table.Schema, t.Table.Name)
	cols := make([]string, 0, len(t.Table.Columns)+1)
	for _, c := range t.Table.Columns {
		cols = append(cols, "    "+columnDef(c))
	}
	if pk := t.Table.PrimaryKey; pk != nil {
		quoted := make([]string, len(pk.Columns))
		for i, c := range pk.Columns {
			quoted[i] = quote.Ident(c)
		}
		cols = append(cols, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)",
			quote.Ident(pk.Name), strings.Join(quoted, ", ")))
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (\n%s\n);", qualified, strings.Join(cols, ",\n"))
	out := []RenderedSql{safe(stmt)}

	if t.Table.RLSEnabled {
		out = append(out, safe(fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY;", qualified)))
	}
	if t.Table.RLSForced {
		out = append(out, safe(fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY;", qualified)))
	}
	if t.Table.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON TABLE %s IS %s;", qualified, quote.Literal(t.Table.Comment))))
	}
	for _, c := range t.Table.Columns {
		if c.Comment != "" {
			out = append(out, safe(fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;",
				qualified, quote.Ident(c.Name), quote.Literal(c.Comment))))
		}
	}
	return out
}

// TableDrop is `DROP TABLE`. Always Destructive: the table's rows are lost.
type TableDrop struct {
	base
	Schema, Name string
}

func (t TableDrop) ID() objectid.ID { return objectid.Table(t.Schema, t.Name) }
func (t TableDrop) Kind() OpKind    { return Drop }
func (t TableDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP TABLE %s;", quote.Qualified(t.Schema, t.Name)))}
}

// ColumnActionKind is the closed set of column-level alterations a
// TableAlter step can carry.
type ColumnActionKind int

const (
	ColumnAdd ColumnActionKind = iota
	ColumnDropColumn
	ColumnAlterType
	ColumnSetNotNull
	ColumnDropNotNull
	ColumnSetDefault
	ColumnDropDefault
	ColumnDropGenerated
	ColumnSetComment
)

// ColumnAction is one column-level change folded into a TableAlter step.
type ColumnAction struct {
	Kind    ColumnActionKind
	Column  *catalog.Column // the target column's current (new) definition
	Comment string          // for ColumnSetComment only
}

// TableAlter carries every column-level change plus primary key and RLS
// changes for one table, in the order they should be emitted. Table diffs
// are column-level, never a whole-table DROP+CREATE.
type TableAlter struct {
	base
	Schema, Name      string
	Columns           []ColumnAction
	DropPrimaryKey    bool
	AddPrimaryKey     *catalog.PrimaryKey
	SetRLSEnabled     *bool
	SetRLSForced      *bool
	SetTableComment   *string
}

func (t TableAlter) ID() objectid.ID { return objectid.Table(t.Schema, t.Name) }
func (t TableAlter) Kind() OpKind    { return Alter }

// Relationship always reports false: TableAlter is never deferred as a
// relationship step; column reordering is handled by the orderer via
// ordinary dependencies.
func (t TableAlter) Relationship() bool { return false }

func (t TableAlter) Render() []RenderedSql {
	qualified := quote.Qualified(t.Schema, t.Name)
	var out []RenderedSql

	if t.DropPrimaryKey {
		out = append(out, safe(fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;",
			qualified, quote.Ident(t.Schema+"_"+t.Name+"_pkey"))))
	}

	for _, action := range t.Columns {
		switch action.Kind {
		case ColumnAdd:
			out = append(out, safe(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;",
				qualified, columnDef(action.Column))))
		case ColumnDropColumn:
			out = append(out, destructive(fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;",
				qualified, quote.Ident(action.Column.Name))))
		case ColumnAlterType:
			out = append(out, destructive(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;",
				qualified, quote.Ident(action.Column.Name), action.Column.DataType)))
		case ColumnSetNotNull:
			out = append(out, safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;",
				qualified, quote.Ident(action.Column.Name))))
		case ColumnDropNotNull:
			out = append(out, safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;",
				qualified, quote.Ident(action.Column.Name))))
		case ColumnSetDefault:
			out = append(out, safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;",
				qualified, quote.Ident(action.Column.Name), action.Column.Default)))
		case ColumnDropDefault:
			out = append(out, safe(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;",
				qualified, quote.Ident(action.Column.Name))))
		case ColumnDropGenerated:
			out = append(out, destructive(fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP EXPRESSION;",
				qualified, quote.Ident(action.Column.Name))))
		case ColumnSetComment:
			out = append(out, safe(fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;",
				qualified, quote.Ident(action.Column.Name), quote.Literal(action.Comment))))
		}
	}

	if t.AddPrimaryKey != nil {
		quoted := make([]string, len(t.AddPrimaryKey.Columns))
		for i, c := range t.AddPrimaryKey.Columns {
			quoted[i] = quote.Ident(c)
		}
		out = append(out, safe(fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);",
			qualified, quote.Ident(t.AddPrimaryKey.Name), strings.Join(quoted, ", "))))
	}

	if t.SetRLSEnabled != nil {
		verb := "ENABLE"
		if !*t.SetRLSEnabled {
			verb = "DISABLE"
		}
		rls := safe(fmt.Sprintf("ALTER TABLE %s %s ROW LEVEL SECURITY;", qualified, verb))
		if !*t.SetRLSEnabled {
			rls = destructive(rls.Text)
		}
		out = append(out, rls)
	}
	if t.SetRLSForced != nil {
		verb := "FORCE"
		if !*t.SetRLSForced {
			verb = "NO FORCE"
		}
		out = append(out, safe(fmt.Sprintf("ALTER TABLE %s %s ROW LEVEL SECURITY;", qualified, verb)))
	}
	if t.SetTableComment != nil {
		out = append(out, safe(fmt.Sprintf("COMMENT ON TABLE %s IS %s;", qualified, quote.Literal(*t.SetTableComment))))
	}
	return out
}
