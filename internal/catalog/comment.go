package catalog

import (
	"fmt"

	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

// The wrappers below each implement CommentTarget for one object kind.
// They carry no state beyond what is needed to render `COMMENT ON <kind>
// <ident>` and to name the ObjectId being commented on.

type TableComment struct{ Schema, Name string }

func (t TableComment) ObjectKeyword() string { return "TABLE" }
func (t TableComment) QualifiedName() string {
	return quote.Qualified(t.Schema, t.Name)
}
func (t TableComment) ID() objectid.ID { return objectid.Table(t.Schema, t.Name) }

type ViewComment struct{ Schema, Name string }

func (v ViewComment) ObjectKeyword() string  { return "VIEW" }
func (v ViewComment) QualifiedName() string  { return quote.Qualified(v.Schema, v.Name) }
func (v ViewComment) ID() objectid.ID        { return objectid.View(v.Schema, v.Name) }

type ColumnComment struct{ Schema, Table, Column string }

func (c ColumnComment) ObjectKeyword() string { return "COLUMN" }
func (c ColumnComment) QualifiedName() string {
	return fmt.Sprintf("%s.%s", quote.Qualified(c.Schema, c.Table), quote.Ident(c.Column))
}
func (c ColumnComment) ID() objectid.ID {
	return objectid.Column(c.Schema, c.Table, c.Column)
}

type IndexComment struct{ Schema, Name string }

func (i IndexComment) ObjectKeyword() string { return "INDEX" }
func (i IndexComment) QualifiedName() string { return quote.Qualified(i.Schema, i.Name) }
func (i IndexComment) ID() objectid.ID       { return objectid.Index(i.Schema, i.Name) }

type ConstraintComment struct{ Schema, Table, Name string }

func (c ConstraintComment) ObjectKeyword() string {
	return fmt.Sprintf("CONSTRAINT %s ON", quote.Ident(c.Name))
}
func (c ConstraintComment) QualifiedName() string { return quote.Qualified(c.Schema, c.Table) }
func (c ConstraintComment) ID() objectid.ID {
	return objectid.Constraint(c.Schema, c.Table, c.Name)
}

type TriggerComment struct{ Schema, Table, Name string }

func (t TriggerComment) ObjectKeyword() string {
	return fmt.Sprintf("TRIGGER %s ON", quote.Ident(t.Name))
}
func (t TriggerComment) QualifiedName() string { return quote.Qualified(t.Schema, t.Table) }
func (t TriggerComment) ID() objectid.ID {
	return objectid.Trigger(t.Schema, t.Table, t.Name)
}

type PolicyComment struct{ Schema, Table, Name string }

func (p PolicyComment) ObjectKeyword() string {
	return fmt.Sprintf("POLICY %s ON", quote.Ident(p.Name))
}
func (p PolicyComment) QualifiedName() string { return quote.Qualified(p.Schema, p.Table) }
func (p PolicyComment) ID() objectid.ID {
	return objectid.Policy(p.Schema, p.Table, p.Name)
}

type FunctionComment struct{ Schema, Name, Arguments string }

func (f FunctionComment) ObjectKeyword() string { return "FUNCTION" }
func (f FunctionComment) QualifiedName() string {
	return fmt.Sprintf("%s(%s)", quote.Qualified(f.Schema, f.Name), f.Arguments)
}
func (f FunctionComment) ID() objectid.ID {
	return objectid.Function(f.Schema, f.Name, f.Arguments)
}

type AggregateComment struct{ Schema, Name, Arguments string }

func (a AggregateComment) ObjectKeyword() string { return "AGGREGATE" }
func (a AggregateComment) QualifiedName() string {
	return fmt.Sprintf("%s(%s)", quote.Qualified(a.Schema, a.Name), a.Arguments)
}
func (a AggregateComment) ID() objectid.ID {
	return objectid.Aggregate(a.Schema, a.Name, a.Arguments)
}

type SequenceComment struct{ Schema, Name string }

func (s SequenceComment) ObjectKeyword() string { return "SEQUENCE" }
func (s SequenceComment) QualifiedName() string { return quote.Qualified(s.Schema, s.Name) }
func (s SequenceComment) ID() objectid.ID       { return objectid.Sequence(s.Schema, s.Name) }

type SchemaComment struct{ Name string }

func (s SchemaComment) ObjectKeyword() string { return "SCHEMA" }
func (s SchemaComment) QualifiedName() string { return quote.Ident(s.Name) }
func (s SchemaComment) ID() objectid.ID       { return objectid.Schema(s.Name) }

type TypeComment struct{ Schema, Name string }

func (t TypeComment) ObjectKeyword() string { return "TYPE" }
func (t TypeComment) QualifiedName() string { return quote.Qualified(t.Schema, t.Name) }
func (t TypeComment) ID() objectid.ID       { return objectid.Type(t.Schema, t.Name) }

type DomainComment struct{ Schema, Name string }

func (d DomainComment) ObjectKeyword() string { return "DOMAIN" }
func (d DomainComment) QualifiedName() string { return quote.Qualified(d.Schema, d.Name) }
func (d DomainComment) ID() objectid.ID       { return objectid.Domain(d.Schema, d.Name) }

type ExtensionComment struct{ Name string }

func (e ExtensionComment) ObjectKeyword() string { return "EXTENSION" }
func (e ExtensionComment) QualifiedName() string { return quote.Ident(e.Name) }
func (e ExtensionComment) ID() objectid.ID       { return objectid.Extension(e.Name) }
