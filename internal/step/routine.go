package step

import (
	"fmt"
	"strings"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

// FunctionCreateOrReplace covers both fresh creation and in-place
// replacement: PostgreSQL's CREATE OR REPLACE FUNCTION handles both as long
// as the argument signature is unchanged.
type FunctionCreateOrReplace struct {
	base
	Function *catalog.Function
	IsNew    bool
}

func (f FunctionCreateOrReplace) ID() objectid.ID {
	return objectid.Function(f.Function.Schema, f.Function.Name, f.Function.Arguments)
}
func (f FunctionCreateOrReplace) Kind() OpKind {
	if f.IsNew {
		return Create
	}
	return Alter
}
func (f FunctionCreateOrReplace) Render() []RenderedSql {
	out := []RenderedSql{safe(quote.EnsureSemicolon(f.Function.Definition))}
	if f.Function.Comment != "" {
		qualified := fmt.Sprintf("%s(%s)", quote.Qualified(f.Function.Schema, f.Function.Name), f.Function.Arguments)
		out = append(out, safe(fmt.Sprintf("COMMENT ON FUNCTION %s IS %s;", qualified, quote.Literal(f.Function.Comment))))
	}
	return out
}

// FunctionDrop is `DROP FUNCTION`. Destructive since dependent callers break.
type FunctionDrop struct {
	base
	Schema, Name, Arguments string
}

func (f FunctionDrop) ID() objectid.ID { return objectid.Function(f.Schema, f.Name, f.Arguments) }
func (f FunctionDrop) Kind() OpKind    { return Drop }
func (f FunctionDrop) Render() []RenderedSql {
	qualified := fmt.Sprintf("%s(%s)", quote.Qualified(f.Schema, f.Name), f.Arguments)
	return []RenderedSql{destructive(fmt.Sprintf("DROP FUNCTION %s;", qualified))}
}

// AggregateCreate is `CREATE AGGREGATE`. PostgreSQL has no CREATE OR REPLACE
// AGGREGATE form, so any change is always DROP+CREATE.
type AggregateCreate struct {
	base
	Aggregate *catalog.Aggregate
}

func (a AggregateCreate) ID() objectid.ID {
	return objectid.Aggregate(a.Aggregate.Schema, a.Aggregate.Name, a.Aggregate.Arguments)
}
func (a AggregateCreate) Kind() OpKind { return Create }
func (a AggregateCreate) Render() []RenderedSql {
	qualified := quote.Qualified(a.Aggregate.Schema, a.Aggregate.Name)
	stmt := fmt.Sprintf("CREATE AGGREGATE %s(%s) (\n    SFUNC = %s,\n    STYPE = %s",
		qualified, a.Aggregate.Arguments, a.Aggregate.TransitionFunction, a.Aggregate.StateType)
	if a.Aggregate.FinalFunction != "" {
		stmt += fmt.Sprintf(",\n    FINALFUNC = %s", a.Aggregate.FinalFunction)
	}
	if a.Aggregate.InitialCondition != "" {
		stmt += fmt.Sprintf(",\n    INITCOND = %s", quote.Literal(a.Aggregate.InitialCondition))
	}
	stmt += "\n);"
	out := []RenderedSql{safe(stmt)}
	if a.Aggregate.Comment != "" {
		target := fmt.Sprintf("%s(%s)", qualified, a.Aggregate.Arguments)
		out = append(out, safe(fmt.Sprintf("COMMENT ON AGGREGATE %s IS %s;", target, quote.Literal(a.Aggregate.Comment))))
	}
	return out
}

type AggregateDrop struct {
	base
	Schema, Name, Arguments string
}

func (a AggregateDrop) ID() objectid.ID { return objectid.Aggregate(a.Schema, a.Name, a.Arguments) }
func (a AggregateDrop) Kind() OpKind    { return Drop }
func (a AggregateDrop) Render() []RenderedSql {
	qualified := fmt.Sprintf("%s(%s)", quote.Qualified(a.Schema, a.Name), a.Arguments)
	return []RenderedSql{destructive(fmt.Sprintf("DROP AGGREGATE %s;", qualified))}
}

// TypeCreate is `CREATE TYPE ... AS ENUM` or `AS (...)`. PostgreSQL enums
// support ALTER TYPE ... ADD VALUE for appends only; any reordering or
// removal must go through this DROP+CREATE path instead.
type TypeCreate struct {
	base
	Type *catalog.Type
}

func (t TypeCreate) ID() objectid.ID { return objectid.Type(t.Type.Schema, t.Type.Name) }
func (t TypeCreate) Kind() OpKind    { return Create }
func (t TypeCreate) Render() []RenderedSql {
	qualified := quote.Qualified(t.Type.Schema, t.Type.Name)
	var body string
	if t.Type.Kind == catalog.TypeEnum {
		quoted := make([]string, len(t.Type.EnumValues))
		for i, v := range t.Type.EnumValues {
			quoted[i] = quote.Literal(v)
		}
		body = fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", qualified, strings.Join(quoted, ", "))
	} else {
		fields := make([]string, len(t.Type.Columns))
		for i, c := range t.Type.Columns {
			fields[i] = fmt.Sprintf("    %s %s", quote.Ident(c.Name), c.DataType)
		}
		body = fmt.Sprintf("CREATE TYPE %s AS (\n%s\n);", qualified, strings.Join(fields, ",\n"))
	}
	out := []RenderedSql{safe(body)}
	if t.Type.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON TYPE %s IS %s;", qualified, quote.Literal(t.Type.Comment))))
	}
	return out
}

// TypeAddEnumValue is `ALTER TYPE ... ADD VALUE`, the one in-place
// alteration enums support: appending a new value without reordering or
// removing existing ones.
type TypeAddEnumValue struct {
	base
	Schema, Name, Value string
	Before, After       string // at most one set; empty means append at end
}

func (t TypeAddEnumValue) ID() objectid.ID { return objectid.Type(t.Schema, t.Name) }
func (t TypeAddEnumValue) Kind() OpKind    { return Alter }
func (t TypeAddEnumValue) Render() []RenderedSql {
	qualified := quote.Qualified(t.Schema, t.Name)
	stmt := fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", qualified, quote.Literal(t.Value))
	switch {
	case t.Before != "":
		stmt += fmt.Sprintf(" BEFORE %s", quote.Literal(t.Before))
	case t.After != "":
		stmt += fmt.Sprintf(" AFTER %s", quote.Literal(t.After))
	}
	return []RenderedSql{safe(stmt + ";")}
}

type TypeDrop struct {
	base
	Schema, Name string
}

func (t TypeDrop) ID() objectid.ID { return objectid.Type(t.Schema, t.Name) }
func (t TypeDrop) Kind() OpKind    { return Drop }
func (t TypeDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP TYPE %s;", quote.Qualified(t.Schema, t.Name)))}
}

// DomainCreate is `CREATE DOMAIN`.
type DomainCreate struct {
	base
	Domain *catalog.Domain
}

func (d DomainCreate) ID() objectid.ID { return objectid.Domain(d.Domain.Schema, d.Domain.Name) }
func (d DomainCreate) Kind() OpKind    { return Create }
func (d DomainCreate) Render() []RenderedSql {
	qualified := quote.Qualified(d.Domain.Schema, d.Domain.Name)
	stmt := fmt.Sprintf("CREATE DOMAIN %s AS %s", qualified, d.Domain.BaseType)
	if d.Domain.Default != "" {
		stmt += " DEFAULT " + d.Domain.Default
	}
	if d.Domain.NotNull {
		stmt += " NOT NULL"
	}
	for _, c := range d.Domain.Constraints {
		stmt += fmt.Sprintf(" CONSTRAINT %s CHECK (%s)", quote.Ident(c.Name), c.Definition)
	}
	out := []RenderedSql{safe(stmt + ";")}
	if d.Domain.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON DOMAIN %s IS %s;", qualified, quote.Literal(d.Domain.Comment))))
	}
	return out
}

type DomainDrop struct {
	base
	Schema, Name string
}

func (d DomainDrop) ID() objectid.ID { return objectid.Domain(d.Schema, d.Name) }
func (d DomainDrop) Kind() OpKind    { return Drop }
func (d DomainDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP DOMAIN %s;", quote.Qualified(d.Schema, d.Name)))}
}
