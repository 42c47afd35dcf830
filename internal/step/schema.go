package step

import (
	"fmt"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

// SchemaCreate is `CREATE SCHEMA`.
type SchemaCreate struct {
	base
	Schema *catalog.Schema
}

func (s SchemaCreate) ID() objectid.ID { return objectid.Schema(s.Schema.Name) }
func (s SchemaCreate) Kind() OpKind    { return Create }
func (s SchemaCreate) Render() []RenderedSql {
	out := []RenderedSql{safe(fmt.Sprintf("CREATE SCHEMA %s;", quote.Ident(s.Schema.Name)))}
	if s.Schema.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON SCHEMA %s IS %s;",
			quote.Ident(s.Schema.Name), quote.Literal(s.Schema.Comment))))
	}
	return out
}

// SchemaDrop is `DROP SCHEMA`. Dropping a schema is Safe: it is fully
// recreatable from authored text.
type SchemaDrop struct {
	base
	Name string
}

func (s SchemaDrop) ID() objectid.ID { return objectid.Schema(s.Name) }
func (s SchemaDrop) Kind() OpKind    { return Drop }
func (s SchemaDrop) Render() []RenderedSql {
	return []RenderedSql{safe(fmt.Sprintf("DROP SCHEMA %s;", quote.Ident(s.Name)))}
}

// ExtensionCreate is `CREATE EXTENSION`. Version is deliberately omitted to
// permit the server's default.
type ExtensionCreate struct {
	base
	Extension *catalog.Extension
}

func (e ExtensionCreate) ID() objectid.ID { return objectid.Extension(e.Extension.Name) }
func (e ExtensionCreate) Kind() OpKind    { return Create }
func (e ExtensionCreate) Render() []RenderedSql {
	stmt := fmt.Sprintf("CREATE EXTENSION %s", quote.Ident(e.Extension.Name))
	if e.Extension.Schema != "" {
		stmt += fmt.Sprintf(" SCHEMA %s", quote.Ident(e.Extension.Schema))
	}
	out := []RenderedSql{safe(stmt + ";")}
	if e.Extension.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON EXTENSION %s IS %s;",
			quote.Ident(e.Extension.Name), quote.Literal(e.Extension.Comment))))
	}
	return out
}

// ExtensionDrop is `DROP EXTENSION` — Destructive because the extension's
// installed objects are lost.
type ExtensionDrop struct {
	base
	Name string
}

func (e ExtensionDrop) ID() objectid.ID { return objectid.Extension(e.Name) }
func (e ExtensionDrop) Kind() OpKind    { return Drop }
func (e ExtensionDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP EXTENSION %s;", quote.Ident(e.Name)))}
}
