package step

import (
	"fmt"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

// ViewCreateOrReplace is `CREATE OR REPLACE VIEW`, which diffViews emits for
// every definition or security-option change to an existing view.
type ViewCreateOrReplace struct {
	base
	View *catalog.View
}

func (v ViewCreateOrReplace) ID() objectid.ID { return objectid.View(v.View.Schema, v.View.Name) }
func (v ViewCreateOrReplace) Kind() OpKind    { return Alter }
func (v ViewCreateOrReplace) Render() []RenderedSql {
	return renderView(v.View, "CREATE OR REPLACE VIEW")
}

// ViewCreate is a fresh `CREATE VIEW`.
type ViewCreate struct {
	base
	View *catalog.View
}

func (v ViewCreate) ID() objectid.ID      { return objectid.View(v.View.Schema, v.View.Name) }
func (v ViewCreate) Kind() OpKind         { return Create }
func (v ViewCreate) Render() []RenderedSql { return renderView(v.View, "CREATE VIEW") }

func renderView(v *catalog.View, verb string) []RenderedSql {
	qualified := quote.Qualified(v.Schema, v.Name)
	options := viewOptions(v)
	stmt := fmt.Sprintf("%s %s%s AS\n%s", verb, qualified, options, quote.EnsureSemicolon(v.Definition))
	out := []RenderedSql{safe(stmt)}
	if v.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON VIEW %s IS %s;", qualified, quote.Literal(v.Comment))))
	}
	return out
}

func viewOptions(v *catalog.View) string {
	switch {
	case v.SecurityInvoker:
		return " WITH (security_invoker = true)"
	case v.SecurityBarrier:
		return " WITH (security_barrier = true)"
	default:
		return ""
	}
}

// ViewDrop is `DROP VIEW`, used when the view is being removed outright and
// in the DROP+CREATE pairs the cascade expander synthesizes for dependent
// views. Destructive: dependent reads break until any replacement is created.
type ViewDrop struct {
	base
	Schema, Name string
}

func (v ViewDrop) ID() objectid.ID { return objectid.View(v.Schema, v.Name) }
func (v ViewDrop) Kind() OpKind    { return Drop }
func (v ViewDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP VIEW %s;", quote.Qualified(v.Schema, v.Name)))}
}
