package step

import (
	"fmt"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

// TriggerCreate is the trigger's own `CREATE TRIGGER` definition text,
// reflected verbatim via pg_get_triggerdef — there is no CREATE OR REPLACE
// TRIGGER, so any change is DROP+CREATE.
type TriggerCreate struct {
	base
	Trigger *catalog.Trigger
}

func (t TriggerCreate) ID() objectid.ID {
	return objectid.Trigger(t.Trigger.Schema, t.Trigger.Table, t.Trigger.Name)
}
func (t TriggerCreate) Kind() OpKind { return Create }
func (t TriggerCreate) Render() []RenderedSql {
	out := []RenderedSql{safe(quote.EnsureSemicolon(t.Trigger.Definition))}
	if t.Trigger.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON TRIGGER %s ON %s IS %s;",
			quote.Ident(t.Trigger.Name), quote.Qualified(t.Trigger.Schema, t.Trigger.Table),
			quote.Literal(t.Trigger.Comment))))
	}
	return out
}

// TriggerDrop is `DROP TRIGGER`. Destructive: the behavior it enforces
// stops firing.
type TriggerDrop struct {
	base
	Schema, Table, Name string
}

func (t TriggerDrop) ID() objectid.ID { return objectid.Trigger(t.Schema, t.Table, t.Name) }
func (t TriggerDrop) Kind() OpKind    { return Drop }
func (t TriggerDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP TRIGGER %s ON %s;",
		quote.Ident(t.Name), quote.Qualified(t.Schema, t.Table)))}
}
