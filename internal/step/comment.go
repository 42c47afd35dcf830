package step

import (
	"fmt"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

// CommentSet is `COMMENT ON <kind> <name> IS '...'`, the generic step every
// CommentTarget wrapper renders through: one generic comment diff/render
// path instead of a near-identical one per object kind.
type CommentSet struct {
	base
	Target  catalog.CommentTarget
	Comment string
}

func (c CommentSet) ID() objectid.ID { return objectid.Comment(c.Target.ID()) }
func (c CommentSet) Kind() OpKind    { return Alter }
func (c CommentSet) ExtraDeps() []objectid.ID {
	return []objectid.ID{c.Target.ID()}
}
func (c CommentSet) Render() []RenderedSql {
	stmt := fmt.Sprintf("COMMENT ON %s %s IS %s;", c.Target.ObjectKeyword(), c.Target.QualifiedName(), quote.Literal(c.Comment))
	return []RenderedSql{safe(stmt)}
}

// CommentClear sets a comment back to NULL, rendered as `COMMENT ON ... IS
// NULL`.
type CommentClear struct {
	base
	Target catalog.CommentTarget
}

func (c CommentClear) ID() objectid.ID { return objectid.Comment(c.Target.ID()) }
func (c CommentClear) Kind() OpKind    { return Drop }
func (c CommentClear) ExtraDeps() []objectid.ID {
	return []objectid.ID{c.Target.ID()}
}
func (c CommentClear) Render() []RenderedSql {
	return []RenderedSql{safe(fmt.Sprintf("COMMENT ON %s %s IS NULL;", c.Target.ObjectKeyword(), c.Target.QualifiedName()))}
}
