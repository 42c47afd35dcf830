package step

import (
	"fmt"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

// SequenceCreate is `CREATE SEQUENCE`.
type SequenceCreate struct {
	base
	Sequence *catalog.Sequence
}

func (s SequenceCreate) ID() objectid.ID { return objectid.Sequence(s.Sequence.Schema, s.Sequence.Name) }
func (s SequenceCreate) Kind() OpKind    { return Create }
func (s SequenceCreate) Render() []RenderedSql {
	qualified := quote.Qualified(s.Sequence.Schema, s.Sequence.Name)
	stmt := fmt.Sprintf("CREATE SEQUENCE %s\n    AS %s\n    START WITH %d\n    INCREMENT BY %d",
		qualified, s.Sequence.DataType, s.Sequence.StartValue, s.Sequence.Increment)
	if s.Sequence.MinValue != nil {
		stmt += fmt.Sprintf("\n    MINVALUE %d", *s.Sequence.MinValue)
	} else {
		stmt += "\n    NO MINVALUE"
	}
	if s.Sequence.MaxValue != nil {
		stmt += fmt.Sprintf("\n    MAXVALUE %d", *s.Sequence.MaxValue)
	} else {
		stmt += "\n    NO MAXVALUE"
	}
	if s.Sequence.Cycle {
		stmt += "\n    CYCLE"
	}
	out := []RenderedSql{safe(stmt + ";")}
	out = append(out, sequenceOwnership(s.Sequence)...)
	if s.Sequence.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON SEQUENCE %s IS %s;", qualified, quote.Literal(s.Sequence.Comment))))
	}
	return out
}

func sequenceOwnership(s *catalog.Sequence) []RenderedSql {
	if s.OwnedByTable == "" {
		return nil
	}
	qualified := quote.Qualified(s.Schema, s.Name)
	owner := fmt.Sprintf("%s.%s", quote.Qualified(s.Schema, s.OwnedByTable), quote.Ident(s.OwnedByColumn))
	return []RenderedSql{safe(fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s;", qualified, owner))}
}

// SequenceOwnedByAlter is the standalone `ALTER SEQUENCE ... OWNED BY`
// relationship step deferred to the orderer's trailing phase: it must run
// after both the sequence and the owning column exist.
type SequenceOwnedByAlter struct {
	base
	Sequence *catalog.Sequence
}

func (s SequenceOwnedByAlter) ID() objectid.ID {
	return objectid.Sequence(s.Sequence.Schema, s.Sequence.Name)
}
func (s SequenceOwnedByAlter) Kind() OpKind         { return Alter }
func (s SequenceOwnedByAlter) Relationship() bool   { return true }
func (s SequenceOwnedByAlter) Render() []RenderedSql { return sequenceOwnership(s.Sequence) }

// SequenceDrop is `DROP SEQUENCE`. Destructive: the current value is lost.
type SequenceDrop struct {
	base
	Schema, Name string
}

func (s SequenceDrop) ID() objectid.ID { return objectid.Sequence(s.Schema, s.Name) }
func (s SequenceDrop) Kind() OpKind    { return Drop }
func (s SequenceDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP SEQUENCE %s;", quote.Qualified(s.Schema, s.Name)))}
}

// SequenceAlter covers in-place sequence parameter changes (start value
// aside, which only applies at creation): increment, bounds, cycle.
type SequenceAlter struct {
	base
	Sequence *catalog.Sequence
}

func (s SequenceAlter) ID() objectid.ID { return objectid.Sequence(s.Sequence.Schema, s.Sequence.Name) }
func (s SequenceAlter) Kind() OpKind    { return Alter }
func (s SequenceAlter) Render() []RenderedSql {
	qualified := quote.Qualified(s.Sequence.Schema, s.Sequence.Name)
	stmt := fmt.Sprintf("ALTER SEQUENCE %s\n    INCREMENT BY %d", qualified, s.Sequence.Increment)
	if s.Sequence.MinValue != nil {
		stmt += fmt.Sprintf("\n    MINVALUE %d", *s.Sequence.MinValue)
	} else {
		stmt += "\n    NO MINVALUE"
	}
	if s.Sequence.MaxValue != nil {
		stmt += fmt.Sprintf("\n    MAXVALUE %d", *s.Sequence.MaxValue)
	} else {
		stmt += "\n    NO MAXVALUE"
	}
	if s.Sequence.Cycle {
		stmt += "\n    CYCLE"
	} else {
		stmt += "\n    NO CYCLE"
	}
	return []RenderedSql{safe(stmt + ";")}
}
