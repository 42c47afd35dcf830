// Package objectid defines the closed tagged union used to name every
// PostgreSQL object pgmt knows about. ObjectId is the only identity used
// across the catalog, diff, cascade, order, and render stages: no database
// OID ever leaks past the reflector.
package objectid

import "fmt"

// Kind distinguishes the variants of the ObjectId union.
type Kind int

const (
	KindSchema Kind = iota
	KindTable
	KindView
	KindType
	KindDomain
	KindSequence
	KindIndex
	KindFunction
	KindAggregate
	KindConstraint
	KindTrigger
	KindPolicy
	KindExtension
	KindGrant
	KindComment
	KindColumn
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindTable:
		return "table"
	case KindView:
		return "view"
	case KindType:
		return "type"
	case KindDomain:
		return "domain"
	case KindSequence:
		return "sequence"
	case KindIndex:
		return "index"
	case KindFunction:
		return "function"
	case KindAggregate:
		return "aggregate"
	case KindConstraint:
		return "constraint"
	case KindTrigger:
		return "trigger"
	case KindPolicy:
		return "policy"
	case KindExtension:
		return "extension"
	case KindGrant:
		return "grant"
	case KindComment:
		return "comment"
	case KindColumn:
		return "column"
	default:
		return "unknown"
	}
}

// ID is a value-typed identifier for any database object. It is comparable
// (usable as a map key) and totally orderable via Less, so catalogs and
// plans can be sorted and diffed deterministically.
//
// Only the fields relevant to Kind are populated; the rest are left zero.
// This mirrors a closed sum type using a single flat struct, which is the
// cheapest way to get comparability (==, map keys) out of Go's type system
// without reaching for an interface and losing equality-by-value.
type ID struct {
	Kind Kind

	Schema string
	Table  string // owning table, for Constraint/Trigger/Policy/Column
	Name   string
	Column string // for Column

	// Arguments is the argument-signature suffix used to disambiguate
	// overloaded Function/Aggregate identities, e.g. "integer, text".
	Arguments string

	// GrantKey is the composite "grantee@object-type:qualified-name"
	// string that uniquely identifies a Grant.
	GrantKey string

	// Inner is non-nil only for KindComment: the object being commented on.
	Inner *ID
}

func Schema(name string) ID { return ID{Kind: KindSchema, Name: name} }

func Table(schema, name string) ID { return ID{Kind: KindTable, Schema: schema, Name: name} }

func View(schema, name string) ID { return ID{Kind: KindView, Schema: schema, Name: name} }

func Type(schema, name string) ID { return ID{Kind: KindType, Schema: schema, Name: name} }

func Domain(schema, name string) ID { return ID{Kind: KindDomain, Schema: schema, Name: name} }

func Sequence(schema, name string) ID { return ID{Kind: KindSequence, Schema: schema, Name: name} }

func Index(schema, name string) ID { return ID{Kind: KindIndex, Schema: schema, Name: name} }

func Function(schema, name, args string) ID {
	return ID{Kind: KindFunction, Schema: schema, Name: name, Arguments: args}
}

func Aggregate(schema, name, args string) ID {
	return ID{Kind: KindAggregate, Schema: schema, Name: name, Arguments: args}
}

func Constraint(schema, table, name string) ID {
	return ID{Kind: KindConstraint, Schema: schema, Table: table, Name: name}
}

func Trigger(schema, table, name string) ID {
	return ID{Kind: KindTrigger, Schema: schema, Table: table, Name: name}
}

func Policy(schema, table, name string) ID {
	return ID{Kind: KindPolicy, Schema: schema, Table: table, Name: name}
}

func Extension(name string) ID { return ID{Kind: KindExtension, Name: name} }

// Grant builds a Grant identity from its pre-composed "grantee@type:name" key.
func Grant(key string) ID { return ID{Kind: KindGrant, GrantKey: key} }

func Comment(of ID) ID { return ID{Kind: KindComment, Inner: &of} }

func Column(schema, table, column string) ID {
	return ID{Kind: KindColumn, Schema: schema, Table: table, Column: column}
}

// SchemaOf returns the schema an object belongs to, if any. Grant and
// Extension are database/role scoped and return "". Comment delegates to
// its wrapped object.
func (id ID) SchemaOf() string {
	if id.Kind == KindComment && id.Inner != nil {
		return id.Inner.SchemaOf()
	}
	if id.Kind == KindSchema {
		return id.Name
	}
	if id.Kind == KindGrant || id.Kind == KindExtension {
		return ""
	}
	return id.Schema
}

func (id ID) String() string {
	switch id.Kind {
	case KindSchema:
		return fmt.Sprintf("schema %s", id.Name)
	case KindTable:
		return fmt.Sprintf("table %s.%s", id.Schema, id.Name)
	case KindView:
		return fmt.Sprintf("view %s.%s", id.Schema, id.Name)
	case KindType:
		return fmt.Sprintf("type %s.%s", id.Schema, id.Name)
	case KindDomain:
		return fmt.Sprintf("domain %s.%s", id.Schema, id.Name)
	case KindSequence:
		return fmt.Sprintf("sequence %s.%s", id.Schema, id.Name)
	case KindIndex:
		return fmt.Sprintf("index %s.%s", id.Schema, id.Name)
	case KindFunction:
		return fmt.Sprintf("function %s.%s(%s)", id.Schema, id.Name, id.Arguments)
	case KindAggregate:
		return fmt.Sprintf("aggregate %s.%s(%s)", id.Schema, id.Name, id.Arguments)
	case KindConstraint:
		return fmt.Sprintf("constraint %s.%s.%s", id.Schema, id.Table, id.Name)
	case KindTrigger:
		return fmt.Sprintf("trigger %s.%s.%s", id.Schema, id.Table, id.Name)
	case KindPolicy:
		return fmt.Sprintf("policy %s.%s.%s", id.Schema, id.Table, id.Name)
	case KindExtension:
		return fmt.Sprintf("extension %s", id.Name)
	case KindGrant:
		return fmt.Sprintf("grant %s", id.GrantKey)
	case KindComment:
		return fmt.Sprintf("comment on %s", id.Inner)
	case KindColumn:
		return fmt.Sprintf("column %s.%s.%s", id.Schema, id.Table, id.Column)
	default:
		return "unknown object"
	}
}

// Less gives ID a total, deterministic order so plans and catalogs can be
// sorted reproducibly (spec property: Determinism).
func (id ID) Less(other ID) bool {
	if id.Kind != other.Kind {
		return id.Kind < other.Kind
	}
	if id.Kind == KindComment {
		if id.Inner == nil || other.Inner == nil {
			return id.Inner != nil
		}
		return id.Inner.Less(*other.Inner)
	}
	if id.Kind == KindGrant {
		return id.GrantKey < other.GrantKey
	}
	if id.Schema != other.Schema {
		return id.Schema < other.Schema
	}
	if id.Table != other.Table {
		return id.Table < other.Table
	}
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	if id.Column != other.Column {
		return id.Column < other.Column
	}
	return id.Arguments < other.Arguments
}

// DependsOn is implemented by every catalog record type: it reports the
// record's own identity and the identities it depends on.
type DependsOn interface {
	ID() ID
	DependsOn() []ID
}
