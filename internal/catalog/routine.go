package catalog

import "github.com/gdpotter/pgmt/internal/objectid"

// Function's complete server-reconstructed definition (pg_get_functiondef)
// is the source of truth; the remaining fields exist for rendering DROPs
// and computing identity.
type Function struct {
	Schema       string
	Name         string
	Arguments    string // argument-signature suffix used for identity
	Definition   string
	ReturnType   string
	Language     string
	Volatility   string // IMMUTABLE, STABLE, VOLATILE
	Comment      string
	Dependencies []objectid.ID
}

func (f *Function) ID() objectid.ID {
	return objectid.Function(f.Schema, f.Name, f.Arguments)
}
func (f *Function) DependsOn() []objectid.ID { return f.Dependencies }

// Aggregate has no CREATE OR REPLACE form in PostgreSQL; a changed
// aggregate is always DROP+CREATE.
type Aggregate struct {
	Schema             string
	Name               string
	Arguments          string
	TransitionFunction string
	StateType          string
	FinalFunction      string
	InitialCondition   string
	Comment            string
	Dependencies       []objectid.ID
}

func (a *Aggregate) ID() objectid.ID {
	return objectid.Aggregate(a.Schema, a.Name, a.Arguments)
}
func (a *Aggregate) DependsOn() []objectid.ID { return a.Dependencies }

// TypeKind distinguishes user-defined type varieties reflected under the
// Type kind (domains get their own ObjectId kind and record, see Domain).
type TypeKind int

const (
	TypeEnum TypeKind = iota
	TypeComposite
)

// TypeColumn is a field of a composite type.
type TypeColumn struct {
	Name     string
	DataType string
	Position int
}

// Type is a user-defined ENUM or COMPOSITE type.
type Type struct {
	Schema       string
	Name         string
	Kind         TypeKind
	EnumValues   []string
	Columns      []*TypeColumn
	Comment      string
	Dependencies []objectid.ID
}

func (t *Type) ID() objectid.ID          { return objectid.Type(t.Schema, t.Name) }
func (t *Type) DependsOn() []objectid.ID { return t.Dependencies }

// DomainConstraint is a CHECK constraint attached to a domain.
type DomainConstraint struct {
	Name       string
	Definition string
}

// Domain is a PostgreSQL domain: a base type plus constraints/default/null.
type Domain struct {
	Schema       string
	Name         string
	BaseType     string
	NotNull      bool
	Default      string
	Constraints  []*DomainConstraint
	Comment      string
	Dependencies []objectid.ID
}

func (d *Domain) ID() objectid.ID          { return objectid.Domain(d.Schema, d.Name) }
func (d *Domain) DependsOn() []objectid.ID { return d.Dependencies }
