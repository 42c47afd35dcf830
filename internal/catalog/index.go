package catalog

import "github.com/gdpotter/pgmt/internal/objectid"

// IndexColumn is a single key (or include) column of an index.
type IndexColumn struct {
	Expression string // column name, or the expression text for expression indexes
	Collation  string
	OpClass    string
	Descending bool
	NullsFirst bool
	Include    bool // true if this is an INCLUDE-only column
}

// Index represents a btree/hash/gist/gin/spgist/brin/custom index. Indexes
// that back a constraint are not reflected separately: they
// are recreated implicitly by the constraint.
type Index struct {
	Schema           string
	Table            string
	Name             string
	Method           string
	Unique           bool
	Valid            bool
	Clustered        bool
	Columns          []*IndexColumn
	Predicate        string // partial index WHERE clause, empty if none
	Tablespace       string
	StorageParams    map[string]string
	Comment          string
	Dependencies     []objectid.ID
}

func (i *Index) ID() objectid.ID          { return objectid.Index(i.Schema, i.Name) }
func (i *Index) DependsOn() []objectid.ID { return i.Dependencies }

// ConstraintKind is the closed set of constraint varieties.
type ConstraintKind int

const (
	ConstraintUnique ConstraintKind = iota
	ConstraintForeignKey
	ConstraintCheck
	ConstraintExclusion
)

// Constraint covers UNIQUE, FOREIGN KEY, CHECK, and EXCLUSION constraints.
// Primary keys are owned by the Table record, not by Constraint.
type Constraint struct {
	Schema string
	Table  string
	Name   string
	Kind   ConstraintKind

	// Unique / ForeignKey / Exclusion
	Columns []string

	// ForeignKey only
	RefSchema         string
	RefTable          string
	RefColumns        []string
	OnDelete          string // CASCADE, RESTRICT, SET NULL, SET DEFAULT, NO ACTION
	OnUpdate          string
	Deferrable        bool
	InitiallyDeferred bool

	// Check only
	CheckExpr string

	// Exclusion only
	ExclusionElements  []string
	ExclusionOpClasses []string
	ExclusionOperators []string
	Method             string
	Predicate          string

	Comment      string
	Dependencies []objectid.ID
}

func (c *Constraint) ID() objectid.ID {
	return objectid.Constraint(c.Schema, c.Table, c.Name)
}
func (c *Constraint) DependsOn() []objectid.ID { return c.Dependencies }

// Trigger's definition text (as pg_get_triggerdef returns it) is the source
// of truth for recreation.
type Trigger struct {
	Schema     string
	Table      string
	Name       string
	Definition string
	Function   string
	Comment    string
	Dependencies []objectid.ID
}

func (t *Trigger) ID() objectid.ID          { return objectid.Trigger(t.Schema, t.Table, t.Name) }
func (t *Trigger) DependsOn() []objectid.ID { return t.Dependencies }

// PolicyCommand is the closed set of RLS policy commands.
type PolicyCommand int

const (
	PolicyAll PolicyCommand = iota
	PolicySelect
	PolicyInsert
	PolicyUpdate
	PolicyDelete
)

// Policy is a row-level-security policy. An empty Roles list means PUBLIC.
type Policy struct {
	Schema       string
	Table        string
	Name         string
	Command      PolicyCommand
	Permissive   bool
	Roles        []string
	Using        string
	WithCheck    string
	Comment      string
	Dependencies []objectid.ID
}

func (p *Policy) ID() objectid.ID          { return objectid.Policy(p.Schema, p.Table, p.Name) }
func (p *Policy) DependsOn() []objectid.ID { return p.Dependencies }
