package catalog

import "github.com/gdpotter/pgmt/internal/objectid"

// Column is a single table column.
type Column struct {
	Name               string
	Position           int
	DataType           string
	NotNull            bool
	Default            string // empty string means no default
	GeneratedExpr      string // non-empty for GENERATED ALWAYS AS (...) STORED
	Comment            string
	// IdentityGeneration is "ALWAYS", "BY DEFAULT", or "" when the column
	// is not an identity column.
	IdentityGeneration string
}

// PrimaryKey names a table's primary key, if any.
type PrimaryKey struct {
	Name    string
	Columns []string
}

// Table is a base table.
type Table struct {
	Schema       string
	Name         string
	Columns      []*Column
	PrimaryKey   *PrimaryKey
	RLSEnabled   bool
	RLSForced    bool
	Comment      string
	Dependencies []objectid.ID
}

func (t *Table) ID() objectid.ID          { return objectid.Table(t.Schema, t.Name) }
func (t *Table) DependsOn() []objectid.ID { return t.Dependencies }

// FindColumn returns the column with the given name, or nil.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// View is a (non-materialized) view; definition text is the source of truth.
type View struct {
	Schema          string
	Name            string
	Definition      string
	SecurityInvoker bool
	SecurityBarrier bool
	Comment         string
	Dependencies    []objectid.ID
}

func (v *View) ID() objectid.ID          { return objectid.View(v.Schema, v.Name) }
func (v *View) DependsOn() []objectid.ID { return v.Dependencies }

// Sequence represents a standalone or column-owned sequence.
type Sequence struct {
	Schema        string
	Name          string
	DataType      string
	StartValue    int64
	MinValue      *int64
	MaxValue      *int64
	Increment     int64
	Cycle         bool
	OwnedByTable  string // empty when not owned by a column
	OwnedByColumn string
	Comment       string
	Dependencies  []objectid.ID
}

func (s *Sequence) ID() objectid.ID          { return objectid.Sequence(s.Schema, s.Name) }
func (s *Sequence) DependsOn() []objectid.ID { return s.Dependencies }

// OwnedBy reports whether the sequence is owned by the given table, per
// `ALTER SEQUENCE ... OWNED BY`.
func (s *Sequence) OwnedBy(schema, table string) bool {
	return s.OwnedByTable != "" && s.Schema == schema && s.OwnedByTable == table
}
