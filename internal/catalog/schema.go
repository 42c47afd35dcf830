package catalog

import "github.com/gdpotter/pgmt/internal/objectid"

// Schema is a PostgreSQL namespace. It is atomic: only create/drop plus a
// comment are possible operations against it.
type Schema struct {
	Name    string
	Owner   string
	Comment string
}

func (s *Schema) ID() objectid.ID          { return objectid.Schema(s.Name) }
func (s *Schema) DependsOn() []objectid.ID { return nil }

// Extension represents a PostgreSQL extension installed in the database.
type Extension struct {
	Name        string
	Schema      string
	Version     string
	Relocatable bool
	Comment     string
}

func (e *Extension) ID() objectid.ID { return objectid.Extension(e.Name) }
func (e *Extension) DependsOn() []objectid.ID {
	if e.Schema == "" {
		return nil
	}
	return []objectid.ID{objectid.Schema(e.Schema)}
}
