// Package ignore implements the user-configurable half of the pipeline's
// object-filtering stage: a .pgmtignore TOML file naming glob patterns of tables,
// views, functions, sequences, and types that are excluded from every diff
// regardless of what the reflected and loaded catalogs say (the tracking
// table's own, unconditional exclusion is internal/migrations.FilterCatalog's
// job, not this package's). Grounded on the teacher's
// internal/ignore/loader.go TOML shape, generalized from the old IR-based
// catalog to internal/catalog's types.
package ignore

import (
	"os"
	"path"

	"github.com/BurntSushi/toml"

	"github.com/gdpotter/pgmt/internal/catalog"
)

// FileName is the default ignore-file name a project root may contain.
const FileName = ".pgmtignore"

// Config is the structured .pgmtignore contents: one glob-pattern list per
// object category.
type Config struct {
	Tables    []string `toml:"tables,omitempty"`
	Views     []string `toml:"views,omitempty"`
	Functions []string `toml:"functions,omitempty"`
	Sequences []string `toml:"sequences,omitempty"`
	Types     []string `toml:"types,omitempty"`
}

// Load reads and parses path, returning a nil Config (no filtering) when the
// file does not exist.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Apply returns a copy of c with every table/view/function/sequence/type
// matching one of cfg's patterns removed, along with anything scoped to a
// removed table (its indexes, constraints, triggers, policies), and its
// dependency index rebuilt. c is not mutated. A nil cfg returns c itself
// unchanged.
func (cfg *Config) Apply(c *catalog.Catalog) *catalog.Catalog {
	if cfg == nil {
		return c
	}

	droppedTables := map[string]bool{}
	filtered := &catalog.Catalog{
		Schemas:    c.Schemas,
		Domains:    c.Domains,
		Aggregates: c.Aggregates,
		Extensions: c.Extensions,
		Grants:     c.Grants,
	}

	for _, t := range c.Tables {
		if matchesAny(cfg.Tables, t.Schema, t.Name) {
			droppedTables[t.Schema+"."+t.Name] = true
			continue
		}
		filtered.Tables = append(filtered.Tables, t)
	}
	for _, v := range c.Views {
		if !matchesAny(cfg.Views, v.Schema, v.Name) {
			filtered.Views = append(filtered.Views, v)
		}
	}
	for _, fn := range c.Functions {
		if !matchesAny(cfg.Functions, fn.Schema, fn.Name) {
			filtered.Functions = append(filtered.Functions, fn)
		}
	}
	for _, s := range c.Sequences {
		if !matchesAny(cfg.Sequences, s.Schema, s.Name) {
			filtered.Sequences = append(filtered.Sequences, s)
		}
	}
	for _, ty := range c.Types {
		if !matchesAny(cfg.Types, ty.Schema, ty.Name) {
			filtered.Types = append(filtered.Types, ty)
		}
	}

	for _, idx := range c.Indexes {
		if !droppedTables[idx.Schema+"."+idx.Table] {
			filtered.Indexes = append(filtered.Indexes, idx)
		}
	}
	for _, con := range c.Constraints {
		if !droppedTables[con.Schema+"."+con.Table] {
			filtered.Constraints = append(filtered.Constraints, con)
		}
	}
	for _, trg := range c.Triggers {
		if !droppedTables[trg.Schema+"."+trg.Table] {
			filtered.Triggers = append(filtered.Triggers, trg)
		}
	}
	for _, pol := range c.Policies {
		if !droppedTables[pol.Schema+"."+pol.Table] {
			filtered.Policies = append(filtered.Policies, pol)
		}
	}

	filtered.BuildDependencyIndex()
	return filtered
}

// matchesAny reports whether schema.name matches any of patterns, using
// path.Match glob semantics (*, ?, [...]) the way .gitignore-style files
// in the retrieval pack already do.
func matchesAny(patterns []string, schema, name string) bool {
	qualified := schema + "." + name
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, qualified); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
