// Package catalog holds the in-memory snapshot of every relevant PostgreSQL
// object plus its dependency indices. A Catalog is produced either by the
// reflector (from a live instance) or by the loader (from authored SQL
// applied to a shadow database); once built it is immutable except for the
// file-dependency augmentation pass, which only ever adds ForwardDeps edges
// (and rebuilds ReverseDeps to match).
package catalog

import (
	"sort"

	"github.com/gdpotter/pgmt/internal/objectid"
)

// Catalog is the diff engine's sole input on each side of a comparison.
type Catalog struct {
	Schemas     []*Schema
	Tables      []*Table
	Views       []*View
	Types       []*Type
	Domains     []*Domain
	Functions   []*Function
	Aggregates  []*Aggregate
	Sequences   []*Sequence
	Indexes     []*Index
	Constraints []*Constraint
	Triggers    []*Trigger
	Policies    []*Policy
	Extensions  []*Extension
	Grants      []*Grant

	// ForwardDeps[X] lists everything X depends on; ReverseDeps[Y] lists
	// everything that depends on Y. The two are kept mutually consistent:
	// Y in ForwardDeps[X] iff X in ReverseDeps[Y].
	ForwardDeps map[objectid.ID][]objectid.ID
	ReverseDeps map[objectid.ID][]objectid.ID
}

// Empty returns a Catalog with no objects, used as the "old" side when
// generating a baseline migration.
func Empty() *Catalog {
	return &Catalog{
		ForwardDeps: map[objectid.ID][]objectid.ID{},
		ReverseDeps: map[objectid.ID][]objectid.ID{},
	}
}

// Record is implemented by every per-kind catalog record so the dependency
// index can be built uniformly across kinds.
type Record interface {
	ID() objectid.ID
	DependsOn() []objectid.ID
}

// BuildDependencyIndex (re)computes ForwardDeps and ReverseDeps from the
// depends_on field carried by every object record currently in the catalog.
// It is called once by whichever component finishes constructing the object
// slices (reflector, loader). AugmentFileDependencies does not call it: it
// extends ForwardDeps directly and rebuilds ReverseDeps itself.
func (c *Catalog) BuildDependencyIndex() {
	forward := map[objectid.ID][]objectid.ID{}
	reverse := map[objectid.ID][]objectid.ID{}

	insert := func(id objectid.ID, deps []objectid.ID) {
		forward[id] = append([]objectid.ID(nil), deps...)
		for _, dep := range deps {
			reverse[dep] = append(reverse[dep], id)
		}
	}

	for _, r := range c.allRecords() {
		insert(r.ID(), r.DependsOn())
	}

	for id := range forward {
		sort.Slice(forward[id], func(i, j int) bool { return forward[id][i].Less(forward[id][j]) })
	}
	for id := range reverse {
		sort.Slice(reverse[id], func(i, j int) bool { return reverse[id][i].Less(reverse[id][j]) })
	}

	c.ForwardDeps = forward
	c.ReverseDeps = reverse
}

func (c *Catalog) allRecords() []Record {
	var out []Record
	for _, v := range c.Schemas {
		out = append(out, v)
	}
	for _, v := range c.Tables {
		out = append(out, v)
	}
	for _, v := range c.Views {
		out = append(out, v)
	}
	for _, v := range c.Types {
		out = append(out, v)
	}
	for _, v := range c.Domains {
		out = append(out, v)
	}
	for _, v := range c.Functions {
		out = append(out, v)
	}
	for _, v := range c.Aggregates {
		out = append(out, v)
	}
	for _, v := range c.Sequences {
		out = append(out, v)
	}
	for _, v := range c.Indexes {
		out = append(out, v)
	}
	for _, v := range c.Constraints {
		out = append(out, v)
	}
	for _, v := range c.Triggers {
		out = append(out, v)
	}
	for _, v := range c.Policies {
		out = append(out, v)
	}
	for _, v := range c.Extensions {
		out = append(out, v)
	}
	for _, v := range c.Grants {
		out = append(out, v)
	}
	return out
}

// AugmentFileDependencies extends ForwardDeps with additional edges derived
// from file-level `-- require:` declarations and rebuilds ReverseDeps from
// scratch. It never removes an existing edge.
func (c *Catalog) AugmentFileDependencies(additional map[objectid.ID][]objectid.ID) {
	if c.ForwardDeps == nil {
		c.ForwardDeps = map[objectid.ID][]objectid.ID{}
	}
	for id, deps := range additional {
		existing := c.ForwardDeps[id]
		for _, dep := range deps {
			found := false
			for _, have := range existing {
				if have == dep {
					found = true
					break
				}
			}
			if !found {
				existing = append(existing, dep)
			}
		}
		sort.Slice(existing, func(i, j int) bool { return existing[i].Less(existing[j]) })
		c.ForwardDeps[id] = existing
	}

	reverse := map[objectid.ID][]objectid.ID{}
	for id, deps := range c.ForwardDeps {
		for _, dep := range deps {
			reverse[dep] = append(reverse[dep], id)
		}
	}
	for id := range reverse {
		sort.Slice(reverse[id], func(i, j int) bool { return reverse[id][i].Less(reverse[id][j]) })
	}
	c.ReverseDeps = reverse
}

// FindTable looks up a table record by identity.
func (c *Catalog) FindTable(id objectid.ID) *Table {
	for _, t := range c.Tables {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// FindView looks up a view record by identity.
func (c *Catalog) FindView(id objectid.ID) *View {
	for _, v := range c.Views {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

// FindSequence looks up a sequence record by identity.
func (c *Catalog) FindSequence(id objectid.ID) *Sequence {
	for _, s := range c.Sequences {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// ObjectCount returns the total number of objects tracked by the catalog,
// reported as baseline metadata's `object_count` field.
func (c *Catalog) ObjectCount() int {
	return len(c.allRecords())
}

// AllIDs returns the identity of every object currently tracked by the
// catalog, used by the loader's shadow-apply loop to diff before/after
// snapshots and attribute newly created objects to the file that created
// them.
func (c *Catalog) AllIDs() map[objectid.ID]bool {
	ids := make(map[objectid.ID]bool, len(c.allRecords()))
	for _, r := range c.allRecords() {
		ids[r.ID()] = true
	}
	return ids
}
