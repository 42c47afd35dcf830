// Package cascade expands a base set of migration steps with drop/recreate
// steps for dependents that must cascade, and filters out redundant steps
// (e.g. DROP SEQUENCE for a sequence owned by a table that is itself being
// dropped). Ported from original_source/src/diff/cascade.rs.
package cascade

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// Expand takes the base steps produced by internal/diff and returns them
// plus any additional recreate steps required because a dependency of a
// dropped-and-recreated object also needs to be dropped and recreated.
func Expand(steps []step.Step, oldCatalog, newCatalog *catalog.Catalog) []step.Step {
	seen := make(map[objectid.ID]bool, len(steps))
	for _, s := range steps {
		seen[s.ID()] = true
	}

	dropCounts := make(map[objectid.ID]int)
	createCounts := make(map[objectid.ID]int)
	for _, s := range steps {
		if s.Kind() == step.Drop {
			dropCounts[s.ID()]++
		} else {
			createCounts[s.ID()]++
		}
	}

	recreateRoots := make(map[objectid.ID]bool)
	for id, count := range dropCounts {
		if count > 0 && createCounts[id] > 0 {
			recreateRoots[id] = true
		}
	}

	visited := make(map[objectid.ID]bool)
	for root := range recreateRoots {
		collectDependents(root, oldCatalog, visited)
	}

	var extra []step.Step
	for id := range visited {
		if seen[id] {
			continue
		}
		if drop, create, ok := synthesizeDropCreate(id, newCatalog); ok {
			extra = append(extra, drop, create)
			seen[id] = true
		}
	}

	all := append(append([]step.Step(nil), steps...), extra...)
	all = replacePolicyAltersOnColumnTypeChange(all, newCatalog)
	return filterOwnedSequenceDrops(all, oldCatalog)
}

// replacePolicyAltersOnColumnTypeChange converts a PolicyAlter into a
// PolicyDrop/PolicyCreate pair whenever the table it is attached to carries
// a ColumnAlterType action in this same batch. PostgreSQL refuses to ALTER
// COLUMN ... TYPE while a policy's USING or WITH CHECK clause still
// references the column, so the policy has to be torn down before the
// column changes and rebuilt after, even though its own definition (roles,
// USING, WITH CHECK) would otherwise be an in-place ALTER POLICY.
func replacePolicyAltersOnColumnTypeChange(steps []step.Step, newCatalog *catalog.Catalog) []step.Step {
	tablesWithTypeChange := make(map[objectid.ID]bool)
	for _, s := range steps {
		alter, ok := s.(step.TableAlter)
		if !ok {
			continue
		}
		for _, col := range alter.Columns {
			if col.Kind == step.ColumnAlterType {
				tablesWithTypeChange[alter.ID()] = true
				break
			}
		}
	}
	if len(tablesWithTypeChange) == 0 {
		return steps
	}

	out := make([]step.Step, 0, len(steps))
	for _, s := range steps {
		alter, ok := s.(step.PolicyAlter)
		if !ok || !tablesWithTypeChange[objectid.Table(alter.Policy.Schema, alter.Policy.Table)] {
			out = append(out, s)
			continue
		}
		out = append(out,
			step.PolicyDrop{Schema: alter.Policy.Schema, Table: alter.Policy.Table, Name: alter.Policy.Name},
			step.PolicyCreate{Policy: alter.Policy},
		)
	}
	return out
}

// collectDependents recursively walks reverse dependency edges, mirroring
// original_source's collect_dependents.
func collectDependents(id objectid.ID, c *catalog.Catalog, out map[objectid.ID]bool) {
	if out[id] {
		return
	}
	out[id] = true
	for _, dep := range c.ReverseDeps[id] {
		collectDependents(dep, c, out)
	}
}

// synthesizeDropCreate emits a (drop, create) pair for an object whose
// dependency must cascade-recreate. Limited to View and Table, matching
// original_source's synthesize_drop_create — every other kind either has
// no safe generic recreate form or is never itself a cascade root in
// practice.
func synthesizeDropCreate(id objectid.ID, newCatalog *catalog.Catalog) (step.Step, step.Step, bool) {
	switch id.Kind {
	case objectid.KindView:
		v := newCatalog.FindView(id)
		if v == nil {
			return nil, nil, false
		}
		return step.ViewDrop{Schema: id.Schema, Name: id.Name}, step.ViewCreate{View: v}, true

	case objectid.KindTable:
		t := newCatalog.FindTable(id)
		if t == nil {
			return nil, nil, false
		}
		return step.TableDrop{Schema: id.Schema, Name: id.Name}, step.TableCreate{Table: t}, true

	default:
		return nil, nil, false
	}
}

// filterOwnedSequenceDrops removes DROP SEQUENCE steps for sequences owned
// by a table that is also being dropped in this same step set: PostgreSQL
// drops owned sequences automatically alongside their owning table, so an
// explicit DROP SEQUENCE would fail against an object that no longer
// exists by the time the executor reaches it.
func filterOwnedSequenceDrops(steps []step.Step, oldCatalog *catalog.Catalog) []step.Step {
	tablesBeingDropped := make(map[objectid.ID]bool)
	for _, s := range steps {
		if s.Kind() == step.Drop && s.ID().Kind == objectid.KindTable {
			tablesBeingDropped[s.ID()] = true
		}
	}
	if len(tablesBeingDropped) == 0 {
		return steps
	}

	sequenceOwners := make(map[objectid.ID]objectid.ID)
	for _, seq := range oldCatalog.Sequences {
		if seq.OwnedByTable == "" {
			continue
		}
		sequenceOwners[seq.ID()] = objectid.Table(seq.Schema, seq.OwnedByTable)
	}

	out := make([]step.Step, 0, len(steps))
	for _, s := range steps {
		if s.Kind() == step.Drop && s.ID().Kind == objectid.KindSequence {
			if owner, ok := sequenceOwners[s.ID()]; ok && tablesBeingDropped[owner] {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
