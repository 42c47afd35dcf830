// Package order topologically sorts a cascade-expanded step list into a
// single, reproducible execution order. It is new code — neither the
// teacher nor original_source carries a generic orderer decoupled from its
// own diff model (pgschema's internal/diff/topological.go sorts per-kind
// object lists ad hoc, never a mixed Step list) — grounded on the
// dependency-index edge rules internal/catalog already exposes and on the
// teacher's topological.go for the general shape of a Kahn's-algorithm-style
// sort with a stable tiebreak.
package order

import (
	"fmt"
	"sort"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// CycleError reports a dependency cycle among the given object identities.
type CycleError struct {
	Involved []objectid.ID
}

func (e *CycleError) Error() string {
	msg := "dependency cycle detected among:"
	for _, id := range e.Involved {
		msg += fmt.Sprintf("\n  - %s", id)
	}
	return msg
}

// kindPriority gives the stable tiebreak's first key: schemas and
// extensions first, then primary objects, then the things that depend on
// them, matching the rough shape PostgreSQL itself wants objects created
// in. The full tiebreak key is kind-priority, then the step's OpKind, then
// the object's identity string.
func kindPriority(k objectid.Kind) int {
	switch k {
	case objectid.KindSchema:
		return 0
	case objectid.KindExtension:
		return 1
	case objectid.KindDomain:
		return 2
	case objectid.KindType:
		return 3
	case objectid.KindSequence:
		return 4
	case objectid.KindTable:
		return 5
	case objectid.KindView:
		return 6
	case objectid.KindFunction:
		return 7
	case objectid.KindAggregate:
		return 8
	case objectid.KindIndex:
		return 9
	case objectid.KindConstraint:
		return 10
	case objectid.KindTrigger:
		return 11
	case objectid.KindPolicy:
		return 12
	case objectid.KindGrant:
		return 13
	case objectid.KindComment:
		return 14
	default:
		return 15
	}
}

func tiebreakKey(s step.Step) string {
	id := s.ID()
	return fmt.Sprintf("%02d-%02d-%s", kindPriority(id.Kind), int(s.Kind()), id.String())
}

// Order produces a single execution order for steps given the old and new
// catalogs' dependency indices. Relationship steps (foreign-key constraint
// creation, sequence ownership alteration) are held back and appended in a
// trailing phase after every primary-object step has been ordered, so
// mutually referential tables can be created without cyclic foreign-key
// edges entering the primary sort.
func Order(steps []step.Step, oldCatalog, newCatalog *catalog.Catalog) ([]step.Step, error) {
	var primary, relationship []step.Step
	for _, s := range steps {
		if s.Relationship() {
			relationship = append(relationship, s)
		} else {
			primary = append(primary, s)
		}
	}

	orderedPrimary, err := topoSort(primary, oldCatalog, newCatalog)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(relationship, func(i, j int) bool {
		return tiebreakKey(relationship[i]) < tiebreakKey(relationship[j])
	})

	return append(orderedPrimary, relationship...), nil
}

// edge is a directed "before" relationship: From must execute before To.
type edge struct {
	From, To int
}

func topoSort(steps []step.Step, oldCatalog, newCatalog *catalog.Catalog) ([]step.Step, error) {
	n := len(steps)
	if n == 0 {
		return nil, nil
	}

	// Recreate pairing: when one ObjectId has both a Drop and a Create/Alter
	// step in this set, the Drop must precede the other.
	dropIndexByID := make(map[objectid.ID]int)
	for i, s := range steps {
		if s.Kind() == step.Drop {
			dropIndexByID[s.ID()] = i
		}
	}

	var edges []edge
	addEdge := func(from, to int) {
		if from != to {
			edges = append(edges, edge{From: from, To: to})
		}
	}

	for i, s := range steps {
		id := s.ID()

		if s.Kind() != step.Drop {
			if dropIdx, ok := dropIndexByID[id]; ok {
				addEdge(dropIdx, i)
			}
		}

		switch s.Kind() {
		case step.Drop:
			// A Drop for X must follow Drops for everything that depended
			// on X in the old catalog (reverse_deps_old[X]): you drop
			// things in the opposite order you created them.
			for _, dependent := range oldCatalog.ReverseDeps[id] {
				if j, ok := indexOfDrop(steps, dependent); ok {
					addEdge(j, i)
				}
			}
		case step.Alter:
			// X itself isn't being dropped, but anything that depended on
			// X in the old catalog and is being dropped in this same batch
			// (e.g. a policy whose USING clause references a column X is
			// about to change type) must still be dropped before X is
			// altered underneath it.
			for _, dependent := range oldCatalog.ReverseDeps[id] {
				if j, ok := indexOfDrop(steps, dependent); ok {
					addEdge(j, i)
				}
			}
			for _, dep := range newCatalog.ForwardDeps[id] {
				if j, ok := indexOfCreate(steps, dep); ok {
					addEdge(j, i)
				}
			}
		default:
			// A Create/Alter for X must follow Creates for everything X
			// depends on in the new catalog (forward_deps_new[X]).
			for _, dep := range newCatalog.ForwardDeps[id] {
				if j, ok := indexOfCreate(steps, dep); ok {
					addEdge(j, i)
				}
			}
		}

		for _, dep := range s.ExtraDeps() {
			if j, ok := indexOfCreate(steps, dep); ok {
				addEdge(j, i)
			}
		}
	}

	return kahn(steps, edges)
}

func indexOfDrop(steps []step.Step, id objectid.ID) (int, bool) {
	for i, s := range steps {
		if s.ID() == id && s.Kind() == step.Drop {
			return i, true
		}
	}
	return 0, false
}

func indexOfCreate(steps []step.Step, id objectid.ID) (int, bool) {
	for i, s := range steps {
		if s.ID() == id && s.Kind() != step.Drop {
			return i, true
		}
	}
	return 0, false
}

// kahn runs Kahn's algorithm with a stable tiebreak: among all nodes
// currently eligible (in-degree zero), always pick the one with the
// smallest tiebreak key, so the result is reproducible across runs given
// the same two catalogs.
func kahn(steps []step.Step, edges []edge) ([]step.Step, error) {
	n := len(steps)
	inDegree := make([]int, n)
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
		inDegree[e.To]++
	}

	keys := make([]string, n)
	for i, s := range steps {
		keys[i] = tiebreakKey(s)
	}

	var ready []int
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return keys[ready[i]] < keys[ready[j]] })

	out := make([]step.Step, 0, n)
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return keys[ready[i]] < keys[ready[j]] })
		idx := ready[0]
		ready = ready[1:]
		out = append(out, steps[idx])

		for _, next := range adj[idx] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(out) != n {
		var involved []objectid.ID
		for i, s := range steps {
			if inDegree[i] > 0 {
				involved = append(involved, s.ID())
			}
		}
		return nil, &CycleError{Involved: involved}
	}

	return out, nil
}
