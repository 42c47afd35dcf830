// Package diff computes the set of migration steps needed to take a
// catalog from its old state to its new state, one object kind at a time.
// Each per-kind function is a pure function over two
// catalog slices; DiffAll dispatches across every kind and concatenates the
// results. Ordering among the returned steps is NOT this package's concern
// — that is internal/cascade and internal/order's job.
package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// DiffAll compares every object kind between old and new and returns the
// full, unordered set of steps required to migrate old to new.
func DiffAll(old, new *catalog.Catalog) []step.Step {
	var out []step.Step
	out = append(out, diffSchemas(old, new)...)
	out = append(out, diffExtensions(old, new)...)
	out = append(out, diffTables(old, new)...)
	out = append(out, diffViews(old, new)...)
	out = append(out, diffTypes(old, new)...)
	out = append(out, diffDomains(old, new)...)
	out = append(out, diffSequences(old, new)...)
	out = append(out, diffFunctions(old, new)...)
	out = append(out, diffAggregates(old, new)...)
	out = append(out, diffIndexes(old, new)...)
	out = append(out, diffConstraints(old, new)...)
	out = append(out, diffTriggers(old, new)...)
	out = append(out, diffPolicies(old, new)...)
	out = append(out, diffGrants(old, new)...)
	return out
}

// commentDiff is the one path every kind routes through for comment
// changes, via the generic CommentTarget design catalog.CommentTarget defines.
func commentDiff(target catalog.CommentTarget, oldComment, newComment string) []step.Step {
	if oldComment == newComment {
		return nil
	}
	if newComment == "" {
		return []step.Step{step.CommentClear{Target: target}}
	}
	return []step.Step{step.CommentSet{Target: target, Comment: newComment}}
}

func indexByID[T any](items []T, id func(T) objectid.ID) map[objectid.ID]T {
	out := make(map[objectid.ID]T, len(items))
	for _, item := range items {
		out[id(item)] = item
	}
	return out
}
