package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffFunctions: CREATE OR REPLACE FUNCTION handles both fresh creation and
// in-place replacement as long as the argument signature (part of the
// identity) is unchanged, which it always is here since identity includes
// Arguments.
func diffFunctions(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Functions, func(f *catalog.Function) objectid.ID { return f.ID() })
	newByID := indexByID(new.Functions, func(f *catalog.Function) objectid.ID { return f.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.FunctionCreateOrReplace{Function: n, IsNew: true})
			continue
		}
		if o.Definition != n.Definition {
			out = append(out, step.FunctionCreateOrReplace{Function: n})
			continue
		}
		out = append(out, commentDiff(catalog.FunctionComment{Schema: n.Schema, Name: n.Name, Arguments: n.Arguments}, o.Comment, n.Comment)...)
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.FunctionDrop{Schema: o.Schema, Name: o.Name, Arguments: o.Arguments})
		}
	}
	return out
}

// diffAggregates: PostgreSQL has no CREATE OR REPLACE AGGREGATE, so any
// definition change is DROP+CREATE.
func diffAggregates(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Aggregates, func(a *catalog.Aggregate) objectid.ID { return a.ID() })
	newByID := indexByID(new.Aggregates, func(a *catalog.Aggregate) objectid.ID { return a.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.AggregateCreate{Aggregate: n})
			continue
		}
		if !aggregateEqual(o, n) {
			out = append(out, step.AggregateDrop{Schema: o.Schema, Name: o.Name, Arguments: o.Arguments})
			out = append(out, step.AggregateCreate{Aggregate: n})
			continue
		}
		out = append(out, commentDiff(catalog.AggregateComment{Schema: n.Schema, Name: n.Name, Arguments: n.Arguments}, o.Comment, n.Comment)...)
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.AggregateDrop{Schema: o.Schema, Name: o.Name, Arguments: o.Arguments})
		}
	}
	return out
}

func aggregateEqual(o, n *catalog.Aggregate) bool {
	return o.TransitionFunction == n.TransitionFunction &&
		o.StateType == n.StateType &&
		o.FinalFunction == n.FinalFunction &&
		o.InitialCondition == n.InitialCondition
}
