// Package render flattens an ordered step list into the final sequence of
// RenderedSql statements, and joins them into migration/baseline file text.
// Each step's own Render method does the per-kind SQL
// generation (internal/step); this package only concerns itself with the
// shared concatenation, matching the teacher's render_migration_steps-style
// driver in internal/plan/plan.go.
package render

import (
	"strings"

	"github.com/gdpotter/pgmt/internal/step"
)

// Flatten walks an ordered step list and returns every RenderedSql in
// order, one step after another.
func Flatten(steps []step.Step) []step.RenderedSql {
	var out []step.RenderedSql
	for _, s := range steps {
		out = append(out, s.Render()...)
	}
	return out
}

// JoinSQL renders a statement list into the raw file text used for
// migrations and baselines: newline-separated statements, no preamble.
func JoinSQL(statements []step.RenderedSql) string {
	texts := make([]string, len(statements))
	for i, s := range statements {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n\n")
}

// HasDestructive reports whether any statement in the list is classified
// Destructive, used by the apply orchestrator's RequireApproval/AutoSafe/
// Interactive modes.
func HasDestructive(statements []step.RenderedSql) bool {
	for _, s := range statements {
		if s.Safety == step.Destructive {
			return true
		}
	}
	return false
}

// SplitBySafety partitions statements into safe and destructive groups,
// preserving relative order within each group.
func SplitBySafety(statements []step.RenderedSql) (safe, destructive []step.RenderedSql) {
	for _, s := range statements {
		if s.Safety == step.Destructive {
			destructive = append(destructive, s)
		} else {
			safe = append(safe, s)
		}
	}
	return safe, destructive
}
