package orchestrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gdpotter/pgmt/internal/cascade"
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/diff"
	"github.com/gdpotter/pgmt/internal/loader"
	"github.com/gdpotter/pgmt/internal/logger"
	"github.com/gdpotter/pgmt/internal/migrations"
	"github.com/gdpotter/pgmt/internal/order"
	"github.com/gdpotter/pgmt/internal/postgres"
	"github.com/gdpotter/pgmt/internal/reflect"
	"github.com/gdpotter/pgmt/internal/render"
	"github.com/gdpotter/pgmt/internal/step"
)

// ExecutionMode controls how the apply orchestrator treats destructive
// steps, mirroring original_source/src/commands/apply/mod.rs's
// ExecutionMode.
type ExecutionMode int

const (
	// DryRun previews the plan without applying anything.
	DryRun ExecutionMode = iota
	// Force applies every step regardless of safety.
	Force
	// Interactive auto-applies when every step is safe, and otherwise
	// asks the caller's Confirm callback before applying anything
	// destructive.
	Interactive
	// RequireApproval fails outright if any destructive step is present.
	RequireApproval
	// SafeOnly applies only the safe steps and skips destructive ones.
	SafeOnly
	// AutoSafe behaves like Force when every step is safe, and otherwise
	// falls back to Interactive's confirmation behavior.
	AutoSafe
)

// ApplyOutcome reports what happened, used for exit-code determination by
// the CLI layer.
type ApplyOutcome int

const (
	NoChanges ApplyOutcome = iota
	Applied
	Skipped
	DestructiveRequired
	Cancelled
)

func (o ApplyOutcome) String() string {
	switch o {
	case NoChanges:
		return "no_changes"
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case DestructiveRequired:
		return "destructive_required"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ApplyInput is everything the apply orchestrator needs to run one cycle
// of Reflect-dev -> Shadow-load-files -> Diff -> Cascade -> Order ->
// Execute-on-dev.
type ApplyInput struct {
	DevDB        *sql.DB
	ShadowDB     *sql.DB
	TargetSchema string
	SchemaDir    string
	Mode         ExecutionMode

	// TrackingSchema/TrackingTable name the migration-tracking table.
	// It is excluded from the diff and, on a successful
	// apply, gets a new row recording TrackingVersion/TrackingDescription.
	// A zero TrackingTable disables tracking entirely (useful for tests
	// that diff two catalogs with no tracking table present at all).
	TrackingSchema      string
	TrackingTable       string
	TrackingVersion     uint64
	TrackingDescription string

	// Confirm is consulted by Interactive/AutoSafe before applying any
	// destructive statement; returning false yields a Cancelled outcome.
	// Callers that never need to prompt (tests, Force/SafeOnly-only
	// integrations) may leave this nil — it is never consulted outside
	// Interactive/AutoSafe's destructive branch.
	Confirm func(rendered []step.RenderedSql) (bool, error)

	// ObjectFilter additionally excludes objects named by a project's
	// .pgmtignore file (the user-configurable half internal/ignore.Config.Apply
	// implements). Applied to both the
	// reflected and loaded catalogs after the tracking-table exclusion.
	// Left nil when no ignore file is present.
	ObjectFilter func(*catalog.Catalog) *catalog.Catalog
}

// ApplyResult is what one apply cycle produced: the outcome, the ordered
// steps it computed, and the catalog it expected the dev database to
// match afterward (used by a caller that wants to reflect-and-compare for
// divergence reporting, the final "report divergence" stage).
type ApplyResult struct {
	Outcome         ApplyOutcome
	Steps           []step.Step
	Rendered        []step.RenderedSql
	ExpectedCatalog *catalog.Catalog
}

// Apply runs one full reflect/load/diff/cascade/order/execute cycle
// against the dev database.
func Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	log := logger.Get()

	log.InfoContext(ctx, "reflecting development database")
	old, err := reflect.New(input.DevDB, input.TargetSchema).Reflect(ctx)
	if err != nil {
		return nil, fmt.Errorf("reflect development database: %w", err)
	}

	log.InfoContext(ctx, "loading schema files into shadow database")
	newCatalog, err := loader.Load(ctx, input.ShadowDB, input.TargetSchema, loader.Config{SchemaDir: input.SchemaDir})
	if err != nil {
		return nil, fmt.Errorf("load schema files: %w", err)
	}

	if input.TrackingTable != "" {
		old = migrations.FilterCatalog(old, input.TrackingSchema, input.TrackingTable)
		newCatalog = migrations.FilterCatalog(newCatalog, input.TrackingSchema, input.TrackingTable)
	}
	if input.ObjectFilter != nil {
		old = input.ObjectFilter(old)
		newCatalog = input.ObjectFilter(newCatalog)
	}

	log.InfoContext(ctx, "computing schema differences")
	steps := diff.DiffAll(old, newCatalog)
	expanded := cascade.Expand(steps, old, newCatalog)
	ordered, err := order.Order(expanded, old, newCatalog)
	if err != nil {
		return nil, fmt.Errorf("order migration steps: %w", err)
	}

	if len(ordered) == 0 {
		log.InfoContext(ctx, "no schema changes detected")
		return &ApplyResult{Outcome: NoChanges, ExpectedCatalog: newCatalog}, nil
	}

	rendered := render.Flatten(ordered)
	log.InfoContext(ctx, "computed migration plan", "steps", len(ordered), "statements", len(rendered))

	result, err := executePlan(ctx, input, ordered, rendered, newCatalog)
	if err != nil {
		return result, err
	}

	if result.Outcome == Applied && input.Mode != DryRun && input.TrackingTable != "" {
		if err := recordApplied(ctx, input); err != nil {
			return result, err
		}
	}

	return result, nil
}

// recordApplied ensures the tracking table exists and appends a row marking
// input.TrackingVersion as applied. Called only once a plan
// has actually been executed against input.DevDB.
func recordApplied(ctx context.Context, input ApplyInput) error {
	if err := migrations.EnsureTable(ctx, input.DevDB, input.TrackingSchema, input.TrackingTable); err != nil {
		return err
	}
	return migrations.Record(ctx, input.DevDB, input.TrackingSchema, input.TrackingTable, input.TrackingVersion, input.TrackingDescription)
}

func executePlan(ctx context.Context, input ApplyInput, ordered []step.Step, rendered []step.RenderedSql, expected *catalog.Catalog) (*ApplyResult, error) {
	exec := postgres.New(input.DevDB, postgres.DefaultConfig())

	result := &ApplyResult{Steps: ordered, Rendered: rendered, ExpectedCatalog: expected}

	switch input.Mode {
	case DryRun:
		result.Outcome = Applied
		return result, nil

	case Force:
		if err := exec.ExecuteSteps(ctx, rendered); err != nil {
			return nil, err
		}
		result.Outcome = Applied
		return result, nil

	case SafeOnly:
		safe, destructive := render.SplitBySafety(rendered)
		if err := exec.ExecuteSteps(ctx, safe); err != nil {
			return nil, err
		}
		if len(destructive) > 0 {
			result.Outcome = Skipped
		} else {
			result.Outcome = Applied
		}
		return result, nil

	case RequireApproval:
		if render.HasDestructive(rendered) {
			result.Outcome = DestructiveRequired
			return result, fmt.Errorf("destructive operations present and RequireApproval mode refuses to apply them without --force")
		}
		if err := exec.ExecuteSteps(ctx, rendered); err != nil {
			return nil, err
		}
		result.Outcome = Applied
		return result, nil

	case AutoSafe:
		if !render.HasDestructive(rendered) {
			if err := exec.ExecuteSteps(ctx, rendered); err != nil {
				return nil, err
			}
			result.Outcome = Applied
			return result, nil
		}
		return confirmThenExecute(ctx, input, exec, rendered, result)

	case Interactive:
		if !render.HasDestructive(rendered) {
			if err := exec.ExecuteSteps(ctx, rendered); err != nil {
				return nil, err
			}
			result.Outcome = Applied
			return result, nil
		}
		return confirmThenExecute(ctx, input, exec, rendered, result)

	default:
		return nil, fmt.Errorf("unknown execution mode %d", input.Mode)
	}
}

func confirmThenExecute(ctx context.Context, input ApplyInput, exec *postgres.Executor, rendered []step.RenderedSql, result *ApplyResult) (*ApplyResult, error) {
	if input.Confirm == nil {
		result.Outcome = DestructiveRequired
		return result, fmt.Errorf("destructive operations present and no confirmation callback was provided")
	}

	approved, err := input.Confirm(rendered)
	if err != nil {
		return nil, fmt.Errorf("confirm destructive plan: %w", err)
	}
	if !approved {
		result.Outcome = Cancelled
		return result, nil
	}

	if err := exec.ExecuteSteps(ctx, rendered); err != nil {
		return nil, err
	}
	result.Outcome = Applied
	return result, nil
}
