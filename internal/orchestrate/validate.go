package orchestrate

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/diff"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// BaselineInfo summarizes the baseline a validation ran against, embedded
// verbatim into ValidationResult.Baseline.
type BaselineInfo struct {
	Version     uint64 `json:"version"`
	ObjectCount int    `json:"object_count"`
	Description string `json:"description"`
}

// ConflictInfo describes one object whose actual state disagrees with the
// state expected from baseline + applied migrations.
type ConflictInfo struct {
	ObjectType   string `json:"object_type"`
	ObjectName   string `json:"object_name"`
	ConflictType string `json:"conflict_type"`
	LikelySource string `json:"likely_source"`
	Details      string `json:"details"`
}

// SuggestedAction is one remediation a validate caller can surface,
// mirroring original_source/src/validation_output.rs's SuggestedAction.
type SuggestedAction struct {
	Action      string `json:"action"`
	Target      string `json:"target,omitempty"`
	Command     string `json:"command,omitempty"`
	Description string `json:"description"`
}

// ValidationInput is pure data: the catalog expected from baseline +
// applied migrations, the catalog actually reflected from the live
// database, and the migration bookkeeping needed for the report.
type ValidationInput struct {
	ExpectedCatalog    *catalog.Catalog
	ActualCatalog      *catalog.Catalog
	AppliedMigrations  []uint64
	UnappliedMigrations []uint64
	Baseline           *BaselineInfo
}

// ValidationResult is the validate orchestrator's pure output, rendered to
// JSON by callers using these exact field names.
type ValidationResult struct {
	Status              string            `json:"status"`
	ExitCode            int               `json:"exit_code"`
	Baseline            *BaselineInfo     `json:"baseline,omitempty"`
	AppliedMigrations   []uint64          `json:"applied_migrations"`
	UnappliedMigrations []uint64          `json:"unapplied_migrations"`
	Conflicts           []ConflictInfo    `json:"conflicts"`
	SuggestedActions    []SuggestedAction `json:"suggested_actions"`
	Message             string            `json:"message"`
}

// Validate compares the catalog expected from baseline + applied migrations
// against what is actually present in the live database and classifies any
// divergence into conflicts and suggested remediations.
// Grounded on original_source/src/validation_output.rs's
// format_validation_output/create_json_output.
func Validate(input ValidationInput) *ValidationResult {
	steps := diff.DiffAll(input.ExpectedCatalog, input.ActualCatalog)

	conflicts := classifyConflicts(steps)

	status := "success"
	exitCode := 0
	message := "Migration consistency validation passed"
	if len(conflicts) > 0 {
		status = "conflict"
		exitCode = 1
		message = "Schema files contain changes not reflected in applied migrations"
	}

	return &ValidationResult{
		Status:               status,
		ExitCode:             exitCode,
		Baseline:             input.Baseline,
		AppliedMigrations:    input.AppliedMigrations,
		UnappliedMigrations:  input.UnappliedMigrations,
		Conflicts:            conflicts,
		SuggestedActions:     suggestedActionsFor(conflicts),
		Message:              message,
	}
}

// classifyConflicts turns the expected-vs-actual diff into ConflictInfo
// records. A Create step means the actual database has an object the
// expected state doesn't (likely an unapplied migration); a Drop step means
// the expected state has an object actual is missing (likely a manual
// change); an Alter step means both sides have the object but its
// definition disagrees. If the diff is non-empty but every step turns out
// to be a Relationship step (so nothing above would otherwise be
// reported), a single generic schema_mismatch conflict is emitted instead
// of silently reporting success.
func classifyConflicts(steps []step.Step) []ConflictInfo {
	var conflicts []ConflictInfo
	for _, s := range steps {
		if s.Relationship() {
			// Relationship steps (FK constraints, sequence ownership) ride
			// along with their owning object's conflict; skip the
			// duplicate entry.
			continue
		}
		conflicts = append(conflicts, classifyStepConflict(s))
	}
	if len(conflicts) == 0 && len(steps) > 0 {
		conflicts = append(conflicts, ConflictInfo{
			ObjectType:   "unknown",
			ObjectName:   "detected from diff",
			ConflictType: "schema_mismatch",
			LikelySource: "unapplied_migration",
			Details:      "Schema files contain changes not reflected in applied migrations",
		})
	}
	return conflicts
}

func classifyStepConflict(s step.Step) ConflictInfo {
	id := s.ID()
	objectType := objectTypeOf(id)
	objectName := objectNameOf(id)

	switch s.Kind() {
	case step.Create:
		return ConflictInfo{
			ObjectType:   objectType,
			ObjectName:   objectName,
			ConflictType: "unexpected_existence",
			LikelySource: "unapplied_migration",
			Details:      objectType + " '" + objectName + "' exists in current schema but not in expected state",
		}
	case step.Drop:
		return ConflictInfo{
			ObjectType:   objectType,
			ObjectName:   objectName,
			ConflictType: "missing_object",
			LikelySource: "manual_change",
			Details:      objectType + " '" + objectName + "' expected in applied migrations but missing from current schema",
		}
	default: // step.Alter
		return ConflictInfo{
			ObjectType:   objectType,
			ObjectName:   objectName,
			ConflictType: "modified_definition",
			LikelySource: "unapplied_migration",
			Details:      objectType + " '" + objectName + "' has a definition that differs from the expected state",
		}
	}
}

// objectTypeOf reports the conflict's object_type using the same vocabulary
// as objectid.Kind's String, except Comment unwraps to its inner object.
func objectTypeOf(id objectid.ID) string {
	if id.Kind == objectid.KindComment && id.Inner != nil {
		return objectTypeOf(*id.Inner)
	}
	return id.Kind.String()
}

// objectNameOf renders a conflict's object_name without the kind prefix
// objectid.ID.String carries, e.g. "public.users" rather than "table
// public.users".
func objectNameOf(id objectid.ID) string {
	if id.Kind == objectid.KindComment && id.Inner != nil {
		return objectNameOf(*id.Inner)
	}
	switch id.Kind {
	case objectid.KindSchema, objectid.KindExtension:
		return id.Name
	case objectid.KindGrant:
		return id.GrantKey
	case objectid.KindConstraint, objectid.KindTrigger, objectid.KindPolicy:
		return id.Schema + "." + id.Table + "." + id.Name
	case objectid.KindColumn:
		return id.Schema + "." + id.Table + "." + id.Column
	case objectid.KindFunction, objectid.KindAggregate:
		if id.Arguments == "" {
			return id.Schema + "." + id.Name + "()"
		}
		return id.Schema + "." + id.Name + "(" + id.Arguments + ")"
	default:
		return id.Schema + "." + id.Name
	}
}

// suggestedActionsFor mirrors generate_suggested_actions: unexpected
// existence points at rebasing local migrations against the latest schema,
// missing objects point at applying pending migrations, and a verbose/
// update pair is always appended once any conflict exists.
func suggestedActionsFor(conflicts []ConflictInfo) []SuggestedAction {
	if len(conflicts) == 0 {
		return nil
	}

	var hasUnexpectedExistence, hasMissingObject bool
	for _, c := range conflicts {
		switch c.ConflictType {
		case "unexpected_existence":
			hasUnexpectedExistence = true
		case "missing_object":
			hasMissingObject = true
		}
	}

	var actions []SuggestedAction
	if hasUnexpectedExistence {
		actions = append(actions,
			SuggestedAction{
				Action:      "pull_and_rebase",
				Command:     "git pull origin main && pgmt migrate validate",
				Description: "Pull latest changes from main branch and check for conflicts",
			},
			SuggestedAction{
				Action:      "rebase_migration",
				Command:     "pgmt migrate rebase",
				Description: "Rebase local migrations against current main branch state",
			},
		)
	}

	if hasMissingObject {
		actions = append(actions,
			SuggestedAction{
				Action:      "apply_migrations",
				Command:     "pgmt migrate apply",
				Description: "Apply any pending migrations to bring schema up to date",
			},
			SuggestedAction{
				Action:      "check_manual_changes",
				Description: "Check if objects were manually deleted from database",
			},
		)
	}

	actions = append(actions,
		SuggestedAction{
			Action:      "validate_verbose",
			Command:     "pgmt migrate validate --verbose",
			Description: "Get detailed information about schema differences",
		},
		SuggestedAction{
			Action:      "update_migration",
			Command:     "pgmt migrate update",
			Description: "Regenerate latest migration from current schema state",
		},
	)

	return actions
}
