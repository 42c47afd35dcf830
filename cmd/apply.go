package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/color"
	"github.com/gdpotter/pgmt/internal/config"
	"github.com/gdpotter/pgmt/internal/ignore"
	"github.com/gdpotter/pgmt/internal/lock"
	"github.com/gdpotter/pgmt/internal/logger"
	"github.com/gdpotter/pgmt/internal/orchestrate"
	"github.com/gdpotter/pgmt/internal/step"
	"github.com/gdpotter/pgmt/internal/watch"
	"github.com/spf13/cobra"
)

var (
	applyModeFlag    string
	applyDryRun      bool
	applyVersion     uint64
	applyDescription string
	applyWatch       bool
	applyShadowURL   string
	applyNoColor     bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile the database with the authored schema files",
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyModeFlag, "mode", "interactive", "Execution mode: dry-run, force, interactive, require-approval, safe-only, auto-safe")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Preview the plan without applying it (shorthand for --mode=dry-run)")
	applyCmd.Flags().Uint64Var(&applyVersion, "version", 0, "Version number recorded in the migration tracking table")
	applyCmd.Flags().StringVar(&applyDescription, "description", "", "Description recorded in the migration tracking table")
	applyCmd.Flags().BoolVar(&applyWatch, "watch", false, "Re-apply automatically whenever a .sql file under the schema directory changes")
	applyCmd.Flags().StringVar(&applyShadowURL, "shadow-url", "", "Connection string for an existing shadow database; a disposable one is started when omitted")
	applyCmd.Flags().BoolVar(&applyNoColor, "no-color", false, "Disable colored plan output")
}

func parseExecutionMode(name string) (orchestrate.ExecutionMode, error) {
	switch name {
	case "dry-run":
		return orchestrate.DryRun, nil
	case "force":
		return orchestrate.Force, nil
	case "interactive":
		return orchestrate.Interactive, nil
	case "require-approval":
		return orchestrate.RequireApproval, nil
	case "safe-only":
		return orchestrate.SafeOnly, nil
	case "auto-safe":
		return orchestrate.AutoSafe, nil
	default:
		return 0, fmt.Errorf("unknown --mode %q", name)
	}
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Default()

	mode, err := parseExecutionMode(applyModeFlag)
	if err != nil {
		return err
	}
	if applyDryRun {
		mode = orchestrate.DryRun
	}

	l := lock.New(".")
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()

	devDB, err := openDB(ctx, cfg.Dev)
	if err != nil {
		return err
	}
	defer devDB.Close()

	ignoreCfg, err := ignore.Load(ignore.FileName)
	if err != nil {
		return fmt.Errorf("load %s: %w", ignore.FileName, err)
	}
	var objectFilter func(*catalog.Catalog) *catalog.Catalog
	if ignoreCfg != nil {
		objectFilter = ignoreCfg.Apply
	}

	runOnce := func() error {
		shadowSrc, err := openShadow(ctx, cfg.Dev, cfg.Shadow, cfg.ShadowExplicit, applyShadowURL)
		if err != nil {
			return err
		}
		defer shadowSrc.Close()

		result, err := orchestrate.Apply(ctx, orchestrate.ApplyInput{
			DevDB:               devDB,
			ShadowDB:            shadowSrc.db,
			TargetSchema:        cfg.TargetSchema,
			SchemaDir:           cfg.Directories.Schema,
			Mode:                mode,
			TrackingSchema:      cfg.Migration.TrackingSchema,
			TrackingTable:       cfg.Migration.TrackingTable,
			TrackingVersion:     applyVersion,
			TrackingDescription: applyDescription,
			Confirm:             confirmDestructivePlan,
			ObjectFilter:        objectFilter,
		})
		if err != nil {
			return err
		}
		reportApplyResult(ctx, result)
		if result.Outcome == orchestrate.DestructiveRequired {
			os.Exit(1)
		}
		return nil
	}

	if !applyWatch {
		return runOnce()
	}
	return watchAndApply(ctx, cfg, runOnce)
}

func watchAndApply(ctx context.Context, cfg *config.Config, runOnce func() error) error {
	w, err := watch.New(watch.DefaultDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	log := logger.Get()
	return w.Watch(ctx, cfg.Directories.Schema, func(path string) error {
		log.InfoContext(ctx, "schema file changed, re-applying", "path", path)
		if err := runOnce(); err != nil {
			log.ErrorContext(ctx, "apply failed", "error", err)
		}
		return nil
	})
}

func reportApplyResult(ctx context.Context, result *orchestrate.ApplyResult) {
	log := logger.Get()
	log.InfoContext(ctx, "apply finished", "outcome", result.Outcome.String(), "steps", len(result.Steps))

	c := color.New(!applyNoColor)
	for _, rendered := range result.Rendered {
		if rendered.Safety == step.Destructive {
			fmt.Println(c.Destroy(rendered.Text))
		} else {
			fmt.Println(c.Add(rendered.Text))
		}
	}
}

// confirmDestructivePlan prints the destructive plan, highlighted the way
// internal/color's Terraform-style plan output does, and asks for a y/N
// answer on stdin, used by Interactive/AutoSafe modes.
func confirmDestructivePlan(rendered []step.RenderedSql) (bool, error) {
	c := color.New(!applyNoColor)
	fmt.Fprintln(os.Stderr, c.Bold("The following plan contains destructive statements:"))
	for _, r := range rendered {
		if r.Safety == step.Destructive {
			fmt.Fprintln(os.Stderr, "  "+c.Destroy(r.Text))
		}
	}
	fmt.Fprint(os.Stderr, "Apply anyway? [y/N] ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return line == "y\n" || line == "Y\n" || line == "yes\n", nil
}
