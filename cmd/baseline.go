package cmd

import (
	"fmt"

	"github.com/gdpotter/pgmt/internal/config"
	"github.com/gdpotter/pgmt/internal/ignore"
	"github.com/gdpotter/pgmt/internal/logger"
	"github.com/gdpotter/pgmt/internal/migrations"
	"github.com/gdpotter/pgmt/internal/orchestrate"
	"github.com/gdpotter/pgmt/internal/reflect"
	"github.com/spf13/cobra"
)

var (
	baselineVersion     uint64
	baselineDescription string
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Snapshot the current database schema as a baseline file",
	RunE:  runBaseline,
}

func init() {
	baselineCmd.Flags().Uint64Var(&baselineVersion, "version", 1, "Baseline version number")
	baselineCmd.Flags().StringVar(&baselineDescription, "description", "", "Human-readable baseline description")
}

func runBaseline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Default()
	log := logger.Get()

	devDB, err := openDB(ctx, cfg.Dev)
	if err != nil {
		return err
	}
	defer devDB.Close()

	current, err := reflect.New(devDB, cfg.TargetSchema).Reflect(ctx)
	if err != nil {
		return fmt.Errorf("reflect development database: %w", err)
	}

	current = migrations.FilterCatalog(current, cfg.Migration.TrackingSchema, cfg.Migration.TrackingTable)

	ignoreCfg, err := ignore.Load(ignore.FileName)
	if err != nil {
		return fmt.Errorf("load %s: %w", ignore.FileName, err)
	}
	current = ignoreCfg.Apply(current)

	result, err := orchestrate.CreateBaseline(ctx, orchestrate.BaselineRequest{
		Catalog:      current,
		Version:      baselineVersion,
		Description:  baselineDescription,
		BaselinesDir: cfg.Directories.Baselines,
	})
	if err != nil {
		return fmt.Errorf("create baseline: %w", err)
	}

	log.InfoContext(ctx, "wrote baseline", "path", result.Path, "objects", result.ObjectCount)
	return nil
}
