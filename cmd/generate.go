package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdpotter/pgmt/internal/config"
	"github.com/gdpotter/pgmt/internal/ignore"
	"github.com/gdpotter/pgmt/internal/loader"
	"github.com/gdpotter/pgmt/internal/logger"
	"github.com/gdpotter/pgmt/internal/migrations"
	"github.com/gdpotter/pgmt/internal/orchestrate"
	"github.com/gdpotter/pgmt/internal/reflect"
	"github.com/spf13/cobra"
)

var (
	generateVersion     uint64
	generateDescription string
)

var generateCmd = &cobra.Command{
	Use:   "generate-migration",
	Short: "Generate a migration file from the diff between the database and schema files",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().Uint64Var(&generateVersion, "version", 1, "Migration version number")
	generateCmd.Flags().StringVar(&generateDescription, "description", "", "Human-readable migration description")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Default()
	log := logger.Get()

	devDB, err := openDB(ctx, cfg.Dev)
	if err != nil {
		return err
	}
	defer devDB.Close()

	shadowSrc, err := openShadow(ctx, cfg.Dev, cfg.Shadow, cfg.ShadowExplicit, "")
	if err != nil {
		return err
	}
	defer shadowSrc.Close()

	old, err := reflect.New(devDB, cfg.TargetSchema).Reflect(ctx)
	if err != nil {
		return fmt.Errorf("reflect development database: %w", err)
	}

	newCatalog, err := loader.Load(ctx, shadowSrc.db, cfg.TargetSchema, loader.Config{SchemaDir: cfg.Directories.Schema})
	if err != nil {
		return fmt.Errorf("load schema files: %w", err)
	}

	old = migrations.FilterCatalog(old, cfg.Migration.TrackingSchema, cfg.Migration.TrackingTable)
	newCatalog = migrations.FilterCatalog(newCatalog, cfg.Migration.TrackingSchema, cfg.Migration.TrackingTable)

	ignoreCfg, err := ignore.Load(ignore.FileName)
	if err != nil {
		return fmt.Errorf("load %s: %w", ignore.FileName, err)
	}
	old, newCatalog = ignoreCfg.Apply(old), ignoreCfg.Apply(newCatalog)

	generation, err := orchestrate.GenerateMigration(orchestrate.GenerationInput{
		OldCatalog:  old,
		NewCatalog:  newCatalog,
		Description: generateDescription,
		Version:     generateVersion,
	})
	if err != nil {
		return fmt.Errorf("generate migration: %w", err)
	}

	if !generation.HasChanges {
		log.InfoContext(ctx, "no schema changes detected")
		return nil
	}

	if err := os.MkdirAll(cfg.Directories.Migrations, 0o755); err != nil {
		return fmt.Errorf("create migrations directory: %w", err)
	}

	path := filepath.Join(cfg.Directories.Migrations, generation.MigrationFilename)
	if err := os.WriteFile(path, []byte(generation.MigrationSQL), 0o644); err != nil {
		return fmt.Errorf("write migration file: %w", err)
	}

	log.InfoContext(ctx, "wrote migration", "path", path, "steps", len(generation.Steps))
	return nil
}
