package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/gdpotter/pgmt/internal/config"
	"github.com/gdpotter/pgmt/internal/ignore"
	"github.com/gdpotter/pgmt/internal/loader"
	"github.com/gdpotter/pgmt/internal/migrations"
	"github.com/gdpotter/pgmt/internal/orchestrate"
	"github.com/gdpotter/pgmt/internal/reflect"
	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the live database against the schema files and applied migrations",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Emit machine-readable JSON")
}

var migrationFilenamePattern = regexp.MustCompile(`^V(\d+)_`)

// discoverMigrationVersions lists the version numbers of every migration
// file under dir, parsed from the V<version>_<description>.sql filename
// convention generate-migration writes.
func discoverMigrationVersions(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var versions []uint64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFilenamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Default()

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

	actual, err := reflect.New(devDB, cfg.TargetSchema).Reflect(ctx)
	if err != nil {
		return fmt.Errorf("reflect development database: %w", err)
	}

	expected, err := loader.Load(ctx, shadowSrc.db, cfg.TargetSchema, loader.Config{SchemaDir: cfg.Directories.Schema})
	if err != nil {
		return fmt.Errorf("load schema files: %w", err)
	}

	trackingSchema, trackingTable := cfg.Migration.TrackingSchema, cfg.Migration.TrackingTable
	actual = migrations.FilterCatalog(actual, trackingSchema, trackingTable)
	expected = migrations.FilterCatalog(expected, trackingSchema, trackingTable)

	ignoreCfg, err := ignore.Load(ignore.FileName)
	if err != nil {
		return fmt.Errorf("load %s: %w", ignore.FileName, err)
	}
	actual, expected = ignoreCfg.Apply(actual), ignoreCfg.Apply(expected)

	applied, err := appliedVersionsOrEmpty(ctx, devDB, trackingSchema, trackingTable)
	if err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}

	allVersions, err := discoverMigrationVersions(cfg.Directories.Migrations)
	if err != nil {
		return err
	}
	unapplied := unappliedVersions(allVersions, applied)

	result := orchestrate.Validate(orchestrate.ValidationInput{
		ExpectedCatalog:     expected,
		ActualCatalog:       actual,
		AppliedMigrations:   applied,
		UnappliedMigrations: unapplied,
	})

	if validateJSON {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal validation result: %w", err)
		}
		fmt.Println(string(encoded))
	} else {
		fmt.Println(result.Message)
		for _, conflict := range result.Conflicts {
			fmt.Printf("  - %s\n", conflict.Details)
		}
	}

	if result.ExitCode != 0 {
		os.Exit(result.ExitCode)
	}
	return nil
}

// appliedVersionsOrEmpty reports the tracking table's recorded versions, or
// an empty slice when the table doesn't exist yet (a project that has
// never run apply should still be able to run validate read-only, rather
// than fail on a missing table).
func appliedVersionsOrEmpty(ctx context.Context, db *sql.DB, schema, table string) ([]uint64, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`,
		schema, table,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check migration tracking table existence: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return migrations.AppliedVersions(ctx, db, schema, table)
}

func unappliedVersions(all, applied []uint64) []uint64 {
	appliedSet := make(map[uint64]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}
	var unapplied []uint64
	for _, v := range all {
		if !appliedSet[v] {
			unapplied = append(unapplied, v)
		}
	}
	return unapplied
}
