package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gdpotter/pgmt/internal/logger"
	"github.com/gdpotter/pgmt/internal/version"
	"github.com/spf13/cobra"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "pgmt",
	Short: "Declarative PostgreSQL schema management",
	Long: fmt.Sprintf(`pgmt manages a PostgreSQL database's schema from a directory of
declarative .sql files: it reflects the live schema, loads the authored
files into a disposable shadow database, diffs the two, and renders or
applies the migration steps needed to reconcile them.

Version: %s@%s %s %s

Use "pgmt [command] --help" for more information about a command.`,
		version.Version(), version.GetGitCommit(), version.Platform(), version.GetBuildDate()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(applyCmd)
	RootCmd.AddCommand(baselineCmd)
	RootCmd.AddCommand(validateCmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
