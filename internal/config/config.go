// Package config assembles database connection parameters and project
// directory layout into the Config the orchestrators need, mirroring
// cmd/util/connection.go's DatabaseConfig/buildDSN pattern and
// cmd/util/env.go's environment-variable fallback idiom.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds the parameters needed to open a connection,
// mirroring cmd/util.ConnectionConfig.
type DatabaseConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	ApplicationName string
}

// DSN renders the libpq-style key=value connection string buildDSN
// produces, consumed by sql.Open("pgx", dsn) via pgx/v5/stdlib.
func (d DatabaseConfig) DSN() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("host=%s", d.Host))
	parts = append(parts, fmt.Sprintf("port=%d", d.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", d.Database))
	parts = append(parts, fmt.Sprintf("user=%s", d.User))
	if d.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", d.Password))
	}
	if d.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", d.SSLMode))
	}
	if d.ApplicationName != "" {
		parts = append(parts, fmt.Sprintf("application_name=%s", d.ApplicationName))
	}
	return strings.Join(parts, " ")
}

// DirectoriesConfig names the project-relative paths the loader, baseline
// writer, and roles step read from.
type DirectoriesConfig struct {
	Schema     string
	Migrations string
	Baselines  string
	Roles      string
}

// MigrationConfig names the external migration-tracking table, treated as
// opaque and excluded from every diff.
type MigrationConfig struct {
	TrackingSchema string
	TrackingTable  string
}

// Config is the fully-resolved set of parameters an orchestrator needs:
// two database targets (the project's own database and a disposable
// shadow used for loading authored files), the directory layout, and
// migration-tracking metadata.
type Config struct {
	Dev             DatabaseConfig
	Shadow          DatabaseConfig
	Directories     DirectoriesConfig
	Migration       MigrationConfig
	LockTimeout     string
	ApplicationName string
	TargetSchema    string

	// ShadowExplicit is true when PGMT_SHADOW_HOST was set in the
	// environment, meaning Shadow names a real, externally-managed shadow
	// database rather than just the defaults an embedded instance ignores
	// anyway. Callers use it to decide between connecting to Shadow and
	// starting a disposable embedded-postgres instance.
	ShadowExplicit bool
}

// Default returns a Config with every field set to its conventional
// default, ready to be overridden by flags/env before use.
func Default() *Config {
	return &Config{
		Dev: DatabaseConfig{
			Host:            GetEnvWithDefault("PGHOST", "localhost"),
			Port:            GetEnvIntWithDefault("PGPORT", 5432),
			Database:        GetEnvWithDefault("PGDATABASE", ""),
			User:            GetEnvWithDefault("PGUSER", ""),
			Password:        GetEnvWithDefault("PGPASSWORD", ""),
			SSLMode:         "prefer",
			ApplicationName: "pgmt",
		},
		Shadow: DatabaseConfig{
			Host:            GetEnvWithDefault("PGMT_SHADOW_HOST", "localhost"),
			Port:            GetEnvIntWithDefault("PGMT_SHADOW_PORT", 5433),
			Database:        GetEnvWithDefault("PGMT_SHADOW_DB", "pgmt_shadow"),
			User:            GetEnvWithDefault("PGMT_SHADOW_USER", ""),
			Password:        GetEnvWithDefault("PGMT_SHADOW_PASSWORD", ""),
			SSLMode:         "prefer",
			ApplicationName: "pgmt-shadow",
		},
		Directories: DirectoriesConfig{
			Schema:     "schema",
			Migrations: "migrations",
			Baselines:  "schema_baselines",
			Roles:      "roles.sql",
		},
		Migration: MigrationConfig{
			TrackingSchema: "public",
			TrackingTable:  "pgmt_migrations",
		},
		ApplicationName: "pgmt",
		TargetSchema:    "public",
		ShadowExplicit:  os.Getenv("PGMT_SHADOW_HOST") != "",
	}
}

// GetEnvWithDefault returns an environment variable's value, or a default
// when it is unset or empty.
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns an environment variable's value parsed as
// an int, or a default when it is unset, empty, or unparsable.
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
