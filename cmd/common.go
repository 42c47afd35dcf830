package cmd

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/gdpotter/pgmt/internal/config"
	"github.com/gdpotter/pgmt/internal/postgres"
	"github.com/gdpotter/pgmt/internal/shadow"
)

// openDB opens a *sql.DB for the given connection parameters and pings it,
// matching the teacher's cmd/util connection-verification step.
func openDB(ctx context.Context, dbConfig config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// shadowSource is either an explicit --shadow-url connection or a disposable
// embedded instance started on demand.
type shadowSource struct {
	db       *sql.DB
	ephem    *shadow.EphemeralProvider
	explicit bool
}

func (s *shadowSource) Close() error {
	if s.explicit {
		return s.db.Close()
	}
	return s.ephem.Stop()
}

// openShadow opens a shadow database connection, preferring (in order) an
// explicit --shadow-url, a PGMT_SHADOW_*-configured external instance, and
// finally a disposable embedded-postgres instance. devConfig
// names the live database the shadow is being diffed against; when an
// embedded instance is started its version is detected from devConfig so
// the shadow renders DDL the same way the real target would, rather than
// against a fixed version that might accept or reject syntax differently.
func openShadow(ctx context.Context, devConfig, shadowConfig config.DatabaseConfig, shadowExplicit bool, shadowURL string) (*shadowSource, error) {
	if shadowURL != "" {
		db, err := sql.Open("pgx", shadowURL)
		if err != nil {
			return nil, fmt.Errorf("open shadow database connection: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping shadow database: %w", err)
		}
		return &shadowSource{db: db, explicit: true}, nil
	}

	if shadowExplicit {
		db, err := sql.Open("pgx", shadowConfig.DSN())
		if err != nil {
			return nil, fmt.Errorf("open shadow database connection: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping shadow database: %w", err)
		}
		return &shadowSource{db: db, explicit: true}, nil
	}

	version, err := postgres.DetectPostgresVersionFromDB(devConfig.Host, devConfig.Port, devConfig.Database, devConfig.User, devConfig.Password)
	if err != nil {
		return nil, fmt.Errorf("detect development database version: %w", err)
	}

	ephem, err := shadow.Start(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("start disposable shadow database: %w", err)
	}
	return &shadowSource{db: ephem.DB(), ephem: ephem}, nil
}
