// Package shadow provisions the disposable database the loader shadow-applies
// authored schema files against when the caller doesn't supply one of its
// own via --shadow-url. The Loader itself only ever receives
// a *sql.DB; it never knows whether the shadow came from this helper or an
// operator-supplied connection string.
package shadow

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/gdpotter/pgmt/internal/postgres"
)

// EphemeralProvider wraps an embedded-postgres instance, mirroring
// internal/postgres/embedded.go's EmbeddedPostgres but scoped to the
// shadow-database role rather than plan-generation.
type EphemeralProvider struct {
	embedded *postgres.EmbeddedPostgres
	db       *sql.DB
}

// Start brings up a disposable PostgreSQL instance and opens a connection
// to it, ready to be passed as a Loader's shadowDB argument.
func Start(ctx context.Context, version postgres.PostgresVersion) (*EphemeralProvider, error) {
	embedded, err := postgres.StartEmbeddedPostgres(&postgres.EmbeddedPostgresConfig{
		Version:  version,
		Database: "pgmt_shadow",
		Username: "pgmt",
		Password: "pgmt",
	})
	if err != nil {
		return nil, fmt.Errorf("start shadow database: %w", err)
	}

	host, port, database, username, password := embedded.GetConnectionDetails()
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, database, username, password)
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = embedded.Stop()
		return nil, fmt.Errorf("open shadow database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = embedded.Stop()
		return nil, fmt.Errorf("ping shadow database: %w", err)
	}

	return &EphemeralProvider{embedded: embedded, db: db}, nil
}

// DB returns the open connection to the ephemeral shadow database.
func (p *EphemeralProvider) DB() *sql.DB {
	return p.db
}

// Stop closes the connection and tears down the embedded instance.
func (p *EphemeralProvider) Stop() error {
	if err := p.db.Close(); err != nil {
		_ = p.embedded.Stop()
		return fmt.Errorf("close shadow database connection: %w", err)
	}
	return p.embedded.Stop()
}
