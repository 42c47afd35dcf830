package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartContainer brings up a disposable PostgreSQL container and returns an
// open connection to it, terminating the container and closing the
// connection on test cleanup. Used by the migrations integration tests, and
// through StartContainerPair by the apply orchestrator's tests, in place of
// the embedded-postgres instance
// internal/shadow.EphemeralProvider wraps for non-test callers.
func StartContainer(ctx context.Context, t testing.TB) *sql.DB {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("pgmt_test"),
		tcpostgres.WithUsername("pgmt"),
		tcpostgres.WithPassword("pgmt"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("build container connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open connection to container: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping container: %v", err)
	}
	return db
}

// StartContainerPair brings up two independent containers, for tests that
// need a dev database and a shadow database to be genuinely separate
// instances (spec.md §4.8's apply orchestrator).
func StartContainerPair(ctx context.Context, t testing.TB) (dev, shadow *sql.DB) {
	t.Helper()
	return StartContainer(ctx, t), StartContainer(ctx, t)
}
