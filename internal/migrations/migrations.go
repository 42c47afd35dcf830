// Package migrations manages the external migration-tracking table that
// records which migration versions have been applied to a database. The
// tracking table is treated as opaque by the rest of the system:
// FilterCatalog strips it out of a reflected catalog before that catalog
// ever reaches the diff engine, so it never appears as a spurious pending
// change.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

// EnsureTable creates the tracking table if it does not already exist.
func EnsureTable(ctx context.Context, db *sql.DB, schema, table string) error {
	qualified := quote.Qualified(schema, table)
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	version bigint PRIMARY KEY,
	description text NOT NULL,
	applied_at timestamptz NOT NULL DEFAULT now()
);`, qualified)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("ensure migration tracking table: %w", err)
	}
	return nil
}

// Record appends a row marking version as applied.
func Record(ctx context.Context, db *sql.DB, schema, table string, version uint64, description string) error {
	qualified := quote.Qualified(schema, table)
	stmt := fmt.Sprintf("INSERT INTO %s (version, description) VALUES ($1, $2);", qualified)
	if _, err := db.ExecContext(ctx, stmt, int64(version), description); err != nil {
		return fmt.Errorf("record applied migration %d: %w", version, err)
	}
	return nil
}

// AppliedVersions returns every version recorded in the tracking table, in
// ascending order.
func AppliedVersions(ctx context.Context, db *sql.DB, schema, table string) ([]uint64, error) {
	qualified := quote.Qualified(schema, table)
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT version FROM %s ORDER BY version;", qualified))
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []uint64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied migration version: %w", err)
		}
		versions = append(versions, uint64(v))
	}
	return versions, rows.Err()
}

// FilterCatalog returns a copy of c with the tracking table (and anything
// scoped to it — indexes, constraints, triggers, policies) removed, and its
// dependency index rebuilt. The input catalog is not mutated.
func FilterCatalog(c *catalog.Catalog, schema, table string) *catalog.Catalog {
	keep := func(s, t string) bool { return !(s == schema && t == table) }

	filtered := &catalog.Catalog{
		Schemas:    c.Schemas,
		Views:      c.Views,
		Types:      c.Types,
		Domains:    c.Domains,
		Functions:  c.Functions,
		Aggregates: c.Aggregates,
		Sequences:  c.Sequences,
		Extensions: c.Extensions,
		Grants:     c.Grants,
	}

	for _, t := range c.Tables {
		if keep(t.Schema, t.Name) {
			filtered.Tables = append(filtered.Tables, t)
		}
	}
	for _, idx := range c.Indexes {
		if keep(idx.Schema, idx.Table) {
			filtered.Indexes = append(filtered.Indexes, idx)
		}
	}
	for _, con := range c.Constraints {
		if keep(con.Schema, con.Table) {
			filtered.Constraints = append(filtered.Constraints, con)
		}
	}
	for _, trg := range c.Triggers {
		if keep(trg.Schema, trg.Table) {
			filtered.Triggers = append(filtered.Triggers, trg)
		}
	}
	for _, pol := range c.Policies {
		if keep(pol.Schema, pol.Table) {
			filtered.Policies = append(filtered.Policies, pol)
		}
	}

	filtered.BuildDependencyIndex()
	return filtered
}

// TrackingTableID returns the tracking table's ObjectId, for callers that
// need to recognize it directly rather than comparing schema/name pairs.
func TrackingTableID(schema, table string) objectid.ID {
	return objectid.Table(schema, table)
}
