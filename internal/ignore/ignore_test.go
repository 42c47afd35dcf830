package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
)

func TestLoadMissingFileReturnsNil(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.pgmtignore"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != nil {
		t.Fatalf("Load() on a missing file = %+v, want nil", cfg)
	}
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".pgmtignore")
	contents := `
tables = ["temp_*", "audit.logs"]
views = ["reporting.*"]
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Tables) != 2 || cfg.Tables[0] != "temp_*" || cfg.Tables[1] != "audit.logs" {
		t.Fatalf("Tables = %v", cfg.Tables)
	}
	if len(cfg.Views) != 1 || cfg.Views[0] != "reporting.*" {
		t.Fatalf("Views = %v", cfg.Views)
	}
}

func TestApplyNilConfigReturnsCatalogUnchanged(t *testing.T) {
	var cfg *Config
	c := &catalog.Catalog{Tables: []*catalog.Table{{Schema: "public", Name: "users"}}}
	if got := cfg.Apply(c); got != c {
		t.Fatalf("Apply(nil) = %p, want the same catalog pointer %p", got, c)
	}
}

func TestApplyFiltersMatchedTables(t *testing.T) {
	cfg := &Config{Tables: []string{"public.temp_*"}}
	c := &catalog.Catalog{
		Tables: []*catalog.Table{
			{Schema: "public", Name: "temp_sessions"},
			{Schema: "public", Name: "users"},
		},
	}

	filtered := cfg.Apply(c)
	if len(filtered.Tables) != 1 || filtered.Tables[0].Name != "users" {
		t.Fatalf("Tables after Apply = %+v", filtered.Tables)
	}
}

func TestApplyDropsDependentIndexesConstraintsTriggersPolicies(t *testing.T) {
	cfg := &Config{Tables: []string{"temp_sessions"}}
	c := &catalog.Catalog{
		Tables: []*catalog.Table{
			{Schema: "public", Name: "temp_sessions"},
			{Schema: "public", Name: "users"},
		},
		Indexes: []*catalog.Index{
			{Schema: "public", Table: "temp_sessions", Name: "temp_sessions_idx"},
			{Schema: "public", Table: "users", Name: "users_idx"},
		},
		Constraints: []*catalog.Constraint{
			{Schema: "public", Table: "temp_sessions", Name: "temp_sessions_pk"},
			{Schema: "public", Table: "users", Name: "users_pk"},
		},
		Triggers: []*catalog.Trigger{
			{Schema: "public", Table: "temp_sessions", Name: "temp_sessions_trg"},
		},
		Policies: []*catalog.Policy{
			{Schema: "public", Table: "temp_sessions", Name: "temp_sessions_pol"},
		},
	}

	filtered := cfg.Apply(c)
	if len(filtered.Indexes) != 1 || filtered.Indexes[0].Table != "users" {
		t.Fatalf("Indexes after Apply = %+v", filtered.Indexes)
	}
	if len(filtered.Constraints) != 1 || filtered.Constraints[0].Table != "users" {
		t.Fatalf("Constraints after Apply = %+v", filtered.Constraints)
	}
	if len(filtered.Triggers) != 0 {
		t.Fatalf("Triggers after Apply = %+v, want none", filtered.Triggers)
	}
	if len(filtered.Policies) != 0 {
		t.Fatalf("Policies after Apply = %+v, want none", filtered.Policies)
	}
}

func TestApplyMatchesUnqualifiedNameToo(t *testing.T) {
	cfg := &Config{Views: []string{"legacy_view"}}
	c := &catalog.Catalog{
		Views: []*catalog.View{
			{Schema: "reporting", Name: "legacy_view"},
			{Schema: "reporting", Name: "current_view"},
		},
	}

	filtered := cfg.Apply(c)
	if len(filtered.Views) != 1 || filtered.Views[0].Name != "current_view" {
		t.Fatalf("Views after Apply = %+v", filtered.Views)
	}
}

func TestApplyLeavesUnmatchedCatalogIntact(t *testing.T) {
	cfg := &Config{Functions: []string{"internal_*"}}
	c := &catalog.Catalog{
		Functions: []*catalog.Function{{Schema: "public", Name: "compute_total"}},
		Sequences: []*catalog.Sequence{{Schema: "public", Name: "orders_id_seq"}},
		Types:     []*catalog.Type{{Schema: "public", Name: "order_status"}},
	}

	filtered := cfg.Apply(c)
	if len(filtered.Functions) != 1 {
		t.Fatalf("Functions after Apply = %+v", filtered.Functions)
	}
	if len(filtered.Sequences) != 1 {
		t.Fatalf("Sequences after Apply = %+v", filtered.Sequences)
	}
	if len(filtered.Types) != 1 {
		t.Fatalf("Types after Apply = %+v", filtered.Types)
	}
}
