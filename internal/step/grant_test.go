package step

import (
	"strings"
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
)

func TestGrantApplyOwnerGrantRendersNothing(t *testing.T) {
	g := &catalog.Grant{Grantee: "alice", ObjectOwner: "alice", ObjectType: catalog.GrantOnTable, ObjectSchema: "app", ObjectName: "orders"}
	out := GrantApply{Grant: g}.Render()
	if out != nil {
		t.Errorf("GrantApply.Render() for an owner grant = %v; want nil", out)
	}
}

func TestGrantApplyRendersGrantStatement(t *testing.T) {
	g := &catalog.Grant{
		Grantee: "app_user", ObjectType: catalog.GrantOnTable, ObjectSchema: "app", ObjectName: "orders",
		Privileges: []string{"SELECT", "INSERT"}, WithGrantOption: true,
	}
	out := GrantApply{Grant: g}.Render()
	if len(out) != 1 {
		t.Fatalf("Render() returned %d statements; want 1", len(out))
	}
	text := out[0].Text
	for _, want := range []string{"GRANT SELECT, INSERT ON TABLE \"app\".\"orders\" TO \"app_user\"", "WITH GRANT OPTION"} {
		if !strings.Contains(text, want) {
			t.Errorf("Render()[0].Text = %q; want it to contain %q", text, want)
		}
	}
}

func TestGranteeDefaultsToPublic(t *testing.T) {
	g := &catalog.Grant{ObjectType: catalog.GrantOnSchema, ObjectName: "app", Privileges: []string{"USAGE"}}
	out := GrantApply{Grant: g}.Render()
	if !strings.Contains(out[0].Text, "TO PUBLIC") {
		t.Errorf("Render()[0].Text = %q; want TO PUBLIC for an empty Grantee", out[0].Text)
	}
}

func TestGrantApplyExtraDepsPerObjectType(t *testing.T) {
	g := &catalog.Grant{ObjectType: catalog.GrantOnFunction, ObjectSchema: "app", ObjectName: "fn", ObjectArguments: "integer"}
	deps := GrantApply{Grant: g}.ExtraDeps()
	if len(deps) != 1 || deps[0].Arguments != "integer" {
		t.Errorf("ExtraDeps() = %v; want a single function dependency with the matching argument signature", deps)
	}
}

func TestGrantRevokeOwnerGrantRendersNothing(t *testing.T) {
	g := &catalog.Grant{Grantee: "alice", ObjectOwner: "alice", ObjectType: catalog.GrantOnTable, ObjectSchema: "app", ObjectName: "orders"}
	if out := (GrantRevoke{Grant: g}).Render(); out != nil {
		t.Errorf("GrantRevoke.Render() for an owner grant = %v; want nil", out)
	}
}

func TestGrantRevokeRendersRevokeStatement(t *testing.T) {
	g := &catalog.Grant{Grantee: "app_user", ObjectType: catalog.GrantOnTable, ObjectSchema: "app", ObjectName: "orders", Privileges: []string{"SELECT"}}
	out := GrantRevoke{Grant: g}.Render()
	if len(out) != 1 || !strings.Contains(out[0].Text, "REVOKE SELECT ON TABLE \"app\".\"orders\" FROM \"app_user\";") {
		t.Errorf("Render() = %v", out)
	}
}
