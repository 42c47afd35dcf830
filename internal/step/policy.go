package step

import (
	"fmt"
	"strings"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

func policyCommand(c catalog.PolicyCommand) string {
	switch c {
	case catalog.PolicySelect:
		return "SELECT"
	case catalog.PolicyInsert:
		return "INSERT"
	case catalog.PolicyUpdate:
		return "UPDATE"
	case catalog.PolicyDelete:
		return "DELETE"
	default:
		return "ALL"
	}
}

func policyRoles(p *catalog.Policy) string {
	if len(p.Roles) == 0 {
		return "PUBLIC"
	}
	quoted := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		quoted[i] = quote.Ident(r)
	}
	return strings.Join(quoted, ", ")
}

// PolicyCreate is `CREATE POLICY`.
type PolicyCreate struct {
	base
	Policy *catalog.Policy
}

func (p PolicyCreate) ID() objectid.ID {
	return objectid.Policy(p.Policy.Schema, p.Policy.Table, p.Policy.Name)
}
func (p PolicyCreate) Kind() OpKind { return Create }
func (p PolicyCreate) Render() []RenderedSql {
	permissive := "PERMISSIVE"
	if !p.Policy.Permissive {
		permissive = "RESTRICTIVE"
	}
	stmt := fmt.Sprintf("CREATE POLICY %s ON %s AS %s FOR %s TO %s",
		quote.Ident(p.Policy.Name), quote.Qualified(p.Policy.Schema, p.Policy.Table),
		permissive, policyCommand(p.Policy.Command), policyRoles(p.Policy))
	if p.Policy.Using != "" {
		stmt += fmt.Sprintf(" USING (%s)", p.Policy.Using)
	}
	if p.Policy.WithCheck != "" {
		stmt += fmt.Sprintf(" WITH CHECK (%s)", p.Policy.WithCheck)
	}
	out := []RenderedSql{safe(stmt + ";")}
	if p.Policy.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON POLICY %s ON %s IS %s;",
			quote.Ident(p.Policy.Name), quote.Qualified(p.Policy.Schema, p.Policy.Table),
			quote.Literal(p.Policy.Comment))))
	}
	return out
}

// PolicyDrop is `DROP POLICY`. Destructive: access restrictions lapse
// until the replacement exists.
type PolicyDrop struct {
	base
	Schema, Table, Name string
}

func (p PolicyDrop) ID() objectid.ID { return objectid.Policy(p.Schema, p.Table, p.Name) }
func (p PolicyDrop) Kind() OpKind    { return Drop }
func (p PolicyDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP POLICY %s ON %s;",
		quote.Ident(p.Name), quote.Qualified(p.Schema, p.Table)))}
}

// PolicyAlter covers role/USING/WITH CHECK changes that don't touch command
// or permissiveness, which PostgreSQL supports via ALTER POLICY in place.
type PolicyAlter struct {
	base
	Policy *catalog.Policy
}

func (p PolicyAlter) ID() objectid.ID {
	return objectid.Policy(p.Policy.Schema, p.Policy.Table, p.Policy.Name)
}
func (p PolicyAlter) Kind() OpKind { return Alter }
func (p PolicyAlter) Render() []RenderedSql {
	stmt := fmt.Sprintf("ALTER POLICY %s ON %s TO %s",
		quote.Ident(p.Policy.Name), quote.Qualified(p.Policy.Schema, p.Policy.Table), policyRoles(p.Policy))
	if p.Policy.Using != "" {
		stmt += fmt.Sprintf(" USING (%s)", p.Policy.Using)
	}
	if p.Policy.WithCheck != "" {
		stmt += fmt.Sprintf(" WITH CHECK (%s)", p.Policy.WithCheck)
	}
	return []RenderedSql{safe(stmt + ";")}
}
