package step

import (
	"fmt"
	"strings"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

func grantTarget(g *catalog.Grant) string {
	switch g.ObjectType {
	case catalog.GrantOnTable:
		return "TABLE " + quote.Qualified(g.ObjectSchema, g.ObjectName)
	case catalog.GrantOnView:
		return "TABLE " + quote.Qualified(g.ObjectSchema, g.ObjectName) // views are granted via TABLE in PostgreSQL
	case catalog.GrantOnSchema:
		return "SCHEMA " + quote.Ident(g.ObjectName)
	case catalog.GrantOnFunction:
		return fmt.Sprintf("FUNCTION %s(%s)", quote.Qualified(g.ObjectSchema, g.ObjectName), g.ObjectArguments)
	case catalog.GrantOnSequence:
		return "SEQUENCE " + quote.Qualified(g.ObjectSchema, g.ObjectName)
	case catalog.GrantOnType:
		return "TYPE " + quote.Qualified(g.ObjectSchema, g.ObjectName)
	case catalog.GrantOnDomain:
		return "DOMAIN " + quote.Qualified(g.ObjectSchema, g.ObjectName)
	default:
		return quote.Qualified(g.ObjectSchema, g.ObjectName)
	}
}

func grantee(g *catalog.Grant) string {
	if g.Grantee == "" {
		return "PUBLIC"
	}
	return quote.Ident(g.Grantee)
}

// GrantApply is `GRANT`. Owner grants are never rendered; PostgreSQL applies
// them implicitly.
type GrantApply struct {
	base
	Grant *catalog.Grant
}

func (g GrantApply) ID() objectid.ID { return objectid.Grant(g.Grant.Key()) }
func (g GrantApply) Kind() OpKind    { return Create }
func (g GrantApply) ExtraDeps() []objectid.ID {
	switch g.Grant.ObjectType {
	case catalog.GrantOnTable, catalog.GrantOnView:
		return []objectid.ID{objectid.Table(g.Grant.ObjectSchema, g.Grant.ObjectName)}
	case catalog.GrantOnSchema:
		return []objectid.ID{objectid.Schema(g.Grant.ObjectName)}
	case catalog.GrantOnFunction:
		return []objectid.ID{objectid.Function(g.Grant.ObjectSchema, g.Grant.ObjectName, g.Grant.ObjectArguments)}
	case catalog.GrantOnSequence:
		return []objectid.ID{objectid.Sequence(g.Grant.ObjectSchema, g.Grant.ObjectName)}
	case catalog.GrantOnType:
		return []objectid.ID{objectid.Type(g.Grant.ObjectSchema, g.Grant.ObjectName)}
	case catalog.GrantOnDomain:
		return []objectid.ID{objectid.Domain(g.Grant.ObjectSchema, g.Grant.ObjectName)}
	default:
		return nil
	}
}
func (g GrantApply) Render() []RenderedSql {
	if g.Grant.IsOwnerGrant() {
		return nil
	}
	stmt := fmt.Sprintf("GRANT %s ON %s TO %s", strings.Join(g.Grant.Privileges, ", "), grantTarget(g.Grant), grantee(g.Grant))
	if g.Grant.WithGrantOption {
		stmt += " WITH GRANT OPTION"
	}
	return []RenderedSql{safe(stmt + ";")}
}

// GrantRevoke is `REVOKE`, used both to remove a grant outright and as the
// first half of a diff-driven REVOKE-then-GRANT cycle.
type GrantRevoke struct {
	base
	Grant *catalog.Grant
}

func (g GrantRevoke) ID() objectid.ID { return objectid.Grant(g.Grant.Key()) }
func (g GrantRevoke) Kind() OpKind    { return Drop }
func (g GrantRevoke) Render() []RenderedSql {
	if g.Grant.IsOwnerGrant() {
		return nil
	}
	stmt := fmt.Sprintf("REVOKE %s ON %s FROM %s;", strings.Join(g.Grant.Privileges, ", "), grantTarget(g.Grant), grantee(g.Grant))
	return []RenderedSql{safe(stmt)}
}
