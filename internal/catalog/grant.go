package catalog

import (
	"fmt"
	"sort"

	"github.com/gdpotter/pgmt/internal/objectid"
)

// GrantObjectType names the kind of object a Grant targets.
type GrantObjectType int

const (
	GrantOnTable GrantObjectType = iota
	GrantOnView
	GrantOnSchema
	GrantOnFunction
	GrantOnSequence
	GrantOnType
	GrantOnDomain
)

func (t GrantObjectType) label() string {
	switch t {
	case GrantOnTable:
		return "table"
	case GrantOnView:
		return "view"
	case GrantOnSchema:
		return "schema"
	case GrantOnFunction:
		return "function"
	case GrantOnSequence:
		return "sequence"
	case GrantOnType:
		return "type"
	case GrantOnDomain:
		return "domain"
	default:
		return "object"
	}
}

// Grant is an exploded ACL entry: one (grantee, object, privilege-set)
// tuple. Grantee is either a role name or "" to mean PUBLIC.
type Grant struct {
	Grantee         string // empty means PUBLIC
	ObjectType      GrantObjectType
	ObjectSchema    string
	ObjectName      string
	ObjectArguments string // for Function
	Privileges      []string
	WithGrantOption bool
	ObjectOwner     string
	// IsDefaultACL is true when the server's ACL column was NULL and this
	// grant was synthesized from acldefault(...) rather than stored
	// explicitly. It is reflection metadata only.
	IsDefaultACL bool
	Dependencies []objectid.ID
}

// Key renders the composite "grantee@object-type:qualified-name" string
// that is the Grant's identity.
func (g *Grant) Key() string {
	grantee := g.Grantee
	if grantee == "" {
		grantee = "public"
	}
	qualified := g.ObjectSchema + "." + g.ObjectName
	if g.ObjectType == GrantOnFunction {
		qualified = fmt.Sprintf("%s(%s)", qualified, g.ObjectArguments)
	}
	if g.ObjectType == GrantOnSchema {
		qualified = g.ObjectName
	}
	return fmt.Sprintf("%s@%s:%s", grantee, g.ObjectType.label(), qualified)
}

func (g *Grant) ID() objectid.ID          { return objectid.Grant(g.Key()) }
func (g *Grant) DependsOn() []objectid.ID { return g.Dependencies }

// IsOwnerGrant reports whether this grant's grantee is the object's owner.
// PostgreSQL applies these implicitly; they are never rendered.
func (g *Grant) IsOwnerGrant() bool {
	return g.Grantee != "" && g.Grantee == g.ObjectOwner
}

// SamePrivileges reports whether two grants (assumed same identity) carry
// the same privilege set and grant-option flag.
func (g *Grant) SamePrivileges(other *Grant) bool {
	if g.WithGrantOption != other.WithGrantOption {
		return false
	}
	a := append([]string(nil), g.Privileges...)
	b := append([]string(nil), other.Privileges...)
	sort.Strings(a)
	sort.Strings(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CommentTarget is implemented by a small wrapper per object kind so the
// generic comment diff/render helper can operate over
// any commentable kind without fourteen near-identical comment types.
type CommentTarget interface {
	// ObjectKeyword is the SQL keyword following COMMENT ON, e.g. "TABLE".
	ObjectKeyword() string
	// QualifiedName is the fully qualified, already-quoted identifier text
	// to place after the keyword, e.g. `"app"."users"`.
	QualifiedName() string
	// ID is the ObjectId the comment is attached to (wrapped in a Comment
	// ObjectId by callers that need the comment's own identity).
	ID() objectid.ID
}
