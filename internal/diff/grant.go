package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffGrants: owner grants are never compared (they are implicit); a
// privilege-set or grant-option change is rendered as a REVOKE of the old
// set followed by a GRANT of the new one rather than an attempt to compute
// the minimal ADD/REMOVE delta, since PostgreSQL has no partial-update form
// for a GRANT's privilege list.
func diffGrants(old, new *catalog.Catalog) []step.Step {
	oldByKey := indexByID(filterOwnerGrants(old.Grants), func(g *catalog.Grant) objectid.ID { return g.ID() })
	newByKey := indexByID(filterOwnerGrants(new.Grants), func(g *catalog.Grant) objectid.ID { return g.ID() })

	var out []step.Step
	for key, n := range newByKey {
		o, existed := oldByKey[key]
		if !existed {
			out = append(out, step.GrantApply{Grant: n})
			continue
		}
		if !o.SamePrivileges(n) {
			out = append(out, step.GrantRevoke{Grant: o})
			out = append(out, step.GrantApply{Grant: n})
		}
	}
	for key, o := range oldByKey {
		if _, stillExists := newByKey[key]; !stillExists {
			out = append(out, step.GrantRevoke{Grant: o})
		}
	}
	return out
}

func filterOwnerGrants(grants []*catalog.Grant) []*catalog.Grant {
	out := make([]*catalog.Grant, 0, len(grants))
	for _, g := range grants {
		if !g.IsOwnerGrant() {
			out = append(out, g)
		}
	}
	return out
}
