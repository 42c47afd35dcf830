package diff

import (
	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/step"
)

// diffTypes: an enum that only gained values at the end uses
// ALTER TYPE ... ADD VALUE; any other change (reordering, removal,
// composite field changes) is DROP+CREATE.
func diffTypes(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Types, func(t *catalog.Type) objectid.ID { return t.ID() })
	newByID := indexByID(new.Types, func(t *catalog.Type) objectid.ID { return t.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.TypeCreate{Type: n})
			continue
		}
		if typeEqual(o, n) {
			out = append(out, commentDiff(catalog.TypeComment{Schema: n.Schema, Name: n.Name}, o.Comment, n.Comment)...)
			continue
		}
		if o.Kind == catalog.TypeEnum && n.Kind == catalog.TypeEnum && enumOnlyAppended(o.EnumValues, n.EnumValues) {
			var prev string
			for _, v := range n.EnumValues[len(o.EnumValues):] {
				out = append(out, step.TypeAddEnumValue{Schema: n.Schema, Name: n.Name, Value: v, After: prev})
				prev = v
			}
			out = append(out, commentDiff(catalog.TypeComment{Schema: n.Schema, Name: n.Name}, o.Comment, n.Comment)...)
			continue
		}
		out = append(out, step.TypeDrop{Schema: o.Schema, Name: o.Name})
		out = append(out, step.TypeCreate{Type: n})
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.TypeDrop{Schema: o.Schema, Name: o.Name})
		}
	}
	return out
}

func typeEqual(o, n *catalog.Type) bool {
	if o.Kind != n.Kind {
		return false
	}
	if o.Kind == catalog.TypeEnum {
		return enumEqual(o.EnumValues, n.EnumValues)
	}
	if len(o.Columns) != len(n.Columns) {
		return false
	}
	for i := range o.Columns {
		if o.Columns[i].Name != n.Columns[i].Name || o.Columns[i].DataType != n.Columns[i].DataType {
			return false
		}
	}
	return true
}

func enumEqual(a, b []string) bool {
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

// enumOnlyAppended reports whether b is a starting with exactly a's values
// in the same order, plus one or more new values at the end.
func enumOnlyAppended(a, b []string) bool {
	if len(b) <= len(a) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// diffDomains: any change to the base type, nullability, default, or
// constraint set is DROP+CREATE; PostgreSQL's ALTER DOMAIN forms exist per
// attribute but pgmt keeps domain changes simple and atomic.
func diffDomains(old, new *catalog.Catalog) []step.Step {
	oldByID := indexByID(old.Domains, func(d *catalog.Domain) objectid.ID { return d.ID() })
	newByID := indexByID(new.Domains, func(d *catalog.Domain) objectid.ID { return d.ID() })

	var out []step.Step
	for id, n := range newByID {
		o, existed := oldByID[id]
		if !existed {
			out = append(out, step.DomainCreate{Domain: n})
			continue
		}
		if domainEqual(o, n) {
			out = append(out, commentDiff(catalog.DomainComment{Schema: n.Schema, Name: n.Name}, o.Comment, n.Comment)...)
			continue
		}
		out = append(out, step.DomainDrop{Schema: o.Schema, Name: o.Name})
		out = append(out, step.DomainCreate{Domain: n})
	}
	for id, o := range oldByID {
		if _, stillExists := newByID[id]; !stillExists {
			out = append(out, step.DomainDrop{Schema: o.Schema, Name: o.Name})
		}
	}
	return out
}

func domainEqual(o, n *catalog.Domain) bool {
	if o.BaseType != n.BaseType || o.NotNull != n.NotNull || o.Default != n.Default ||
		len(o.Constraints) != len(n.Constraints) {
		return false
	}
	for i := range o.Constraints {
		if o.Constraints[i].Name != n.Constraints[i].Name || o.Constraints[i].Definition != n.Constraints[i].Definition {
			return false
		}
	}
	return true
}
