package step

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
	"github.com/gdpotter/pgmt/internal/quote"
)

func indexColumnExpr(c *catalog.IndexColumn) string {
	expr := c.Expression
	if c.OpClass != "" {
		expr += " " + c.OpClass
	}
	if c.Descending {
		expr += " DESC"
	}
	if c.NullsFirst {
		expr += " NULLS FIRST"
	} else if c.Descending {
		expr += " NULLS LAST"
	}
	return expr
}

// IndexCreate is `CREATE INDEX`. Any structural diff on an index (method,
// columns, predicate, uniqueness) is always DROP+CREATE — there is no ALTER
// INDEX for the index body itself.
type IndexCreate struct {
	base
	Index       *catalog.Index
	Concurrent  bool
}

func (i IndexCreate) ID() objectid.ID { return objectid.Index(i.Index.Schema, i.Index.Name) }
func (i IndexCreate) Kind() OpKind    { return Create }
func (i IndexCreate) Render() []RenderedSql {
	var keyCols, includeCols []string
	for _, c := range i.Index.Columns {
		if c.Include {
			includeCols = append(includeCols, quote.Ident(c.Expression))
		} else {
			keyCols = append(keyCols, indexColumnExpr(c))
		}
	}

	unique := ""
	if i.Index.Unique {
		unique = "UNIQUE "
	}
	concurrently := ""
	if i.Concurrent {
		concurrently = "CONCURRENTLY "
	}
	stmt := fmt.Sprintf("CREATE %sINDEX %s%s ON %s USING %s (%s)",
		unique, concurrently, quote.Ident(i.Index.Name),
		quote.Qualified(i.Index.Schema, i.Index.Table), i.Index.Method, strings.Join(keyCols, ", "))
	if len(includeCols) > 0 {
		stmt += fmt.Sprintf(" INCLUDE (%s)", strings.Join(includeCols, ", "))
	}
	if len(i.Index.StorageParams) > 0 {
		keys := make([]string, 0, len(i.Index.StorageParams))
		for k := range i.Index.StorageParams {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for idx, k := range keys {
			parts[idx] = fmt.Sprintf("%s = %s", k, i.Index.StorageParams[k])
		}
		stmt += fmt.Sprintf(" WITH (%s)", strings.Join(parts, ", "))
	}
	if i.Index.Tablespace != "" {
		stmt += " TABLESPACE " + quote.Ident(i.Index.Tablespace)
	}
	if i.Index.Predicate != "" {
		stmt += " WHERE " + i.Index.Predicate
	}

	out := []RenderedSql{safe(stmt + ";")}
	if i.Index.Comment != "" {
		out = append(out, safe(fmt.Sprintf("COMMENT ON INDEX %s IS %s;",
			quote.Qualified(i.Index.Schema, i.Index.Name), quote.Literal(i.Index.Comment))))
	}
	return out
}

// IndexDrop is `DROP INDEX`. Destructive: query plans may regress and
// uniqueness guarantees lapse until the replacement exists.
type IndexDrop struct {
	base
	Schema, Name string
}

func (i IndexDrop) ID() objectid.ID { return objectid.Index(i.Schema, i.Name) }
func (i IndexDrop) Kind() OpKind    { return Drop }
func (i IndexDrop) Render() []RenderedSql {
	return []RenderedSql{destructive(fmt.Sprintf("DROP INDEX %s;", quote.Qualified(i.Schema, i.Name)))}
}

// IndexClusterAlter is the in-place clustering toggle: `ALTER TABLE ...
// CLUSTER ON` when Clustered, `ALTER TABLE ... SET WITHOUT CLUSTER`
// otherwise. Clustering can change without recreating the index itself.
type IndexClusterAlter struct {
	base
	Schema, Table, Name string
	Clustered           bool
}

func (i IndexClusterAlter) ID() objectid.ID { return objectid.Index(i.Schema, i.Name) }
func (i IndexClusterAlter) Kind() OpKind    { return Alter }
func (i IndexClusterAlter) Render() []RenderedSql {
	if !i.Clustered {
		return []RenderedSql{safe(fmt.Sprintf("ALTER TABLE %s SET WITHOUT CLUSTER;",
			quote.Qualified(i.Schema, i.Table)))}
	}
	return []RenderedSql{safe(fmt.Sprintf("ALTER TABLE %s CLUSTER ON %s;",
		quote.Qualified(i.Schema, i.Table), quote.Ident(i.Name)))}
}
