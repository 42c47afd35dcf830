// Package reflect builds a *catalog.Catalog by querying a live PostgreSQL
// instance. It is the read side of the pipeline: the Loader's shadow-apply
// step and the top-level apply/validate orchestrators both call Reflect to
// get a catalog snapshot. Every enumerating query excludes objects owned by
// an extension (pg_depend deptype = 'e'): those are managed by `CREATE
// EXTENSION`/the extension's own install script, not by authored schema
// files, so surfacing them would make a round-trip reflect-then-diff see
// permanent phantom drift.
//
// The teacher builds its IR through a sqlc-generated queries package; that
// generated layer isn't part of this tree (sqlc itself is a build-time code
// generator, not a runtime dependency pgschema's go.mod even lists), so
// Reflector queries information_schema/pg_catalog directly through
// database/sql. The ordered, one-method-per-kind structure below is carried
// over from internal/ir/builder.go's BuildIR method.
package reflect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/gdpotter/pgmt/internal/catalog"
	"github.com/gdpotter/pgmt/internal/objectid"
)

// Reflector builds a catalog snapshot from a live connection, scoped to one
// target schema plus whatever extension-owned objects it depends on.
type Reflector struct {
	db     *sql.DB
	schema string
}

func New(db *sql.DB, targetSchema string) *Reflector {
	return &Reflector{db: db, schema: targetSchema}
}

// Reflect builds the full catalog for the target schema, in the same
// object-kind order the teacher's BuildIR uses.
func (r *Reflector) Reflect(ctx context.Context) (*catalog.Catalog, error) {
	c := catalog.Empty()

	steps := []struct {
		name string
		fn   func(context.Context, *catalog.Catalog) error
	}{
		{"schema", r.reflectSchema},
		{"extensions", r.reflectExtensions},
		{"tables", r.reflectTables},
		{"columns", r.reflectColumns},
		{"primary keys", r.reflectPrimaryKeys},
		{"constraints", r.reflectConstraints},
		{"indexes", r.reflectIndexes},
		{"sequences", r.reflectSequences},
		{"functions", r.reflectFunctions},
		{"aggregates", r.reflectAggregates},
		{"views", r.reflectViews},
		{"triggers", r.reflectTriggers},
		{"policies", r.reflectPolicies},
		{"types", r.reflectTypes},
		{"domains", r.reflectDomains},
		{"grants", r.reflectGrants},
	}

	for _, step := range steps {
		if err := step.fn(ctx, c); err != nil {
			return nil, fmt.Errorf("reflect %s: %w", step.name, err)
		}
	}

	c.BuildDependencyIndex()
	return c, nil
}

func (r *Reflector) reflectSchema(ctx context.Context, c *catalog.Catalog) error {
	row := r.db.QueryRowContext(ctx, `
		SELECT n.nspname, pg_catalog.pg_get_userbyid(n.nspowner),
		       coalesce(pg_catalog.obj_description(n.oid, 'pg_namespace'), '')
		FROM pg_catalog.pg_namespace n
		WHERE n.nspname = $1`, r.schema)

	s := &catalog.Schema{}
	if err := row.Scan(&s.Name, &s.Owner, &s.Comment); err != nil {
		return err
	}
	c.Schemas = append(c.Schemas, s)
	return nil
}

func (r *Reflector) reflectExtensions(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.extname, n.nspname, e.extversion, e.extrelocatable,
		       coalesce(pg_catalog.obj_description(e.oid, 'pg_extension'), '')
		FROM pg_catalog.pg_extension e
		JOIN pg_catalog.pg_namespace n ON n.oid = e.extnamespace
		WHERE n.nspname = $1`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		e := &catalog.Extension{}
		if err := rows.Scan(&e.Name, &e.Schema, &e.Version, &e.Relocatable, &e.Comment); err != nil {
			return err
		}
		c.Extensions = append(c.Extensions, e)
	}
	return rows.Err()
}

func (r *Reflector) reflectTables(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.relname, c.relrowsecurity, c.relforcerowsecurity,
		       coalesce(pg_catalog.obj_description(c.oid, 'pg_class'), '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind = 'r'
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = c.oid AND dep.deptype = 'e'
		  )
		ORDER BY c.relname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := &catalog.Table{Schema: r.schema}
		if err := rows.Scan(&t.Name, &t.RLSEnabled, &t.RLSForced, &t.Comment); err != nil {
			return err
		}
		c.Tables = append(c.Tables, t)
	}
	return rows.Err()
}

func (r *Reflector) reflectColumns(ctx context.Context, c *catalog.Catalog) error {
	for _, t := range c.Tables {
		rows, err := r.db.QueryContext(ctx, `
			SELECT a.attname, a.attnum,
			       pg_catalog.format_type(a.atttypid, a.atttypmod),
			       a.attnotnull,
			       coalesce(pg_catalog.pg_get_expr(d.adbin, d.adrelid), ''),
			       CASE WHEN a.attgenerated = 's'
			            THEN coalesce(pg_catalog.pg_get_expr(d.adbin, d.adrelid), '')
			            ELSE '' END,
			       coalesce(pg_catalog.col_description(a.attrelid, a.attnum), ''),
			       CASE a.attidentity WHEN 'a' THEN 'ALWAYS' WHEN 'd' THEN 'BY DEFAULT' ELSE '' END
			FROM pg_catalog.pg_attribute a
			JOIN pg_catalog.pg_class rel ON rel.oid = a.attrelid
			JOIN pg_catalog.pg_namespace n ON n.oid = rel.relnamespace
			LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
			WHERE n.nspname = $1 AND rel.relname = $2
			  AND a.attnum > 0 AND NOT a.attisdropped
			ORDER BY a.attnum`, r.schema, t.Name)
		if err != nil {
			return err
		}

		for rows.Next() {
			col := &catalog.Column{}
			if err := rows.Scan(&col.Name, &col.Position, &col.DataType, &col.NotNull,
				&col.Default, &col.GeneratedExpr, &col.Comment, &col.IdentityGeneration); err != nil {
				rows.Close()
				return err
			}
			t.Columns = append(t.Columns, col)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}

func (r *Reflector) reflectPrimaryKeys(ctx context.Context, c *catalog.Catalog) error {
	for _, t := range c.Tables {
		rows, err := r.db.QueryContext(ctx, `
			SELECT con.conname, a.attname
			FROM pg_catalog.pg_constraint con
			JOIN pg_catalog.pg_class rel ON rel.oid = con.conrelid
			JOIN pg_catalog.pg_namespace n ON n.oid = rel.relnamespace
			JOIN unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord) ON true
			JOIN pg_catalog.pg_attribute a ON a.attrelid = rel.oid AND a.attnum = k.attnum
			WHERE n.nspname = $1 AND rel.relname = $2 AND con.contype = 'p'
			ORDER BY k.ord`, r.schema, t.Name)
		if err != nil {
			return err
		}

		var pk *catalog.PrimaryKey
		for rows.Next() {
			var name, col string
			if err := rows.Scan(&name, &col); err != nil {
				rows.Close()
				return err
			}
			if pk == nil {
				pk = &catalog.PrimaryKey{Name: name}
			}
			pk.Columns = append(pk.Columns, col)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
		t.PrimaryKey = pk
	}
	return nil
}

func (r *Reflector) reflectConstraints(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rel.relname, con.conname, con.contype,
		       pg_catalog.pg_get_constraintdef(con.oid),
		       coalesce(pg_catalog.obj_description(con.oid, 'pg_constraint'), '')
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_class rel ON rel.oid = con.conrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = rel.relnamespace
		WHERE n.nspname = $1 AND con.contype IN ('u', 'f', 'c', 'x')
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = con.oid AND dep.deptype = 'e'
		  )
		ORDER BY rel.relname, con.conname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var table, name, pgKind, def, comment string
		if err := rows.Scan(&table, &name, &pgKind, &def, &comment); err != nil {
			return err
		}
		kind := catalog.ConstraintCheck
		switch pgKind {
		case "u":
			kind = catalog.ConstraintUnique
		case "f":
			kind = catalog.ConstraintForeignKey
		case "x":
			kind = catalog.ConstraintExclusion
		}
		c.Constraints = append(c.Constraints, &catalog.Constraint{
			Schema:    r.schema,
			Table:     table,
			Name:      name,
			Kind:      kind,
			CheckExpr: def,
			Comment:   comment,
		})
	}
	return rows.Err()
}

func (r *Reflector) reflectIndexes(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.relname, i.relname, am.amname, ix.indisunique, ix.indisvalid,
		       ix.indisclustered, pg_catalog.pg_get_indexdef(i.oid),
		       coalesce(pg_catalog.obj_description(i.oid, 'pg_class'), '')
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_class t ON t.oid = ix.indrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_catalog.pg_am am ON am.oid = i.relam
		WHERE n.nspname = $1 AND ix.indisprimary = false
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_constraint con
		    WHERE con.conindid = i.oid
		  )
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = i.oid AND dep.deptype = 'e'
		  )
		ORDER BY t.relname, i.relname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	type indexRow struct {
		table, name, method, def, comment string
		unique, valid, clustered         bool
	}
	var indexRows []indexRow
	for rows.Next() {
		var ir indexRow
		if err := rows.Scan(&ir.table, &ir.name, &ir.method, &ir.unique, &ir.valid, &ir.clustered, &ir.def, &ir.comment); err != nil {
			return err
		}
		indexRows = append(indexRows, ir)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, ir := range indexRows {
		idx := &catalog.Index{
			Schema:    r.schema,
			Table:     ir.table,
			Name:      ir.name,
			Method:    ir.method,
			Unique:    ir.unique,
			Valid:     ir.valid,
			Clustered: ir.clustered,
			Comment:   ir.comment,
		}
		if err := r.reflectIndexColumns(ctx, idx); err != nil {
			return err
		}
		c.Indexes = append(c.Indexes, idx)
	}
	return nil
}

// reflectIndexColumns pulls one row per key/include column directly from
// pg_index/pg_attribute rather than parsing pg_get_indexdef's rendered SQL,
// so collation/opclass/sort-direction survive as structured fields for
// indexStructureEqual to compare.
func (r *Reflector) reflectIndexColumns(ctx context.Context, idx *catalog.Index) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CASE WHEN k.attnum = 0 THEN pg_catalog.pg_get_indexdef(ix.indexrelid, k.ord::int, false)
		            ELSE a.attname END,
		       coalesce(coll.collname, ''), coalesce(opc.opcname, ''),
		       (ix.indoption[k.ord-1]::int & 1) != 0,
		       (ix.indoption[k.ord-1]::int & 2) != 0,
		       k.ord > ix.indnkeyatts
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_class t ON t.oid = ix.indrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
		JOIN unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		LEFT JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		LEFT JOIN pg_catalog.pg_collation coll ON coll.oid = ix.indcollation[k.ord-1] AND ix.indcollation[k.ord-1] != 0
		LEFT JOIN pg_catalog.pg_opclass opc ON opc.oid = ix.indclass[k.ord-1]
		WHERE n.nspname = $1 AND t.relname = $2 AND i.relname = $3
		ORDER BY k.ord`, r.schema, idx.Table, idx.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		col := &catalog.IndexColumn{}
		if err := rows.Scan(&col.Expression, &col.Collation, &col.OpClass, &col.Descending, &col.NullsFirst, &col.Include); err != nil {
			return err
		}
		idx.Columns = append(idx.Columns, col)
	}
	return rows.Err()
}

func (r *Reflector) reflectSequences(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.relname, seq.seqtypid::regtype::text, seq.seqstart,
		       seq.seqmin, seq.seqmax, seq.seqincrement, seq.seqcycle,
		       coalesce(own.relname, ''), coalesce(owncol.attname, ''),
		       coalesce(pg_catalog.obj_description(s.oid, 'pg_class'), '')
		FROM pg_catalog.pg_sequence seq
		JOIN pg_catalog.pg_class s ON s.oid = seq.seqrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = s.relnamespace
		LEFT JOIN pg_catalog.pg_depend dep ON dep.objid = s.oid AND dep.deptype = 'a'
		LEFT JOIN pg_catalog.pg_class own ON own.oid = dep.refobjid
		LEFT JOIN pg_catalog.pg_attribute owncol ON owncol.attrelid = dep.refobjid AND owncol.attnum = dep.refobjsubid
		WHERE n.nspname = $1
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend edep
		    WHERE edep.objid = s.oid AND edep.deptype = 'e'
		  )
		ORDER BY s.relname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		sq := &catalog.Sequence{Schema: r.schema}
		if err := rows.Scan(&sq.Name, &sq.DataType, &sq.StartValue, &sq.MinValue, &sq.MaxValue,
			&sq.Increment, &sq.Cycle, &sq.OwnedByTable, &sq.OwnedByColumn, &sq.Comment); err != nil {
			return err
		}
		c.Sequences = append(c.Sequences, sq)
	}
	return rows.Err()
}

func (r *Reflector) reflectFunctions(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.proname, pg_catalog.pg_get_function_identity_arguments(p.oid),
		       pg_catalog.pg_get_functiondef(p.oid),
		       pg_catalog.format_type(p.prorettype, null), l.lanname,
		       CASE p.provolatile WHEN 'i' THEN 'IMMUTABLE' WHEN 's' THEN 'STABLE' ELSE 'VOLATILE' END,
		       coalesce(pg_catalog.obj_description(p.oid, 'pg_proc'), '')
		FROM pg_catalog.pg_proc p
		JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_catalog.pg_language l ON l.oid = p.prolang
		WHERE n.nspname = $1 AND p.prokind = 'f'
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = p.oid AND dep.deptype = 'e'
		  )
		ORDER BY p.proname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		f := &catalog.Function{Schema: r.schema}
		if err := rows.Scan(&f.Name, &f.Arguments, &f.Definition, &f.ReturnType, &f.Language, &f.Volatility, &f.Comment); err != nil {
			return err
		}
		c.Functions = append(c.Functions, f)
	}
	return rows.Err()
}

func (r *Reflector) reflectAggregates(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.proname, pg_catalog.pg_get_function_identity_arguments(p.oid),
		       transfn.proname, pg_catalog.format_type(agg.aggtranstype, null),
		       coalesce(finalfn.proname, ''), coalesce(agg.agginitval, ''),
		       coalesce(pg_catalog.obj_description(p.oid, 'pg_proc'), '')
		FROM pg_catalog.pg_aggregate agg
		JOIN pg_catalog.pg_proc p ON p.oid = agg.aggfnoid
		JOIN pg_catalog.pg_namespace n ON n.oid = p.pronamespace
		JOIN pg_catalog.pg_proc transfn ON transfn.oid = agg.aggtransfn
		LEFT JOIN pg_catalog.pg_proc finalfn ON finalfn.oid = agg.aggfinalfn AND agg.aggfinalfn != 0
		WHERE n.nspname = $1
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = p.oid AND dep.deptype = 'e'
		  )
		ORDER BY p.proname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		a := &catalog.Aggregate{Schema: r.schema}
		if err := rows.Scan(&a.Name, &a.Arguments, &a.TransitionFunction, &a.StateType,
			&a.FinalFunction, &a.InitialCondition, &a.Comment); err != nil {
			return err
		}
		c.Aggregates = append(c.Aggregates, a)
	}
	return rows.Err()
}

func (r *Reflector) reflectViews(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.relname, pg_catalog.pg_get_viewdef(c.oid, true),
		       coalesce(c.reloptions, '{}'),
		       coalesce(pg_catalog.obj_description(c.oid, 'pg_class'), '')
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind = 'v'
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = c.oid AND dep.deptype = 'e'
		  )
		ORDER BY c.relname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		v := &catalog.View{Schema: r.schema}
		var options []string
		if err := rows.Scan(&v.Name, &v.Definition, pq.Array(&options), &v.Comment); err != nil {
			return err
		}
		for _, opt := range options {
			switch opt {
			case "security_invoker=true":
				v.SecurityInvoker = true
			case "security_barrier=true":
				v.SecurityBarrier = true
			}
		}
		c.Views = append(c.Views, v)
	}
	return rows.Err()
}

func (r *Reflector) reflectTriggers(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.relname, tg.tgname, pg_catalog.pg_get_triggerdef(tg.oid),
		       p.proname, coalesce(pg_catalog.obj_description(tg.oid, 'pg_trigger'), '')
		FROM pg_catalog.pg_trigger tg
		JOIN pg_catalog.pg_class t ON t.oid = tg.tgrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_catalog.pg_proc p ON p.oid = tg.tgfoid
		WHERE n.nspname = $1 AND NOT tg.tgisinternal
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = tg.oid AND dep.deptype = 'e'
		  )
		ORDER BY t.relname, tg.tgname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		tr := &catalog.Trigger{Schema: r.schema}
		if err := rows.Scan(&tr.Table, &tr.Name, &tr.Definition, &tr.Function, &tr.Comment); err != nil {
			return err
		}
		c.Triggers = append(c.Triggers, tr)
	}
	return rows.Err()
}

func (r *Reflector) reflectPolicies(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pol.tablename, pol.policyname, pol.cmd, pol.permissive,
		       coalesce(pol.roles, '{public}'),
		       coalesce(pol.qual, ''), coalesce(pol.with_check, '')
		FROM pg_catalog.pg_policies pol
		JOIN pg_catalog.pg_class rel ON rel.relname = pol.tablename
		JOIN pg_catalog.pg_namespace n ON n.oid = rel.relnamespace AND n.nspname = pol.schemaname
		JOIN pg_catalog.pg_policy rawpol ON rawpol.polrelid = rel.oid AND rawpol.polname = pol.policyname
		WHERE pol.schemaname = $1
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = rawpol.oid AND dep.deptype = 'e'
		  )
		ORDER BY pol.tablename, pol.policyname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		p := &catalog.Policy{Schema: r.schema}
		var cmd, permissive string
		var roles []string
		if err := rows.Scan(&p.Table, &p.Name, &cmd, &permissive, pq.Array(&roles), &p.Using, &p.WithCheck); err != nil {
			return err
		}
		p.Permissive = permissive == "PERMISSIVE"
		p.Command = policyCommandFromSQL(cmd)
		if len(roles) == 1 && roles[0] == "public" {
			p.Roles = nil
		} else {
			p.Roles = roles
		}
		p.Dependencies = []objectid.ID{objectid.Table(r.schema, p.Table)}
		c.Policies = append(c.Policies, p)
	}
	return rows.Err()
}

func policyCommandFromSQL(cmd string) catalog.PolicyCommand {
	switch cmd {
	case "r", "SELECT":
		return catalog.PolicySelect
	case "a", "INSERT":
		return catalog.PolicyInsert
	case "w", "UPDATE":
		return catalog.PolicyUpdate
	case "d", "DELETE":
		return catalog.PolicyDelete
	default:
		return catalog.PolicyAll
	}
}

func (r *Reflector) reflectTypes(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.typname, t.typtype
		FROM pg_catalog.pg_type t
		JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1 AND t.typtype IN ('e', 'c')
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_class rel
		    WHERE rel.oid = t.typrelid AND rel.relkind != 'c'
		  )
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = t.oid AND dep.deptype = 'e'
		  )
		ORDER BY t.typname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	type typeRow struct {
		name, kind string
	}
	var typeRows []typeRow
	for rows.Next() {
		var tr typeRow
		if err := rows.Scan(&tr.name, &tr.kind); err != nil {
			rows.Close()
			return err
		}
		typeRows = append(typeRows, tr)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, tr := range typeRows {
		t := &catalog.Type{Schema: r.schema, Name: tr.name}
		if tr.kind == "e" {
			t.Kind = catalog.TypeEnum
			if err := r.reflectEnumValues(ctx, t); err != nil {
				return err
			}
		} else {
			t.Kind = catalog.TypeComposite
			if err := r.reflectCompositeColumns(ctx, t); err != nil {
				return err
			}
		}
		row := r.db.QueryRowContext(ctx, `
			SELECT coalesce(pg_catalog.obj_description(t.oid, 'pg_type'), '')
			FROM pg_catalog.pg_type t
			JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
			WHERE n.nspname = $1 AND t.typname = $2`, r.schema, tr.name)
		if err := row.Scan(&t.Comment); err != nil {
			return err
		}
		c.Types = append(c.Types, t)
	}
	return nil
}

func (r *Reflector) reflectEnumValues(ctx context.Context, t *catalog.Type) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.enumlabel
		FROM pg_catalog.pg_enum e
		JOIN pg_catalog.pg_type ty ON ty.oid = e.enumtypid
		JOIN pg_catalog.pg_namespace n ON n.oid = ty.typnamespace
		WHERE n.nspname = $1 AND ty.typname = $2
		ORDER BY e.enumsortorder`, t.Schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		t.EnumValues = append(t.EnumValues, v)
	}
	return rows.Err()
}

func (r *Reflector) reflectCompositeColumns(ctx context.Context, t *catalog.Type) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.attname, pg_catalog.format_type(a.atttypid, a.atttypmod), a.attnum
		FROM pg_catalog.pg_attribute a
		JOIN pg_catalog.pg_type ty ON ty.typrelid = a.attrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = ty.typnamespace
		WHERE n.nspname = $1 AND ty.typname = $2 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`, t.Schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		col := &catalog.TypeColumn{}
		if err := rows.Scan(&col.Name, &col.DataType, &col.Position); err != nil {
			return err
		}
		t.Columns = append(t.Columns, col)
	}
	return rows.Err()
}

func (r *Reflector) reflectDomains(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.typname, pg_catalog.format_type(t.typbasetype, t.typtypmod),
		       t.typnotnull, coalesce(t.typdefault, ''),
		       coalesce(pg_catalog.obj_description(t.oid, 'pg_type'), '')
		FROM pg_catalog.pg_type t
		JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1 AND t.typtype = 'd'
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = t.oid AND dep.deptype = 'e'
		  )
		ORDER BY t.typname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		d := &catalog.Domain{Schema: r.schema}
		if err := rows.Scan(&d.Name, &d.BaseType, &d.NotNull, &d.Default, &d.Comment); err != nil {
			return err
		}
		if err := r.reflectDomainConstraints(ctx, d); err != nil {
			return err
		}
		c.Domains = append(c.Domains, d)
	}
	return rows.Err()
}

func (r *Reflector) reflectDomainConstraints(ctx context.Context, d *catalog.Domain) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT con.conname, pg_catalog.pg_get_constraintdef(con.oid)
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_type t ON t.oid = con.contypid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1 AND t.typname = $2
		ORDER BY con.conname`, d.Schema, d.Name)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		dc := &catalog.DomainConstraint{}
		if err := rows.Scan(&dc.Name, &dc.Definition); err != nil {
			return err
		}
		d.Constraints = append(d.Constraints, dc)
	}
	return rows.Err()
}

// reflectGrants explodes pg_class.relacl/pg_proc.proacl/pg_namespace.nspacl
// into one Grant per (grantee, privilege-set) pair, synthesizing the
// default ACL when the column is NULL.
func (r *Reflector) reflectGrants(ctx context.Context, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.relname,
		       CASE c.relkind WHEN 'v' THEN 'view' ELSE 'table' END,
		       c.relacl IS NULL,
		       pg_catalog.pg_get_userbyid(c.relowner)
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind IN ('r', 'v')
		  AND NOT EXISTS (
		    SELECT 1 FROM pg_catalog.pg_depend dep
		    WHERE dep.objid = c.oid AND dep.deptype = 'e'
		  )
		ORDER BY c.relname`, r.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	// This query only drives the table/view/owner enumeration; the actual
	// ACL explosion happens per-target below in explodeACL, since scanning
	// a composite array_agg portably through database/sql is awkward.
	type target struct {
		name, kind, owner string
		defaultACL        bool
	}
	var targets []target
	for rows.Next() {
		var tgt target
		if err := rows.Scan(&tgt.name, &tgt.kind, &tgt.defaultACL, &tgt.owner); err != nil {
			return err
		}
		targets = append(targets, tgt)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, tgt := range targets {
		objType := catalog.GrantOnTable
		if tgt.kind == "view" {
			objType = catalog.GrantOnView
		}
		if err := r.explodeACL(ctx, objType, tgt.name, "", tgt.owner, tgt.defaultACL, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reflector) explodeACL(ctx context.Context, objType catalog.GrantObjectType, name, args, owner string, defaultACL bool, c *catalog.Catalog) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT coalesce(grantee_role.rolname, ''), array_agg(acl.privilege_type ORDER BY acl.privilege_type),
		       bool_or(acl.is_grantable)
		FROM pg_catalog.pg_class cls
		JOIN pg_catalog.pg_namespace n ON n.oid = cls.relnamespace
		CROSS JOIN LATERAL pg_catalog.aclexplode(
		  coalesce(cls.relacl, pg_catalog.acldefault('r', cls.relowner))
		) AS acl(grantor, grantee, privilege_type, is_grantable)
		LEFT JOIN pg_catalog.pg_roles grantee_role ON grantee_role.oid = acl.grantee
		WHERE n.nspname = $1 AND cls.relname = $2
		GROUP BY grantee_role.rolname`, r.schema, name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var grantee string
		var grantable bool
		var privs []string
		if err := rows.Scan(&grantee, pq.Array(&privs), &grantable); err != nil {
			return err
		}
		sort.Strings(privs)
		c.Grants = append(c.Grants, &catalog.Grant{
			Grantee:         grantee,
			ObjectType:      objType,
			ObjectSchema:    r.schema,
			ObjectName:      name,
			ObjectArguments: args,
			Privileges:      privs,
			WithGrantOption: grantable,
			ObjectOwner:     owner,
			IsDefaultACL:    defaultACL,
			Dependencies:    []objectid.ID{objectIDFor(objType, r.schema, name, args)},
		})
	}
	return rows.Err()
}

func objectIDFor(t catalog.GrantObjectType, schema, name, args string) objectid.ID {
	switch t {
	case catalog.GrantOnView:
		return objectid.View(schema, name)
	case catalog.GrantOnSchema:
		return objectid.Schema(name)
	case catalog.GrantOnFunction:
		return objectid.Function(schema, name, args)
	case catalog.GrantOnSequence:
		return objectid.Sequence(schema, name)
	case catalog.GrantOnType:
		return objectid.Type(schema, name)
	case catalog.GrantOnDomain:
		return objectid.Domain(schema, name)
	default:
		return objectid.Table(schema, name)
	}
}
