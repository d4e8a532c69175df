package operation

// Probe discovers live objects of one kind. The query returns an oid column, a
// name column formatted as a qualified name, and columns named after the
// attributes of Verb. Each row becomes one Verb operation.
type Probe struct {
	Kind  string
	Verb  string
	Query string
}

// Probes returns the discovery probes in registration order.
func Probes() []Probe {
	return []Probe{
		{Kind: KindMaterializedView, Verb: VerbCreateMaterializedView, Query: materializedViewsQuery},
		{Kind: KindView, Verb: VerbCreateView, Query: viewsQuery},
	}
}

// Objects in system schemas or owned by extensions are never reported.
const userRelationFilter = `
  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
  AND n.nspname NOT LIKE 'pg_toast%'
  AND n.nspname NOT LIKE 'pg_temp_%'
  AND NOT EXISTS (
    SELECT 1 FROM pg_depend d
    WHERE d.classid = 'pg_class'::regclass
      AND d.objid = c.oid
      AND d.deptype = 'e'
  )`

// with_data is reported only for unpopulated views; columns lists storage
// overrides that differ from the type default.
const materializedViewsQuery = `
SELECT
  c.oid::bigint AS oid,
  format('%I.%I', n.nspname, c.relname) AS name,
  pg_get_viewdef(c.oid) AS sql_definition,
  t.spcname AS tablespace,
  CASE WHEN c.relispopulated THEN NULL ELSE false END AS with_data,
  (
    SELECT json_agg(json_build_object(
      'name', a.attname,
      'storage', CASE a.attstorage
        WHEN 'p' THEN 'plain'
        WHEN 'e' THEN 'external'
        WHEN 'm' THEN 'main'
        ELSE 'extended'
      END
    ) ORDER BY a.attnum)::text
    FROM pg_attribute a
    JOIN pg_type ty ON ty.oid = a.atttypid
    WHERE a.attrelid = c.oid
      AND a.attnum > 0
      AND NOT a.attisdropped
      AND a.attstorage <> ty.typstorage
  ) AS columns,
  obj_description(c.oid, 'pg_class') AS comment
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_tablespace t ON t.oid = c.reltablespace
WHERE c.relkind = 'm'` + userRelationFilter + `
ORDER BY n.nspname, c.relname`

const viewsQuery = `
SELECT
  c.oid::bigint AS oid,
  format('%I.%I', n.nspname, c.relname) AS name,
  pg_get_viewdef(c.oid) AS sql_definition,
  (
    SELECT substring(o FROM 'check_option=(.*)')
    FROM unnest(c.reloptions) AS o
    WHERE o LIKE 'check_option=%'
  ) AS "check",
  CASE WHEN c.reloptions && ARRAY['security_invoker=true', 'security_invoker=on', 'security_invoker=1']
    THEN true END AS security_invoker,
  obj_description(c.oid, 'pg_class') AS comment
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE c.relkind = 'v'` + userRelationFilter + `
ORDER BY n.nspname, c.relname`
