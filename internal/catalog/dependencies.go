package catalog

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

// Both relation-level edges and the edges recorded on a view's rewrite rule are
// reported against the owning relation. Only edges between the given oids are
// returned.
const dependenciesQuery = `
SELECT d.objid::bigint AS dependent, d.refobjid::bigint AS dependency
FROM pg_depend d
WHERE d.classid = 'pg_class'::regclass
  AND d.refclassid = 'pg_class'::regclass
  AND d.objid = ANY($1::oid[])
  AND d.refobjid = ANY($1::oid[])
  AND d.objid <> d.refobjid
UNION
SELECT r.ev_class::bigint AS dependent, d.refobjid::bigint AS dependency
FROM pg_rewrite r
JOIN pg_depend d
  ON d.classid = 'pg_rewrite'::regclass
 AND d.objid = r.oid
 AND d.refclassid = 'pg_class'::regclass
WHERE r.ev_class = ANY($1::oid[])
  AND d.refobjid = ANY($1::oid[])
  AND r.ev_class <> d.refobjid
ORDER BY dependent, dependency`

// Dependencies fetches dependency edges with a single catalog query. It
// implements resolver.Fetcher.
type Dependencies struct {
	Querier Querier
}

func (d Dependencies) Dependencies(ctx context.Context, ids []int64) (map[int64][]int64, error) {
	deps := make(map[int64][]int64)
	if len(ids) == 0 {
		return deps, nil
	}

	rows, err := d.Querier.QueryContext(ctx, dependenciesQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query pg_depend: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dependent, dependency int64
		if err := rows.Scan(&dependent, &dependency); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		deps[dependent] = append(deps[dependent], dependency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dependencies: %w", err)
	}
	return deps, nil
}
