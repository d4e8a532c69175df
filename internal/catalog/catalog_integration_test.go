package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgtrunk/pgtrunk/internal/operation"
	"github.com/pgtrunk/pgtrunk/internal/registry"
	"github.com/pgtrunk/pgtrunk/testutil"
)

func TestDiscoverIntegration(t *testing.T) {
	ctx := context.Background()
	container := testutil.SetupPostgresContainer(ctx, t)

	container.Exec(ctx, t, `
CREATE TABLE orders (id int PRIMARY KEY, total numeric NOT NULL, note text);
CREATE VIEW a_recent AS SELECT id, total FROM orders WHERE id > 100;
CREATE MATERIALIZED VIEW a_totals AS SELECT sum(total) AS total FROM a_recent WITH NO DATA;
ALTER MATERIALIZED VIEW a_totals ALTER COLUMN total SET STORAGE external;
COMMENT ON MATERIALIZED VIEW a_totals IS 'totals';
CREATE VIEW a_report WITH (security_invoker = true) AS SELECT total FROM a_totals;
`)

	version, err := ServerVersion(ctx, container.Conn)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, 150000)

	d := &Discoverer{Registry: registry.Default(), Querier: container.Conn}
	ops, err := d.Discover(ctx)
	require.NoError(t, err)

	var names []string
	for _, op := range ops {
		names = append(names, op.Name().Lean())
	}
	// Alphabetical order would put a_recent before a_report before a_totals.
	assert.Equal(t, []string{"public.a_recent", "public.a_totals", "public.a_report"}, names)

	totals := ops[1].Attrs()
	assert.Equal(t, operation.VerbCreateMaterializedView, ops[1].Verb())
	assert.False(t, totals.GetBool("with_data"))
	assert.True(t, totals.Has("with_data"))
	assert.Equal(t, "totals", totals.GetString("comment"))
	require.Len(t, totals.GetColumns("columns"), 1)
	assert.Equal(t, "external", totals.GetColumns("columns")[0].Storage)

	assert.True(t, ops[2].Attrs().GetBool("security_invoker"))

	// Discovered operations are valid.
	for _, op := range ops {
		assert.Empty(t, op.Validate(), op.Snippet())
	}
}
