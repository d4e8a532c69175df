package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgtrunk/pgtrunk/internal/ignore"
	"github.com/pgtrunk/pgtrunk/internal/operation"
	"github.com/pgtrunk/pgtrunk/internal/registry"
)

var (
	materializedViewColumns = []string{"oid", "name", "sql_definition", "tablespace", "with_data", "columns", "comment"}
	viewColumns             = []string{"oid", "name", "sql_definition", "check", "security_invoker", "comment"}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func probeQuery(t *testing.T, r *registry.Registry, kind string) string {
	t.Helper()
	probe, err := r.Kind(kind)
	require.NoError(t, err)
	return probe.Query
}

func expectProbes(t *testing.T, mock sqlmock.Sqlmock, r *registry.Registry) {
	mock.ExpectQuery(probeQuery(t, r, operation.KindMaterializedView)).WillReturnRows(
		sqlmock.NewRows(materializedViewColumns).
			AddRow(int64(11), "public.summary", " SELECT base.id\n   FROM base;", nil, nil, `[{"name": "id", "storage": "main"}]`, "daily summary"),
	)
	mock.ExpectQuery(probeQuery(t, r, operation.KindView)).WillReturnRows(
		sqlmock.NewRows(viewColumns).
			AddRow(int64(21), "public.base", " SELECT 1 AS id;", nil, nil, nil).
			AddRow(int64(22), "public.dashboard", " SELECT summary.id\n   FROM summary;", "local", true, nil),
	)
}

func TestDiscover(t *testing.T) {
	db, mock := newMock(t)
	r := registry.Default()

	expectProbes(t, mock, r)
	mock.ExpectQuery(dependenciesQuery).
		WithArgs("{11,21,22}").
		WillReturnRows(sqlmock.NewRows([]string{"dependent", "dependency"}).
			AddRow(int64(11), int64(21)).
			AddRow(int64(22), int64(11)))

	d := &Discoverer{Registry: r, Querier: db}
	ops, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	var snippets []string
	for _, op := range ops {
		snippets = append(snippets, op.Snippet())
	}
	assert.Equal(t, []string{
		"- create_view: {name: \"public.base\", sql_definition: \"SELECT 1 AS id\"}\n",
		"- create_materialized_view: {name: \"public.summary\", sql_definition: \"SELECT base.id\\n   FROM base\", columns: [{name: \"id\", storage: \"main\"}], comment: \"daily summary\"}\n",
		"- create_view: {name: \"public.dashboard\", sql_definition: \"SELECT summary.id\\n   FROM summary\", check: local, security_invoker: true}\n",
	}, snippets)

	assert.Equal(t, int64(11), ops[1].OID())
	assert.Equal(t, operation.KindMaterializedView, ops[1].Kind())
}

func TestDiscoverFiltersBeforeResolving(t *testing.T) {
	db, mock := newMock(t)
	r := registry.Default()

	expectProbes(t, mock, r)
	mock.ExpectQuery(dependenciesQuery).
		WithArgs("{11}").
		WillReturnRows(sqlmock.NewRows([]string{"dependent", "dependency"}))

	d := &Discoverer{
		Registry: r,
		Querier:  db,
		Ignore:   &ignore.Config{Views: []string{"*"}},
	}
	ops, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, ops, 1)
	assert.Equal(t, "summary", ops[0].Name().Name)
}

func TestDiscoverSchemaFilter(t *testing.T) {
	db, mock := newMock(t)
	r := registry.Default()

	expectProbes(t, mock, r)

	// Nothing survives the filter, so no dependency query is issued.
	d := &Discoverer{Registry: r, Querier: db, Schemas: []string{"reporting"}}
	ops, err := d.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ops)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscoverProbeError(t *testing.T) {
	db, mock := newMock(t)
	r := registry.Default()

	boom := errors.New("connection reset")
	mock.ExpectQuery(probeQuery(t, r, operation.KindMaterializedView)).WillReturnError(boom)

	d := &Discoverer{Registry: r, Querier: db}
	_, err := d.Discover(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to discover materialized_views")
}

func TestDiscoverConcurrent(t *testing.T) {
	db, mock := newMock(t)
	mock.MatchExpectationsInOrder(false)
	r := registry.Default()

	expectProbes(t, mock, r)
	mock.ExpectQuery(dependenciesQuery).
		WithArgs("{11,21,22}").
		WillReturnRows(sqlmock.NewRows([]string{"dependent", "dependency"}))

	d := &Discoverer{Registry: r, Querier: db, Concurrency: 4}
	ops, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	var names []string
	for _, op := range ops {
		names = append(names, op.Name().Lean())
	}
	assert.Equal(t, []string{"public.base", "public.dashboard", "public.summary"}, names)
}

func TestDependenciesWithoutIDs(t *testing.T) {
	db, mock := newMock(t)

	deps, err := Dependencies{Querier: db}.Dependencies(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, deps)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDependenciesError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(dependenciesQuery).WithArgs("{1,2}").WillReturnError(sql.ErrConnDone)

	_, err := Dependencies{Querier: db}.Dependencies(context.Background(), []int64{1, 2})
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestServerVersion(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SHOW server_version_num").
		WillReturnRows(sqlmock.NewRows([]string{"server_version_num"}).AddRow("170002"))

	version, err := ServerVersion(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 170002, version)

	mock.ExpectQuery("SHOW server_version_num").
		WillReturnRows(sqlmock.NewRows([]string{"server_version_num"}).AddRow("seventeen"))
	_, err = ServerVersion(context.Background(), db)
	assert.Error(t, err)
}
