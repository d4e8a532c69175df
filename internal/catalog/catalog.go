// Package catalog reads live objects and their dependencies from a
// PostgreSQL catalog.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// scanMaps reads every row into a map keyed by column name. NULL columns are
// omitted and byte slices are returned as strings.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			switch v := values[i].(type) {
			case nil:
				continue
			case []byte:
				row[column] = string(v)
			default:
				row[column] = v
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ServerVersion returns server_version_num, e.g. 170002.
func ServerVersion(ctx context.Context, q Querier) (int, error) {
	rows, err := q.QueryContext(ctx, "SHOW server_version_num")
	if err != nil {
		return 0, fmt.Errorf("failed to query server version: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("failed to query server version: %w", err)
		}
		return 0, fmt.Errorf("failed to query server version: no rows")
	}
	var raw string
	if err := rows.Scan(&raw); err != nil {
		return 0, fmt.Errorf("failed to scan server version: %w", err)
	}

	version, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid server version %q: %w", raw, err)
	}
	return version, nil
}
