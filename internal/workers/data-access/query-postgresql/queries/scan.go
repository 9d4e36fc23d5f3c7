// internal/workers/data-access/query-postgresql/queries/scan.go
package queries

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
)

// arrayColumns are text[] columns decoded into []string.
var arrayColumns = map[string]bool{
	"skills":    true,
	"group_ids": true,
}

// list runs query and returns one map per row keyed by camelCase column name.
func list(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]map[string]interface{}, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, 0, err
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		dest := make([]interface{}, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}

		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[camelCase(col)] = normalize(col, values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return results, time.Since(start).Milliseconds(), nil
}

// one is list for queries keyed by id. No row gives ErrNotFound.
func one(ctx context.Context, db *sql.DB, query string, args ...interface{}) (map[string]interface{}, int64, error) {
	rows, execTime, err := list(ctx, db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, ErrNotFound
	}
	return rows[0], execTime, nil
}

func normalize(col string, v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		if arrayColumns[col] {
			var arr pq.StringArray
			if err := arr.Scan(val); err == nil {
				return []string(arr)
			}
		}
		return string(val)
	case string:
		if arrayColumns[col] && strings.HasPrefix(val, "{") {
			var arr pq.StringArray
			if err := arr.Scan(val); err == nil {
				return []string(arr)
			}
		}
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return val
	}
}

func camelCase(col string) string {
	parts := strings.Split(col, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
