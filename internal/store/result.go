package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Row maps column name to value.
type Row map[string]any

// ResultSet is the ordered output of a query. Columns keeps the select-list order
// since Row is unordered.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Empty reports whether the result has no rows.
func (r *ResultSet) Empty() bool {
	return r.Len() == 0
}

// Values returns the row's values in column order.
func (r *ResultSet) Values(i int) []any {
	out := make([]any, len(r.Columns))
	for j, col := range r.Columns {
		out[j] = r.Rows[i][col]
	}
	return out
}

// scanRows drains rows into a ResultSet.
func scanRows(rows *sql.Rows) (*ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	out := &ResultSet{Columns: cols, Rows: []Row{}}
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		out.Rows = append(out.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
