// Package normalizer converts raw tabular rows into canonical field-value
// mappings with uniform null handling, so downstream serialization never
// special-cases NaN, SQL NULL, or absent cells.
package normalizer

import (
	"database/sql"
	"math"
	"time"

	"github.com/c360/semquery/types"
)

// Normalize maps every raw row onto the declared column set. Each output row
// carries every column; cells that are missing, SQL NULL, or numeric NaN
// become explicit nil values. Column order is preserved from the declaration.
func Normalize(columns []string, rows []map[string]any) []types.NormalizedRow {
	out := make([]types.NormalizedRow, 0, len(rows))
	for _, row := range rows {
		values := make(map[string]any, len(columns))
		for _, col := range columns {
			values[col] = normalizeValue(row[col])
		}
		out = append(out, types.NormalizedRow{Columns: columns, Values: values})
	}
	return out
}

// NormalizeOrdered is the positional variant used with database/sql results:
// each row is a value slice aligned with the column list. Short rows are
// padded with nils.
func NormalizeOrdered(columns []string, rows [][]any) []types.NormalizedRow {
	out := make([]types.NormalizedRow, 0, len(rows))
	for _, row := range rows {
		values := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(row) {
				values[col] = normalizeValue(row[i])
			} else {
				values[col] = nil
			}
		}
		out = append(out, types.NormalizedRow{Columns: columns, Values: values})
	}
	return out
}

// normalizeValue collapses every null-ish sentinel to nil and unwraps sql
// Null* scanner types.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val
	case []byte:
		return string(val)
	case sql.NullString:
		if !val.Valid {
			return nil
		}
		return val.String
	case sql.NullInt64:
		if !val.Valid {
			return nil
		}
		return val.Int64
	case sql.NullFloat64:
		if !val.Valid || math.IsNaN(val.Float64) {
			return nil
		}
		return val.Float64
	case sql.NullTime:
		if !val.Valid || val.Time.IsZero() {
			return nil
		}
		return val.Time
	case sql.NullBool:
		if !val.Valid {
			return nil
		}
		return val.Bool
	default:
		return v
	}
}
