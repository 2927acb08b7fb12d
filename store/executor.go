package store

import (
	"context"

	"github.com/c360/semquery/errors"
	"github.com/c360/semquery/types"
)

// Execute runs compiled query text and returns the raw columns and rows.
// A rejection carries the compiled text and branch tag so the caller can
// report exactly what the store refused. Only queries are accepted; the
// compilation path never produces statements.
func (s *Store) Execute(ctx context.Context, compiled *types.CompiledQuery) ([]string, [][]any, error) {
	rows, err := s.db.QueryContext(ctx, compiled.Text)
	if err != nil {
		return nil, nil, errors.WrapExecution(err, "Store", "Execute",
			"run compiled query", compiled.Text, compiled.Branch.String())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, errors.WrapExecution(err, "Store", "Execute",
			"read result columns", compiled.Text, compiled.Branch.String())
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, errors.WrapExecution(err, "Store", "Execute",
				"scan result row", compiled.Text, compiled.Branch.String())
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.WrapExecution(err, "Store", "Execute",
			"iterate result rows", compiled.Text, compiled.Branch.String())
	}
	return columns, out, nil
}
