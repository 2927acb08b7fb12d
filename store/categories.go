package store

import (
	"context"
	"fmt"

	"github.com/c360/semquery/types"
)

// ReplaceCorpus swaps the category set and its assignment set together in one
// transaction. Category ids are assigned sequentially from 1 in slice order.
// Readers see either the previous corpus or the committed new one, never the
// window between truncate and insert, and a swap that fails partway leaves the
// previous corpus untouched.
func (s *Store) ReplaceCorpus(ctx context.Context, runID string, categories []types.Category, assignments []types.Assignment) ([]types.Category, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning corpus swap: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM assignments"); err != nil {
		return nil, fmt.Errorf("clearing stale assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM categories"); err != nil {
		return nil, fmt.Errorf("truncating categories: %w", err)
	}

	catStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO categories (id, label, description, embedding) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("preparing category insert: %w", err)
	}
	defer catStmt.Close()

	out := make([]types.Category, 0, len(categories))
	for i, cat := range categories {
		cat.ID = i + 1
		if _, err := catStmt.ExecContext(ctx, cat.ID, cat.Label, cat.Description,
			encodeEmbedding(cat.Embedding)); err != nil {
			return nil, fmt.Errorf("inserting category %q: %w", cat.Label, err)
		}
		out = append(out, cat)
	}

	asgStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO assignments (item_id, category_id, run_id) VALUES (?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("preparing assignment insert: %w", err)
	}
	defer asgStmt.Close()

	for _, a := range assignments {
		if _, err := asgStmt.ExecContext(ctx, a.ItemID, a.CategoryID, runID); err != nil {
			return nil, fmt.Errorf("inserting assignment for %s: %w", a.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing corpus swap: %w", err)
	}
	return out, nil
}

// ListCategories returns the category set ordered by id, embeddings included.
func (s *Store) ListCategories(ctx context.Context) ([]types.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, label, description, embedding FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []types.Category
	for rows.Next() {
		var cat types.Category
		var blob []byte
		if err := rows.Scan(&cat.ID, &cat.Label, &cat.Description, &blob); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cat.Embedding = decodeEmbedding(blob)
		out = append(out, cat)
	}
	return out, rows.Err()
}
