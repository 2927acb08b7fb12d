package store

import (
	"context"
	"fmt"
)

// AssignmentView joins an assignment with its category label for listing.
type AssignmentView struct {
	ItemID        string `json:"item_id"`
	CategoryID    int    `json:"category_id"`
	CategoryLabel string `json:"category_label"`
	RunID         string `json:"run_id"`
}

// OwnerCategoryCount is one row of the per-owner category breakdown.
type OwnerCategoryCount struct {
	Owner         string `json:"owner"`
	CategoryLabel string `json:"category_label"`
	Count         int    `json:"count"`
}

// ListAssignments returns the current assignment set joined with category
// labels, ordered by item id.
func (s *Store) ListAssignments(ctx context.Context) ([]AssignmentView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.item_id, a.category_id, c.label, a.run_id
		FROM assignments a JOIN categories c ON c.id = a.category_id
		ORDER BY a.item_id`)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var out []AssignmentView
	for rows.Next() {
		var v AssignmentView
		if err := rows.Scan(&v.ItemID, &v.CategoryID, &v.CategoryLabel, &v.RunID); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountByOwner returns how many items each owner has in each category.
// An empty owner filters nothing.
func (s *Store) CountByOwner(ctx context.Context, owner string) ([]OwnerCategoryCount, error) {
	query := `
		SELECT i.owner, c.label, COUNT(*)
		FROM assignments a
		JOIN items i ON i.id = a.item_id
		JOIN categories c ON c.id = a.category_id`
	args := []any{}
	if owner != "" {
		query += " WHERE i.owner = ?"
		args = append(args, owner)
	}
	query += " GROUP BY i.owner, c.label ORDER BY i.owner, c.label"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting assignments by owner: %w", err)
	}
	defer rows.Close()

	var out []OwnerCategoryCount
	for rows.Next() {
		var c OwnerCategoryCount
		if err := rows.Scan(&c.Owner, &c.CategoryLabel, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning owner count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
