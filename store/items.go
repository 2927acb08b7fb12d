package store

import (
	"context"
	"fmt"

	"github.com/c360/semquery/types"
)

// ItemRecord is an item plus its owner, as stored in the corpus.
type ItemRecord struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Text  string `json:"text"`
}

// UpsertItems inserts or replaces corpus items in one transaction.
func (s *Store) UpsertItems(ctx context.Context, items []ItemRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning item upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (id, owner, text) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner = excluded.owner, text = excluded.text`)
	if err != nil {
		return fmt.Errorf("preparing item upsert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("item with empty id")
		}
		if _, err := stmt.ExecContext(ctx, item.ID, item.Owner, item.Text); err != nil {
			return fmt.Errorf("upserting item %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

// ListItems returns the classification corpus ordered by id.
func (s *Store) ListItems(ctx context.Context) ([]types.Item, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, text FROM items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var out []types.Item
	for rows.Next() {
		var item types.Item
		if err := rows.Scan(&item.ID, &item.Text); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
