package store

import (
	"context"
	"fmt"

	"github.com/starford/webcraft/internal/blocks"
	"github.com/starford/webcraft/internal/editor"
)

// LoadBlocks returns a project's saved page in display order.
func (db *DB) LoadBlocks(ctx context.Context, projectID string) ([]editor.Block, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, block_type, content FROM blocks
		WHERE project_id = ?
		ORDER BY position ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: load blocks: %w", err)
	}
	defer rows.Close()

	out := []editor.Block{}
	for rows.Next() {
		var b editor.Block
		var typ string
		if err := rows.Scan(&b.ID, &typ, &b.Content); err != nil {
			return nil, err
		}
		b.BlockType = blocks.BlockType(typ)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReplaceBlocks overwrites a project's page with list, in order.
func (db *DB) ReplaceBlocks(ctx context.Context, projectID string, list []editor.Block) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("store: clear blocks: %w", err)
	}
	for i, b := range list {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO blocks (id, project_id, position, block_type, content)
			VALUES (?, ?, ?, ?, ?)
		`, b.ID, projectID, i, string(b.BlockType), b.Content); err != nil {
			return fmt.Errorf("store: insert block: %w", err)
		}
	}
	return tx.Commit()
}
