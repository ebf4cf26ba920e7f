//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/webcraft/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS templates_fts USING fts5(
			id UNINDEXED,
			name,
			category,
			description,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, name, category, description string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM templates_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO templates_fts (id, name, category, description, tags) VALUES (?, ?, ?, ?, ?)`,
		id, name, category, description, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM templates_fts WHERE id = ?`, id)
}

// SearchTemplates runs an FTS5 query over template name, category,
// description and tags.
func (db *DB) SearchTemplates(ctx context.Context, query string, limit int) ([]models.Template, error) {
	if limit <= 0 {
		limit = 20
	}
	return db.queryTemplates(ctx, `
		SELECT t.id, t.name, t.category, t.tags, t.description, t.preview_image_url
		FROM templates_fts f
		JOIN templates t ON t.id = f.id
		WHERE templates_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
}
