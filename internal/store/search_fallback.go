//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"

	"github.com/starford/webcraft/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; SearchTemplates uses LIKE over the templates table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string, _ []string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// SearchTemplates performs a case-insensitive LIKE search (fallback when
// FTS5 is not compiled in).
func (db *DB) SearchTemplates(ctx context.Context, query string, limit int) ([]models.Template, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	return db.queryTemplates(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE name LIKE ? OR category LIKE ? OR description LIKE ? OR tags LIKE ?
		ORDER BY position, id
		LIMIT ?
	`, like, like, like, like, limit)
}
