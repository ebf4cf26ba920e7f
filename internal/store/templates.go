package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/models"
)

const templateColumns = `id, name, category, tags, description, preview_image_url`

func scanTemplate(s scanner) (models.Template, error) {
	var t models.Template
	var tags string
	if err := s.Scan(&t.ID, &t.Name, &t.Category, &tags, &t.Description, &t.PreviewImageURL); err != nil {
		return t, err
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil || t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func (db *DB) queryTemplates(ctx context.Context, query string, args ...any) ([]models.Template, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: templates: %w", err)
	}
	defer rows.Close()

	out := []models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TemplateRow is a catalogue entry together with its bookkeeping columns.
type TemplateRow struct {
	models.Template
	Source   string // catalogue the document came from
	Checksum string // digest of the source document
	Position int    // display order within the catalogue
}

// UpsertTemplate inserts or replaces a template and its FTS entry.
func (db *DB) UpsertTemplate(ctx context.Context, row TemplateRow) error {
	t := row.Template
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO templates (`+templateColumns+`, source, checksum, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name              = excluded.name,
			category          = excluded.category,
			tags              = excluded.tags,
			description       = excluded.description,
			preview_image_url = excluded.preview_image_url,
			source            = excluded.source,
			checksum          = excluded.checksum,
			position          = excluded.position
	`, t.ID, t.Name, t.Category, string(tagsJSON), t.Description, t.PreviewImageURL, row.Source, row.Checksum, row.Position)
	if err != nil {
		return fmt.Errorf("store: upsert template: %w", err)
	}

	if err := ftsUpsert(tx, t.ID, t.Name, t.Category, t.Description, tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteTemplate removes a template and its FTS entry.
func (db *DB) DeleteTemplate(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete template: %w", err)
	}
	return tx.Commit()
}

// ListTemplates returns the whole catalogue in display order.
func (db *DB) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return db.queryTemplates(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY position, id`)
}

// TemplatesByCategory returns templates whose category matches exactly.
func (db *DB) TemplatesByCategory(ctx context.Context, category string) ([]models.Template, error) {
	return db.queryTemplates(ctx, `SELECT `+templateColumns+` FROM templates WHERE category = ? ORDER BY position, id`, category)
}

// GetTemplate returns the template with id or apperr.ErrNotFound.
func (db *DB) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get template: %w", err)
	}
	return &t, nil
}

// TemplateChecksums maps template id to stored checksum for one source.
func (db *DB) TemplateChecksums(ctx context.Context, source string) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, checksum FROM templates WHERE source = ?`, source)
	if err != nil {
		return nil, fmt.Errorf("store: template checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
