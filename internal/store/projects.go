package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/models"
)

const projectColumns = `id, owner, name, description, prompt, status, preview_url, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (models.Project, error) {
	var p models.Project
	var status string
	err := s.Scan(&p.ID, &p.Owner, &p.Name, &p.Description, &p.Prompt, &status, &p.PreviewURL, &p.CreatedAt, &p.UpdatedAt)
	p.Status = models.ProjectStatus(status)
	return p, err
}

// CreateProject inserts a new project row.
func (db *DB) CreateProject(ctx context.Context, p models.Project) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Owner, p.Name, p.Description, p.Prompt, string(p.Status), p.PreviewURL, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: create project: %w", err)
	}
	return nil
}

// GetProject returns the project with id or apperr.ErrNotFound.
func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns every project owned by owner in creation order.
func (db *DB) ListProjects(ctx context.Context, owner string) ([]models.Project, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE owner = ?
		ORDER BY created_at ASC, id ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProject replaces the editable fields of a project.
func (db *DB) UpdateProject(ctx context.Context, id, name, description, prompt, previewURL string, now time.Time) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, prompt = ?, preview_url = ?, updated_at = ?
		WHERE id = ?
	`, name, description, prompt, previewURL, now.UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update project: %w", err)
	}
	return expectOne(res)
}

// UpdateProjectStatus sets the lifecycle status.
func (db *DB) UpdateProjectStatus(ctx context.Context, id string, status models.ProjectStatus, now time.Time) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE projects SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), now.UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update project status: %w", err)
	}
	return expectOne(res)
}

// DeleteProject removes a project together with its chat log and blocks.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
