package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/models"
)

// GetSettings returns the stored settings for principal or apperr.ErrNotFound.
func (db *DB) GetSettings(ctx context.Context, principal string) (*models.UserSettings, error) {
	var s models.UserSettings
	err := db.conn.QueryRowContext(ctx, `
		SELECT theme, notifications_enabled, plan FROM user_settings WHERE principal = ?
	`, principal).Scan(&s.Theme, &s.NotificationsEnabled, &s.Plan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get settings: %w", err)
	}
	return &s, nil
}

// SaveSettings upserts the settings row for principal.
func (db *DB) SaveSettings(ctx context.Context, principal string, s models.UserSettings) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_settings (principal, theme, notifications_enabled, plan)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET
			theme                 = excluded.theme,
			notifications_enabled = excluded.notifications_enabled,
			plan                  = excluded.plan
	`, principal, s.Theme, s.NotificationsEnabled, s.Plan)
	if err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	return nil
}

// GetProfile returns the stored profile for principal or apperr.ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, principal string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := db.conn.QueryRowContext(ctx, `
		SELECT display_name, avatar_url, created_at FROM user_profiles WHERE principal = ?
	`, principal).Scan(&p.DisplayName, &p.AvatarURL, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get profile: %w", err)
	}
	return &p, nil
}

// SaveProfile upserts a profile. The creation time of an existing row is kept.
func (db *DB) SaveProfile(ctx context.Context, principal string, p models.UserProfile) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_profiles (principal, display_name, avatar_url, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET
			display_name = excluded.display_name,
			avatar_url   = excluded.avatar_url
	`, principal, p.DisplayName, p.AvatarURL, p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: save profile: %w", err)
	}
	return nil
}

// GetRole returns the role assigned to principal or apperr.ErrNotFound.
func (db *DB) GetRole(ctx context.Context, principal string) (models.UserRole, error) {
	var role string
	err := db.conn.QueryRowContext(ctx, `SELECT role FROM user_roles WHERE principal = ?`, principal).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get role: %w", err)
	}
	return models.UserRole(role), nil
}

// SetRole assigns role to principal.
func (db *DB) SetRole(ctx context.Context, principal string, role models.UserRole) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_roles (principal, role) VALUES (?, ?)
		ON CONFLICT(principal) DO UPDATE SET role = excluded.role
	`, principal, string(role))
	if err != nil {
		return fmt.Errorf("store: set role: %w", err)
	}
	return nil
}

// HasAdmin reports whether any principal holds the admin role.
func (db *DB) HasAdmin(ctx context.Context) (bool, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM user_roles WHERE role = ?`, string(models.UserRoleAdmin)).Scan(&n); err != nil {
		return false, fmt.Errorf("store: count admins: %w", err)
	}
	return n > 0, nil
}
