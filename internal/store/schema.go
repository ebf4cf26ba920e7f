// Package store provides the SQLite-backed datastore behind the backend
// interface: projects, chat logs, templates, user settings, profiles, roles
// and editor blocks.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	owner       TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	prompt      TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'draft',
	preview_url TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner);

CREATE TABLE IF NOT EXISTS chat_messages (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_project ON chat_messages(project_id, seq);

CREATE TABLE IF NOT EXISTS templates (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	category          TEXT NOT NULL DEFAULT '',
	tags              TEXT NOT NULL DEFAULT '[]',
	description       TEXT NOT NULL DEFAULT '',
	preview_image_url TEXT NOT NULL DEFAULT '',
	source            TEXT NOT NULL DEFAULT '',
	checksum          TEXT NOT NULL DEFAULT '',
	position          INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_templates_category ON templates(category);

CREATE TABLE IF NOT EXISTS user_settings (
	principal             TEXT PRIMARY KEY,
	theme                 TEXT NOT NULL,
	notifications_enabled INTEGER NOT NULL,
	plan                  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_profiles (
	principal    TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	avatar_url   TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
	principal TEXT PRIMARY KEY,
	role      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS blocks (
	id         TEXT NOT NULL,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	block_type TEXT NOT NULL,
	content    TEXT NOT NULL,
	PRIMARY KEY (project_id, id)
);

CREATE INDEX IF NOT EXISTS idx_blocks_project ON blocks(project_id, position);
`

// DB wraps a sql.DB with datastore operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping checks the database connection.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
