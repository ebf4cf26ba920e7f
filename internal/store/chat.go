package store

import (
	"context"
	"fmt"

	"github.com/starford/webcraft/internal/models"
)

// AppendMessage adds m to the end of its project's chat log.
func (db *DB) AppendMessage(ctx context.Context, m models.ChatMessage) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO chat_messages (id, project_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.ProjectID, m.Role, m.Content, m.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("store: append message: %w", err)
	}
	return nil
}

// ChatHistory returns a project's messages in append order.
func (db *DB) ChatHistory(ctx context.Context, projectID string) ([]models.ChatMessage, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, project_id, role, content, created_at
		FROM chat_messages
		WHERE project_id = ?
		ORDER BY seq ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: chat history: %w", err)
	}
	defer rows.Close()

	out := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
