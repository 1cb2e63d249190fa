// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package chatlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"totisite/internal/models"
)

// PostgresStore persists transcripts in a directly-connected PostgreSQL
// database, bypassing PostgREST. Selected when a database URL is configured;
// useful for self-hosted deployments that do not run the hosted backend.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres creates a store over an open connection pool. The schema is
// managed by the database package's migrations.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Messages returns the session transcript in creation order.
func (s *PostgresStore) Messages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM toti_chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("chatlog messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("chatlog scan: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatlog rows: %w", err)
	}
	return msgs, nil
}

// Append saves one message, creating the session row first if needed.
func (s *PostgresStore) Append(ctx context.Context, sessionID, visitorID string, msg Message) error {
	if visitorID == "" {
		visitorID = sessionID
	}
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("chatlog begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO toti_chat_sessions (id, visitor_id, started_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, sessionID, visitorID, s.now())
	if err != nil {
		return fmt.Errorf("chatlog session upsert: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO toti_chat_messages (session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)
	`, sessionID, string(msg.Role), msg.Content, createdAt)
	if err != nil {
		return fmt.Errorf("chatlog message insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("chatlog commit: %w", err)
	}
	return nil
}
