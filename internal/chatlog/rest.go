// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package chatlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"totisite/internal/models"
	"totisite/internal/postgrest"
)

const (
	tableSessions = "toti_chat_sessions"
	tableMessages = "toti_chat_messages"
)

// RestStore persists transcripts through the TotiRoom PostgREST API. This is
// the default store; everything stays in the hosted backend.
type RestStore struct {
	rest *postgrest.Client
	now  func() time.Time
}

// NewRest creates a PostgREST-backed store.
func NewRest(rest *postgrest.Client) *RestStore {
	return &RestStore{rest: rest, now: time.Now}
}

// Messages returns the session transcript in creation order.
func (s *RestStore) Messages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.rest.Select(ctx, postgrest.Query{
		Table:   tableMessages,
		Filters: []postgrest.Filter{postgrest.Eq("session_id", sessionID)},
		Order:   "created_at.asc",
	}, &msgs)
	if err != nil {
		return nil, fmt.Errorf("chatlog messages: %w", err)
	}
	return msgs, nil
}

// Append saves one message, creating the session row first if needed.
func (s *RestStore) Append(ctx context.Context, sessionID, visitorID string, msg Message) error {
	if err := s.ensureSession(ctx, sessionID, visitorID); err != nil {
		return err
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	payload := map[string]any{
		"session_id": sessionID,
		"role":       string(msg.Role),
		"content":    msg.Content,
		"created_at": createdAt.UTC().Format(time.RFC3339),
	}
	if err := s.rest.Insert(ctx, tableMessages, payload, nil); err != nil {
		return fmt.Errorf("chatlog append: %w", err)
	}
	return nil
}

func (s *RestStore) ensureSession(ctx context.Context, sessionID, visitorID string) error {
	var existing []struct {
		ID string `json:"id"`
	}
	err := s.rest.Select(ctx, postgrest.Query{
		Table:   tableSessions,
		Select:  "id",
		Filters: []postgrest.Filter{postgrest.Eq("id", sessionID)},
		Limit:   1,
	}, &existing)
	if err != nil {
		return fmt.Errorf("chatlog session lookup: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	if visitorID == "" {
		visitorID = sessionID
	}
	payload := map[string]any{
		"id":         sessionID,
		"visitor_id": visitorID,
		"started_at": s.now().UTC().Format(time.RFC3339),
	}
	if err := s.rest.Insert(ctx, tableSessions, payload, nil); err != nil {
		// A concurrent Append may have created it between lookup and
		// insert; a duplicate is success here.
		var ue *postgrest.UpstreamError
		if errors.As(err, &ue) && ue.IsDuplicate() {
			return nil
		}
		return fmt.Errorf("chatlog session create: %w", err)
	}
	return nil
}
