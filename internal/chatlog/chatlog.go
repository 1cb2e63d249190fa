// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package chatlog persists visitor chat transcripts. Sessions are created
// lazily on the first appended message, so the widget never has to make a
// separate "start session" call.
package chatlog

import (
	"context"
	"time"

	"totisite/internal/models"
)

// Message is an utterance to append. CreatedAt zero means "now".
type Message struct {
	Role      models.MessageRole
	Content   string
	CreatedAt time.Time
}

// Store reads and appends chat transcripts.
type Store interface {
	// Messages returns the session's transcript in creation order. An
	// unknown session yields an empty slice, not an error.
	Messages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)

	// Append saves one message, creating the session row if it does not
	// exist yet. visitorID defaults to sessionID when empty.
	Append(ctx context.Context, sessionID, visitorID string, msg Message) error
}
