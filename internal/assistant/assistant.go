// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assistant powers the visitor chat. Providers are tried in the
// configured order (hosted TotiRoom function first, then the direct
// Anthropic path); when none is configured or every call fails, a
// deterministic keyword responder answers instead.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Message is one chat turn, role "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the assistant's answer. Fallback marks canned responses so the
// widget can adjust its affordances; Usage relays provider token accounting
// when the upstream supplies it.
type Reply struct {
	Message  string          `json:"message"`
	Fallback bool            `json:"fallback,omitempty"`
	Usage    json.RawMessage `json:"usage,omitempty"`
}

// Provider is one way of producing a reply from the conversation so far.
type Provider interface {
	// Name returns the provider identifier (e.g. "totiroom", "claude").
	Name() string

	// Converse sends the message history and returns the assistant's reply.
	Converse(ctx context.Context, messages []Message, sessionID string) (*Reply, error)
}

// Service sequences providers and owns the fallback responder.
type Service struct {
	providers []Provider
	fallback  *Responder
}

// NewService creates the assistant service. providers may be empty; the
// fallback responder then answers everything.
func NewService(providers ...Provider) *Service {
	return &Service{
		providers: providers,
		fallback:  NewResponder(),
	}
}

// Converse returns a reply for the given history. Provider errors are
// non-fatal: they are logged and the next provider (finally the fallback)
// takes over. An error is only returned for an empty message list.
func (s *Service) Converse(ctx context.Context, messages []Message, sessionID string) (*Reply, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("assistant: no messages provided")
	}

	for _, p := range s.providers {
		reply, err := p.Converse(ctx, messages, sessionID)
		if err != nil {
			slog.Error("assistant provider failed", "provider", p.Name(), "error", err)
			continue
		}
		return reply, nil
	}

	last := messages[len(messages)-1]
	return &Reply{
		Message:  s.fallback.Respond(last.Content),
		Fallback: true,
	}, nil
}
