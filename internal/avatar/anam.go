// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package avatar brokers Anam video-avatar sessions through the TotiRoom
// video-avatar edge function. The function holds the Anam API key and
// persona; this side only relays the short-lived session token.
package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no TotiRoom anon key is available.
var ErrNotConfigured = errors.New("avatar: credentials not configured")

// UpstreamError carries a non-2xx edge function response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("avatar: upstream status %d: %s", e.Status, e.Body)
}

// Session is what the widget needs to start a video call.
type Session struct {
	SessionToken  string `json:"sessionToken"`
	PersonaID     string `json:"personaId,omitempty"`
	ContextLoaded bool   `json:"contextLoaded,omitempty"`
}

// Provider creates video-avatar sessions.
type Provider interface {
	CreateSession(ctx context.Context) (*Session, error)
}

// TotiRoomProvider implements Provider against the video-avatar edge function.
type TotiRoomProvider struct {
	url     string
	anonKey string
	client  *http.Client
}

// New creates a provider. functionsURL is the edge functions base
// (".../functions/v1").
func New(functionsURL, anonKey string) *TotiRoomProvider {
	return &TotiRoomProvider{
		url:     functionsURL + "/video-avatar",
		anonKey: anonKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type createSessionRequest struct {
	Action string            `json:"action"`
	Data   createSessionData `json:"data"`
}

type createSessionData struct {
	IncludeContext bool `json:"includeContext"`
}

type createSessionResponse struct {
	Success       bool   `json:"success"`
	SessionToken  string `json:"sessionToken"`
	PersonaID     string `json:"personaId"`
	ContextLoaded bool   `json:"contextLoaded"`
	Error         string `json:"error"`
}

// CreateSession asks the edge function for a new Anam session token with the
// unified Toti context loaded.
func (p *TotiRoomProvider) CreateSession(ctx context.Context) (*Session, error) {
	if p.anonKey == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(createSessionRequest{
		Action: "create_session",
		Data:   createSessionData{IncludeContext: true},
	})
	if err != nil {
		return nil, fmt.Errorf("avatar marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("avatar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.anonKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("avatar http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("avatar read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var result createSessionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("avatar unmarshal: %w", err)
	}
	if !result.Success || result.SessionToken == "" {
		msg := result.Error
		if msg == "" {
			msg = "response missing sessionToken"
		}
		return nil, fmt.Errorf("avatar: %s", msg)
	}

	return &Session{
		SessionToken:  result.SessionToken,
		PersonaID:     result.PersonaID,
		ContextLoaded: result.ContextLoaded,
	}, nil
}
