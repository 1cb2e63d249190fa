// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// hostedProvider forwards conversations to the TotiRoom chat edge function,
// which runs the model with the unified Toti context server-side.
type hostedProvider struct {
	chatURL string
	anonKey string
	client  *http.Client
}

// NewHosted creates the TotiRoom chat provider. functionsURL is the edge
// functions base (".../functions/v1").
func NewHosted(functionsURL, anonKey string) Provider {
	return &hostedProvider{
		chatURL: functionsURL + "/chat",
		anonKey: anonKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *hostedProvider) Name() string { return "totiroom" }

type hostedRequest struct {
	Messages       []Message `json:"messages"`
	SessionID      string    `json:"sessionId"`
	IncludeContext bool      `json:"includeContext"` // admin context stays off for visitors
	VisitorContext string    `json:"visitorContext"`
}

type hostedResponse struct {
	Message string          `json:"message"`
	Usage   json.RawMessage `json:"usage"`
}

func (p *hostedProvider) Converse(ctx context.Context, messages []Message, sessionID string) (*Reply, error) {
	if p.anonKey == "" {
		return nil, fmt.Errorf("totiroom: anon key not configured")
	}

	if sessionID == "" {
		sessionID = "visitor-" + uuid.NewString()
	}

	payload, err := json.Marshal(hostedRequest{
		Messages:       messages,
		SessionID:      sessionID,
		IncludeContext: false,
		VisitorContext: visitorContext,
	})
	if err != nil {
		return nil, fmt.Errorf("totiroom marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.chatURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("totiroom request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.anonKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("totiroom http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("totiroom read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("totiroom chat error (status %d): %s", resp.StatusCode, string(body))
	}

	var result hostedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("totiroom unmarshal: %w", err)
	}
	if result.Message == "" {
		return nil, fmt.Errorf("totiroom: empty message in response")
	}

	return &Reply{Message: result.Message, Usage: result.Usage}, nil
}
