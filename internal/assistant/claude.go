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
)

// claudeMaxTokens caps visitor chat replies; short answers keep the widget
// readable and the bill predictable.
const claudeMaxTokens = 500

// claudeProvider talks to the Anthropic Messages API directly, used when
// the hosted TotiRoom function is down or bypassed.
type claudeProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// ClaudeOption customises the provider; only tests use WithClaudeBaseURL.
type ClaudeOption func(*claudeProvider)

// WithClaudeBaseURL points the provider at a different API host.
func WithClaudeBaseURL(url string) ClaudeOption {
	return func(p *claudeProvider) { p.baseURL = url }
}

// NewClaude creates an Anthropic-backed provider.
func NewClaude(apiKey, model string, opts ...ClaudeOption) Provider {
	p := &claudeProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.anthropic.com",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *claudeProvider) Name() string { return "claude" }

func (p *claudeProvider) Converse(ctx context.Context, messages []Message, _ string) (*Reply, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("claude: API key not configured")
	}

	body := claudeRequest{
		Model:     p.model,
		MaxTokens: claudeMaxTokens,
		System:    visitorContext,
		Messages:  messages,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("claude marshal: %w", err)
	}

	url := p.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("claude request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claude http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("claude read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("claude API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result claudeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("claude unmarshal: %w", err)
	}

	// Extract text from the first content block.
	for _, block := range result.Content {
		if block.Type == "text" {
			return &Reply{Message: block.Text, Usage: result.Usage}, nil
		}
	}

	return nil, fmt.Errorf("claude: no text content in response")
}

// --- Anthropic Messages API types ---

type claudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
	Usage   json.RawMessage      `json:"usage"`
}
