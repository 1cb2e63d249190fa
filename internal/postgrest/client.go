// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package postgrest is a thin typed client for the TotiRoom backend's
// Postgres-over-HTTP (PostgREST) surface. Responses are decoded into the
// entity types of internal/models at this boundary; a shape mismatch fails
// closed as an UpstreamError rather than propagating untyped data.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a PostgREST base URL using a single API key.
type Client struct {
	baseURL string
	key     string
	client  *http.Client
}

// New creates a PostgREST client. The key is sent both as a bearer token and
// as the apikey header, the way Supabase expects.
func New(baseURL, key string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return c.key != ""
}

// UpstreamError carries a non-2xx response (or an undecodable body) from the
// backend. The gateway relays Status and Body to the caller without retrying.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("postgrest: upstream status %d: %s", e.Status, e.Body)
}

// IsDuplicate reports whether the error is a unique-constraint violation.
// PostgREST surfaces these as 409s; older deployments only expose the
// Postgres error code in the body.
func (e *UpstreamError) IsDuplicate() bool {
	return e.Status == http.StatusConflict ||
		strings.Contains(e.Body, "duplicate") ||
		strings.Contains(e.Body, "23505")
}

// Filter is one column predicate in PostgREST syntax, e.g.
// {Column: "status", Cond: "eq.video_started"}.
type Filter struct {
	Column string
	Cond   string
}

// Eq builds an equality filter.
func Eq(column, value string) Filter {
	return Filter{Column: column, Cond: "eq." + value}
}

// Neq builds an inequality filter.
func Neq(column, value string) Filter {
	return Filter{Column: column, Cond: "neq." + value}
}

// Query describes one read against a table.
type Query struct {
	Table   string
	Select  string // column list, empty for all
	Filters []Filter
	Order   string // e.g. "created_at.desc"
	Limit   int    // 0 = no limit clause
	Offset  int
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Select != "" {
		v.Set("select", q.Select)
	}
	for _, f := range q.Filters {
		v.Set(f.Column, f.Cond)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// Select runs the query and decodes the result array into dst, which must be
// a pointer to a slice of the matching model type.
func (c *Client) Select(ctx context.Context, q Query, dst any) error {
	_, err := c.get(ctx, q, dst, false)
	return err
}

// SelectWithCount is Select plus an exact total row count for the table
// (ignoring limit/offset), taken from the Content-Range header.
func (c *Client) SelectWithCount(ctx context.Context, q Query, dst any) (int, error) {
	return c.get(ctx, q, dst, true)
}

func (c *Client) get(ctx context.Context, q Query, dst any, count bool) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, q.Table, q.values(), nil)
	if err != nil {
		return 0, err
	}
	if count {
		req.Header.Set("Prefer", "count=exact")
	}

	resp, body, err := c.do(req)
	if err != nil {
		return 0, err
	}

	if err := decode(body, dst); err != nil {
		return 0, err
	}

	total := 0
	if count {
		total = parseContentRange(resp.Header.Get("Content-Range"))
	}
	return total, nil
}

// Insert posts a payload to a table. When dst is non-nil the created rows are
// requested back (Prefer: return=representation) and decoded into it.
func (c *Client) Insert(ctx context.Context, table string, payload, dst any) error {
	return c.write(ctx, http.MethodPost, table, nil, payload, dst)
}

// Patch applies updates to the row with the given id.
func (c *Client) Patch(ctx context.Context, table, id string, updates, dst any) error {
	v := url.Values{}
	v.Set("id", "eq."+id)
	return c.write(ctx, http.MethodPatch, table, v, updates, dst)
}

// PatchWhere applies updates to rows matching the filters and decodes the
// affected rows into dst. Callers can detect "zero rows matched" from an
// empty result.
func (c *Client) PatchWhere(ctx context.Context, table string, filters []Filter, updates, dst any) error {
	v := url.Values{}
	for _, f := range filters {
		v.Set(f.Column, f.Cond)
	}
	return c.write(ctx, http.MethodPatch, table, v, updates, dst)
}

// Delete removes the row with the given id.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	v := url.Values{}
	v.Set("id", "eq."+id)

	req, err := c.newRequest(ctx, http.MethodDelete, table, v, nil)
	if err != nil {
		return err
	}
	_, _, err = c.do(req)
	return err
}

func (c *Client) write(ctx context.Context, method, table string, v url.Values, payload, dst any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("postgrest: marshal payload: %w", err)
	}

	req, err := c.newRequest(ctx, method, table, v, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	if dst != nil {
		req.Header.Set("Prefer", "return=representation")
	}

	_, body, err := c.do(req)
	if err != nil {
		return err
	}
	if dst == nil {
		return nil
	}
	return decode(body, dst)
}

func (c *Client) newRequest(ctx context.Context, method, table string, v url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + "/" + table
	if len(v) > 0 {
		u += "?" + v.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("postgrest: build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("postgrest: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("postgrest: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return resp, body, nil
}

// decode unmarshals an upstream body into a typed destination. A mismatch
// between the wire shape and the model type fails closed as an UpstreamError.
func decode(body []byte, dst any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &UpstreamError{
			Status: http.StatusBadGateway,
			Body:   fmt.Sprintf("undecodable upstream response: %v", err),
		}
	}
	return nil
}

// parseContentRange extracts the total from a "0-49/123" style header.
// Returns 0 when the header is missing or the total is "*".
func parseContentRange(h string) int {
	_, totalStr, ok := strings.Cut(h, "/")
	if !ok {
		return 0
	}
	total, err := strconv.Atoi(totalStr)
	if err != nil {
		return 0
	}
	return total
}
