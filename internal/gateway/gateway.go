// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gateway translates admin dashboard requests into PostgREST calls
// against the TotiRoom backend: list/filter/paginate for the record kinds,
// aggregate stats, blog post writes with the publish invariant, and the SEO
// settings upsert loop.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"totisite/internal/models"
	"totisite/internal/postgrest"
	"totisite/internal/slug"
)

// Kind selects which record set a list request targets.
type Kind string

const (
	KindContacts     Kind = "contacts"
	KindChats        Kind = "chats"
	KindChatMessages Kind = "chat-messages"
	KindCalls        Kind = "calls"
	KindNewsletter   Kind = "newsletter"
	KindBlog         Kind = "blog"
	KindSEOSettings  Kind = "seo-settings"
	KindStats        Kind = "stats"
)

// Upstream table names.
const (
	TableContacts    = "contact_submissions"
	TableSessions    = "toti_chat_sessions"
	TableMessages    = "toti_chat_messages"
	TableNewsletter  = "newsletter_subscribers"
	TableBlogPosts   = "blog_posts"
	TableSEOSettings = "seo_settings"
)

var (
	// ErrInvalidKind is returned for an unknown list type.
	ErrInvalidKind = errors.New("gateway: invalid type")

	// ErrSessionIDRequired is returned when a chat-messages list request
	// carries no session id.
	ErrSessionIDRequired = errors.New("gateway: session ID required")

	// ErrInvalidTable rejects passthrough writes against tables the admin
	// dashboard does not own.
	ErrInvalidTable = errors.New("gateway: invalid table")
)

// allowedTables guards the PATCH/DELETE passthrough surface.
var allowedTables = map[string]bool{
	TableContacts:    true,
	TableSessions:    true,
	TableMessages:    true,
	TableNewsletter:  true,
	TableBlogPosts:   true,
	TableSEOSettings: true,
}

// StatsCache is an optional short-TTL cache in front of the stats scan.
type StatsCache interface {
	Get(ctx context.Context) (*models.Stats, bool)
	Set(ctx context.Context, stats *models.Stats)
}

// Gateway serves the admin dashboard's data operations.
type Gateway struct {
	rest   *postgrest.Client
	siteID string
	stats  StatsCache // may be nil
	now    func() time.Time
}

// New creates a gateway over the given PostgREST client. statsCache may be
// nil, in which case every stats request scans upstream.
func New(rest *postgrest.Client, siteID string, statsCache StatsCache) *Gateway {
	return &Gateway{
		rest:   rest,
		siteID: siteID,
		stats:  statsCache,
		now:    time.Now,
	}
}

// ListResult carries one page of records plus, where the kind supports it,
// the exact total row count.
type ListResult struct {
	Data  any  `json:"data"`
	Total *int `json:"total,omitempty"`
}

// List fetches one page of the given kind. sessionID is only consulted for
// chat-messages, where it is mandatory.
func (g *Gateway) List(ctx context.Context, kind Kind, limit, offset int, sessionID string) (*ListResult, error) {
	if limit <= 0 {
		limit = 50
	}

	switch kind {
	case KindContacts:
		var rows []models.ContactSubmission
		total, err := g.rest.SelectWithCount(ctx, postgrest.Query{
			Table: TableContacts,
			Order: "created_at.desc",
			Limit: limit, Offset: offset,
		}, &rows)
		if err != nil {
			return nil, err
		}
		return &ListResult{Data: rows, Total: &total}, nil

	case KindChats:
		var rows []models.ChatSession
		err := g.rest.Select(ctx, postgrest.Query{
			Table:   TableSessions,
			Filters: []postgrest.Filter{postgrest.Neq("status", models.SessionStatusVideoStarted)},
			Order:   "created_at.desc",
			Limit:   limit, Offset: offset,
		}, &rows)
		if err != nil {
			return nil, err
		}
		return &ListResult{Data: rows}, nil

	case KindCalls:
		var rows []models.ChatSession
		err := g.rest.Select(ctx, postgrest.Query{
			Table:   TableSessions,
			Filters: []postgrest.Filter{postgrest.Eq("status", models.SessionStatusVideoStarted)},
			Order:   "created_at.desc",
			Limit:   limit, Offset: offset,
		}, &rows)
		if err != nil {
			return nil, err
		}
		return &ListResult{Data: rows}, nil

	case KindChatMessages:
		if sessionID == "" {
			return nil, ErrSessionIDRequired
		}
		var rows []models.ChatMessage
		err := g.rest.Select(ctx, postgrest.Query{
			Table:   TableMessages,
			Filters: []postgrest.Filter{postgrest.Eq("session_id", sessionID)},
			Order:   "created_at.asc",
		}, &rows)
		if err != nil {
			return nil, err
		}
		return &ListResult{Data: rows}, nil

	case KindNewsletter:
		var rows []models.NewsletterSubscriber
		total, err := g.rest.SelectWithCount(ctx, postgrest.Query{
			Table: TableNewsletter,
			Order: "subscribed_at.desc",
			Limit: limit, Offset: offset,
		}, &rows)
		if err != nil {
			return nil, err
		}
		return &ListResult{Data: rows, Total: &total}, nil

	case KindBlog:
		var rows []models.BlogPost
		err := g.rest.Select(ctx, postgrest.Query{
			Table:   TableBlogPosts,
			Filters: []postgrest.Filter{postgrest.Eq("site_id", g.siteID)},
			Order:   "created_at.desc",
			Limit:   limit, Offset: offset,
		}, &rows)
		if err != nil {
			return nil, err
		}
		return &ListResult{Data: rows}, nil

	case KindSEOSettings:
		settings, err := g.SEOSettings(ctx)
		if err != nil {
			return nil, err
		}
		return &ListResult{Data: settings}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

// SEOSettings assembles the per-site settings rows into a flat map.
func (g *Gateway) SEOSettings(ctx context.Context) (models.SEOSettings, error) {
	var rows []models.SEOSettingRow
	err := g.rest.Select(ctx, postgrest.Query{
		Table:   TableSEOSettings,
		Filters: []postgrest.Filter{postgrest.Eq("site_id", g.siteID)},
	}, &rows)
	if err != nil {
		return nil, err
	}

	settings := make(models.SEOSettings, len(rows))
	for _, row := range rows {
		settings[row.SettingKey] = row.SettingValue
	}
	return settings, nil
}

// UpsertSettings writes each key with update-then-insert. This is a per-key
// loop, not an atomic upsert; admin usage is single-operator so interleaved
// writers are out of scope.
func (g *Gateway) UpsertSettings(ctx context.Context, settings map[string]string) error {
	for key, value := range settings {
		filters := []postgrest.Filter{
			postgrest.Eq("site_id", g.siteID),
			postgrest.Eq("setting_key", key),
		}

		var updated []models.SEOSettingRow
		err := g.rest.PatchWhere(ctx, TableSEOSettings, filters,
			map[string]string{"setting_value": value}, &updated)
		if err != nil {
			return fmt.Errorf("update setting %q: %w", key, err)
		}
		if len(updated) > 0 {
			continue
		}

		row := models.SEOSettingRow{SiteID: g.siteID, SettingKey: key, SettingValue: value}
		if err := g.rest.Insert(ctx, TableSEOSettings, row, nil); err != nil {
			return fmt.Errorf("insert setting %q: %w", key, err)
		}
	}
	return nil
}

// CreateBlogPost inserts a post, deriving the slug from the title when absent
// and enforcing the published/published_at pairing.
func (g *Gateway) CreateBlogPost(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error) {
	if strings.TrimSpace(post.Slug) == "" {
		post.Slug = slug.Generate(post.Title)
	}
	if post.SiteID == "" {
		post.SiteID = g.siteID
	}
	g.applyPublishInvariant(post)

	var created []models.BlogPost
	if err := g.rest.Insert(ctx, TableBlogPosts, post, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return post, nil
	}
	return &created[0], nil
}

// UpdateBlogPost patches an existing post, re-checking the publish pairing.
// Re-saving an already-published post does not move published_at.
func (g *Gateway) UpdateBlogPost(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error) {
	if post.ID == "" {
		return nil, errors.New("gateway: post ID required")
	}
	if strings.TrimSpace(post.Slug) == "" {
		post.Slug = slug.Generate(post.Title)
	}
	g.applyPublishInvariant(post)

	updates := map[string]any{
		"title":         post.Title,
		"slug":          post.Slug,
		"excerpt":       post.Excerpt,
		"content":       post.Content,
		"category":      post.Category,
		"image_url":     post.ImageURL,
		"keywords":      post.Keywords,
		"focus_keyword": post.FocusKeyword,
		"read_time":     post.ReadTime,
		"published":     post.Published,
		"published_at":  post.PublishedAt, // nil marshals to an explicit null
		"updated_at":    g.now().UTC(),
	}

	var updated []models.BlogPost
	if err := g.rest.Patch(ctx, TableBlogPosts, post.ID, updates, &updated); err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return post, nil
	}
	return &updated[0], nil
}

// applyPublishInvariant keeps published and published_at paired:
// published ⇒ published_at set (once), unpublished ⇒ published_at cleared.
func (g *Gateway) applyPublishInvariant(post *models.BlogPost) {
	if post.Published && post.PublishedAt == nil {
		now := g.now().UTC()
		post.PublishedAt = &now
	}
	if !post.Published {
		post.PublishedAt = nil
	}
}

// Update applies a field patch to a single row of an allowed table and
// returns the updated representation.
func (g *Gateway) Update(ctx context.Context, table, id string, updates map[string]any) ([]map[string]any, error) {
	if !allowedTables[table] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	var rows []map[string]any
	if err := g.rest.Patch(ctx, table, id, updates, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a single row of an allowed table.
func (g *Gateway) Delete(ctx context.Context, table, id string) error {
	if !allowedTables[table] {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return g.rest.Delete(ctx, table, id)
}
