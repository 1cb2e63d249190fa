// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gateway

import (
	"context"
	"time"

	"totisite/internal/models"
	"totisite/internal/postgrest"
)

// Stats fetches the full record sets for each kind and counts them against
// the dashboard time windows. This is an O(n) scan recomputed per call —
// fine at this site's record volume, and the optional cache keeps repeat
// dashboard loads off the upstream.
func (g *Gateway) Stats(ctx context.Context) (*models.Stats, error) {
	if g.stats != nil {
		if cached, ok := g.stats.Get(ctx); ok {
			return cached, nil
		}
	}

	now := g.now()
	// Window boundaries: local midnight today, then rolling 7- and 30-day.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)

	var contacts []models.ContactSubmission
	err := g.rest.Select(ctx, postgrest.Query{
		Table: TableContacts, Select: "id,created_at",
	}, &contacts)
	if err != nil {
		return nil, err
	}

	var sessions []models.ChatSession
	err = g.rest.Select(ctx, postgrest.Query{
		Table: TableSessions, Select: "id,created_at,status",
	}, &sessions)
	if err != nil {
		return nil, err
	}

	var subscribers []models.NewsletterSubscriber
	err = g.rest.Select(ctx, postgrest.Query{
		Table: TableNewsletter, Select: "id,subscribed_at",
	}, &subscribers)
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{}
	for _, c := range contacts {
		bump(&stats.Contacts, c.CreatedAt, today, weekAgo, monthAgo)
	}
	for _, s := range sessions {
		if s.IsCall() {
			bump(&stats.Calls, s.CreatedAt, today, weekAgo, monthAgo)
		} else {
			bump(&stats.Chats, s.CreatedAt, today, weekAgo, monthAgo)
		}
	}
	for _, n := range subscribers {
		bump(&stats.Newsletter, n.SubscribedAt, today, weekAgo, monthAgo)
	}

	if g.stats != nil {
		g.stats.Set(ctx, stats)
	}
	return stats, nil
}

// bump counts one record into every window it falls inside. The windows
// nest, which gives the dashboard its total >= month >= week >= today shape.
func bump(b *models.StatBucket, at, today, weekAgo, monthAgo time.Time) {
	b.Total++
	if !at.Before(today) {
		b.Today++
	}
	if !at.Before(weekAgo) {
		b.Week++
	}
	if !at.Before(monthAgo) {
		b.Month++
	}
}
