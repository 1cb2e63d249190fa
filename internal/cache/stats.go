// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// stats.go provides a Valkey-backed cache for the dashboard stats
// aggregation. The stats endpoint scans every row of four tables upstream,
// so even a short TTL absorbs dashboard refreshes and polling.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"totisite/internal/models"
)

const (
	// statsKey is the single Valkey key holding the serialized stats.
	statsKey = "stats:dashboard"

	// DefaultStatsTTL is how long a stats snapshot stays cached. Counts
	// may lag behind writes by up to this long.
	DefaultStatsTTL = 60 * time.Second
)

// StatsCache caches the aggregated dashboard stats in Valkey.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache backed by the given Valkey client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl == 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get retrieves the cached stats snapshot. Misses and errors both report
// false; the caller recomputes either way.
func (sc *StatsCache) Get(ctx context.Context) (*models.Stats, bool) {
	val, err := sc.client.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("stats cache get error", "error", err)
		return nil, false
	}

	var stats models.Stats
	if err := json.Unmarshal(val, &stats); err != nil {
		slog.Warn("stats cache decode error", "error", err)
		return nil, false
	}
	return &stats, true
}

// Set stores a stats snapshot with the configured TTL. Failures are logged
// and swallowed; caching is best-effort.
func (sc *StatsCache) Set(ctx context.Context, stats *models.Stats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		slog.Warn("stats cache encode error", "error", err)
		return
	}
	if err := sc.client.Set(ctx, statsKey, payload, sc.ttl).Err(); err != nil {
		slog.Warn("stats cache set error", "error", err)
	}
}

// Invalidate drops the cached snapshot so the next read recomputes.
func (sc *StatsCache) Invalidate(ctx context.Context) {
	if err := sc.client.Del(ctx, statsKey).Err(); err != nil {
		slog.Warn("stats cache invalidate error", "error", err)
	}
}
