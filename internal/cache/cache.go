/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache is a fail-open redis cache for hot kiosk reads. Every error
// degrades to a miss so the kiosk endpoint keeps working without redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache keys.
const (
	KeySettings      = "portkiosk:settings"
	KeyMediaPlaylist = "portkiosk:media_playlist"
	KeyCampaigns     = "portkiosk:active_campaigns"
	KeySchedules     = "portkiosk:schedules"
)

// DefaultTTL bounds staleness of cached kiosk data between invalidations.
const DefaultTTL = 30 * time.Second

type Cache struct {
	client  *redis.Client
	enabled bool
	logger  zerolog.Logger
}

// New builds a cache backed by redis. A nil client or enabled=false yields a
// disabled cache where every Get is a miss.
func New(client *redis.Client, enabled bool, logger zerolog.Logger) *Cache {
	return &Cache{
		client:  client,
		enabled: enabled && client != nil,
		logger:  logger.With().Str("component", "cache").Logger(),
	}
}

// Get unmarshals the cached value into dest. Returns false on a miss or any
// redis error.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.enabled {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

// Set stores value under key for ttl. Errors are logged and ignored.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.enabled {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidate failed")
	}
}
