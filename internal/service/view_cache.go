package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	leaderboardCacheKey  = "leaderboard:v1"
	dashboardOverviewKey = "dashboard:overview:v1"
)

// CacheInvalidator drops cached read views after the writes that change them.
// A nil invalidator or client does nothing.
type CacheInvalidator struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewCacheInvalidator constructs the invalidator shared by writing services.
func NewCacheInvalidator(client *redis.Client, logger zerolog.Logger) *CacheInvalidator {
	return &CacheInvalidator{
		client: client,
		logger: logger.With().Str("component", "cache_invalidator").Logger(),
	}
}

// dashboard drops the administrator overview.
func (c *CacheInvalidator) dashboard(ctx context.Context) { c.drop(ctx, dashboardOverviewKey) }

// leaderboard drops the rendered winner leaderboard.
func (c *CacheInvalidator) leaderboard(ctx context.Context) { c.drop(ctx, leaderboardCacheKey) }

// all drops every cached view.
func (c *CacheInvalidator) all(ctx context.Context) {
	c.drop(ctx, dashboardOverviewKey, leaderboardCacheKey)
}

func (c *CacheInvalidator) drop(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate cached views")
	}
}
