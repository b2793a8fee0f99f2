package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bidhaus/auction-api/internal/core/domain"
)

const (
	feedKey = "feed:all-listings"
	feedTTL = 30 * time.Second
)

// FeedCache caches the global listing feed in Redis with a short TTL. Cache
// failures are logged and treated as misses; the feed is always recoverable
// from Mongo.
type FeedCache struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewFeedCache(client *redis.Client, log zerolog.Logger) *FeedCache {
	return &FeedCache{client: client, log: log}
}

// GetFeed returns the cached feed. ok is false on miss or any cache error.
func (c *FeedCache) GetFeed(ctx context.Context) ([]*domain.Listing, bool) {
	raw, err := c.client.Get(ctx, feedKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Msg("feed cache read failed")
		}
		return nil, false
	}

	var listings []*domain.Listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		c.log.Warn().Err(err).Msg("feed cache entry corrupt, dropping")
		c.Invalidate(ctx)
		return nil, false
	}
	return listings, true
}

// SetFeed stores the feed with a short expiry.
func (c *FeedCache) SetFeed(ctx context.Context, listings []*domain.Listing) {
	raw, err := json.Marshal(listings)
	if err != nil {
		c.log.Warn().Err(err).Msg("feed cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, feedKey, raw, feedTTL).Err(); err != nil {
		c.log.Warn().Err(err).Msg("feed cache write failed")
	}
}

// Invalidate drops the cached feed after any listing mutation.
func (c *FeedCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, feedKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("feed cache invalidation failed")
	}
}
