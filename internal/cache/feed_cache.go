package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dom "microblog/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyFeed = "feed:"

// FeedCache caches pages of a user's micropost feed in Redis. Entries are
// TTL'd and dropped whenever the owner's posts change.
type FeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFeedCache returns a new FeedCache.
func NewFeedCache(rdb *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached page or nil on miss.
func (c *FeedCache) Get(ctx context.Context, userID int64, limit, offset int) ([]dom.Micropost, error) {
	b, err := c.rdb.Get(ctx, feedKey(userID, limit, offset)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Micropost
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Set stores one page of the feed.
func (c *FeedCache) Set(ctx context.Context, userID int64, limit, offset int, list []dom.Micropost) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, feedKey(userID, limit, offset), b, c.ttl).Err()
}

// Invalidate removes every cached page of one user's feed.
func (c *FeedCache) Invalidate(ctx context.Context, userID int64) error {
	pattern := fmt.Sprintf("%s%d:*", keyFeed, userID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func feedKey(userID int64, limit, offset int) string {
	return fmt.Sprintf("%s%d:%d:%d", keyFeed, userID, limit, offset)
}
