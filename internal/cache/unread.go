package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// UnreadCachePrefix is the key prefix for per-user unread counters
	UnreadCachePrefix = "notif:unread:"

	// UnreadCacheTTL bounds staleness if a reset event is ever lost;
	// on expiry the next badge read falls back to the database.
	UnreadCacheTTL = 24 * time.Hour
)

// UnreadCache holds the per-user unread-notification counter backing the
// badge endpoint. The database remains the source of truth: a miss is
// answered from the store and written back with Set.
type UnreadCache interface {
	// Get returns (count, found, error); found=false on a cache miss.
	Get(ctx context.Context, userID int64) (int64, bool, error)

	// Set stores the counter, refreshing the TTL.
	Set(ctx context.Context, userID, count int64) error

	// Increment bumps the counter. A missing key is left missing so the
	// next read repopulates from the store instead of starting at 1.
	Increment(ctx context.Context, userID int64) error

	// Reset zeroes the counter (mark-all-read drain).
	Reset(ctx context.Context, userID int64) error
}

// RedisUnreadCache implements UnreadCache on plain Redis keys.
type RedisUnreadCache struct {
	client *redis.Client
}

// NewUnreadCache creates an UnreadCache backed by Redis.
func NewUnreadCache(client *redis.Client) UnreadCache {
	return &RedisUnreadCache{client: client}
}

func unreadKey(userID int64) string {
	return fmt.Sprintf("%s%d", UnreadCachePrefix, userID)
}

func (c *RedisUnreadCache) Get(ctx context.Context, userID int64) (int64, bool, error) {
	count, err := c.client.Get(ctx, unreadKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get unread counter: %w", err)
	}
	return count, true, nil
}

func (c *RedisUnreadCache) Set(ctx context.Context, userID, count int64) error {
	if err := c.client.Set(ctx, unreadKey(userID), count, UnreadCacheTTL).Err(); err != nil {
		return fmt.Errorf("set unread counter: %w", err)
	}
	return nil
}

func (c *RedisUnreadCache) Increment(ctx context.Context, userID int64) error {
	key := unreadKey(userID)

	// Only bump an existing counter; INCR on a missing key would seed a
	// count of 1 that ignores older unread rows in the store.
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check unread counter: %w", err)
	}
	if exists == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, UnreadCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("increment unread counter: %w", err)
	}
	return nil
}

func (c *RedisUnreadCache) Reset(ctx context.Context, userID int64) error {
	if err := c.client.Set(ctx, unreadKey(userID), 0, UnreadCacheTTL).Err(); err != nil {
		return fmt.Errorf("reset unread counter: %w", err)
	}
	return nil
}
