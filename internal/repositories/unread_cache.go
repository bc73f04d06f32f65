package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	unreadKeyPrefix = "notif:unread"
	unreadTTL       = 24 * time.Hour
)

// UnreadCache caches per-user unread notification counts in Redis. It is
// strictly best-effort: the notification table stays authoritative and the
// count is re-derived from it on any miss.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUnreadCache creates a new UnreadCache
func NewUnreadCache(client *redis.Client) *UnreadCache {
	return &UnreadCache{client: client, ttl: unreadTTL}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("%s:%d", unreadKeyPrefix, userID)
}

// Increment bumps the cached count if one exists. It never creates the key,
// so a cold cache stays cold until SetCount backfills it.
func (c *UnreadCache) Increment(ctx context.Context, userID uint) error {
	key := unreadKey(userID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return nil
	}
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

// GetCount returns the cached count and whether the cache held one
func (c *UnreadCache) GetCount(ctx context.Context, userID uint) (int64, bool, error) {
	val, err := c.client.Get(ctx, unreadKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// SetCount backfills the cached count after a DB read
func (c *UnreadCache) SetCount(ctx context.Context, userID uint, count int64) error {
	return c.client.Set(ctx, unreadKey(userID), count, c.ttl).Err()
}

// Invalidate drops the cached count, forcing a DB re-read on the next query
func (c *UnreadCache) Invalidate(ctx context.Context, userID uint) error {
	return c.client.Del(ctx, unreadKey(userID)).Err()
}
