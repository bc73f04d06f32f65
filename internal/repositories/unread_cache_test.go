package repositories

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*UnreadCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewUnreadCache(client), srv
}

func TestUnreadCacheColdMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, hit, err := cache.GetCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	// Increment never creates the key; only SetCount warms it.
	require.NoError(t, cache.Increment(ctx, 1))
	_, hit, err = cache.GetCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestUnreadCacheWarmPath(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetCount(ctx, 1, 5))
	count, hit, err := cache.GetCount(ctx, 1)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, int64(5), count)

	require.NoError(t, cache.Increment(ctx, 1))
	count, hit, err = cache.GetCount(ctx, 1)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, int64(6), count)

	// Counts are per user.
	_, hit, err = cache.GetCount(ctx, 2)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestUnreadCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetCount(ctx, 1, 3))
	require.NoError(t, cache.Invalidate(ctx, 1))

	_, hit, err := cache.GetCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	// Invalidating an absent key is fine.
	require.NoError(t, cache.Invalidate(ctx, 1))
}

func TestUnreadCacheExpiry(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetCount(ctx, 1, 2))
	srv.FastForward(unreadTTL + 1)

	_, hit, err := cache.GetCount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
}
