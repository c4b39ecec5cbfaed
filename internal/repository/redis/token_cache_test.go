package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*TokenCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := NewTokenCache(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSwapUserToken(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	previous, err := cache.SwapUserToken(ctx, 7, "token-a", 30*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, previous)

	latest, err := mr.Get("jwt:7")
	require.NoError(t, err)
	assert.Equal(t, "token-a", latest)
	assert.Equal(t, 30*time.Minute, mr.TTL("jwt:7"))

	previous, err = cache.SwapUserToken(ctx, 7, "token-b", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "token-a", previous)

	latest, err = mr.Get("jwt:7")
	require.NoError(t, err)
	assert.Equal(t, "token-b", latest)
}

func TestSwapUserTokenConcurrentSeesEveryToken(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	const n = 16
	displaced := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prev, err := cache.SwapUserToken(ctx, 7, fmt.Sprintf("token-%d", i), time.Minute)
			assert.NoError(t, err)
			displaced <- prev
		}(i)
	}
	wg.Wait()
	close(displaced)

	seen := map[string]bool{}
	for prev := range displaced {
		assert.False(t, seen[prev], "token %q displaced twice", prev)
		seen[prev] = true
	}
	// every token but the final latest was displaced exactly once, plus the
	// initial empty slot
	assert.Len(t, seen, n)
	assert.True(t, seen[""])
}

func TestClearUserTokenOnlyRemovesMatchingToken(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, err := cache.SwapUserToken(ctx, 7, "token-b", time.Minute)
	require.NoError(t, err)

	cleared, err := cache.ClearUserToken(ctx, 7, "token-a")
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.True(t, mr.Exists("jwt:7"))

	cleared, err = cache.ClearUserToken(ctx, 7, "token-b")
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, mr.Exists("jwt:7"))

	cleared, err = cache.ClearUserToken(ctx, 8, "token-b")
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestBlacklistExpiresWithToken(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Blacklist(ctx, "token-a", time.Minute))

	ok, err := cache.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.IsBlacklisted(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = cache.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlacklistSkipsExpiredToken(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Blacklist(context.Background(), "stale", 0))
	assert.Empty(t, mr.Keys())
}

func TestBlacklistKeyDoesNotStoreRawToken(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Blacklist(context.Background(), "secret-token", time.Minute))
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], "secret-token")
	assert.Contains(t, keys[0], "blacklist:")
}

func TestPingFailsWhenServerDown(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Ping(context.Background()))
	mr.Close()
	assert.Error(t, cache.Ping(context.Background()))
}

func TestOpenRejectsBadURL(t *testing.T) {
	_, err := Open("not-a-url")
	assert.Error(t, err)
}
