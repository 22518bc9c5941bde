package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTripsJSON(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "symbols", []string{"BTC", "ETH"}, 0))
	var got []string
	require.NoError(t, mc.Get(ctx, "symbols", &got))
	assert.Equal(t, []string{"BTC", "ETH"}, got)

	require.NoError(t, mc.Set(ctx, "raw", "hello", 0))
	var s string
	require.NoError(t, mc.Get(ctx, "raw", &s))
	assert.Equal(t, "hello", s)

	assert.ErrorIs(t, mc.Get(ctx, "missing", &s), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", 1, 10*time.Millisecond))
	ok, _ := mc.Exists(ctx, "k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	var v int
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryCacheLock(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "cycle", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = mc.TryLock(ctx, "cycle", time.Minute)
	assert.False(t, ok)

	require.NoError(t, mc.Unlock(ctx, "cycle"))
	ok, _ = mc.TryLock(ctx, "cycle", time.Minute)
	assert.True(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, mc.Len())
	ok, _ := mc.Exists(ctx, "b")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "a")
	assert.True(t, ok)
	ok, _ = mc.Exists(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCacheOverwriteKeepsSize(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	require.NoError(t, mc.Set(ctx, "a", 2, 0))
	require.NoError(t, mc.Set(ctx, "b", 3, 0))

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, mc.Len())
}

func TestMemoryCacheBytesRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "blob", []byte(`{"a":1}`), time.Minute))
	var b []byte
	require.NoError(t, mc.Get(ctx, "blob", &b))
	assert.Equal(t, `{"a":1}`, string(b))
}
