package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-reconciler/app/models"
)

func TestMemoryCacheSetGet(t *testing.T) {
	cache := NewMemoryCacheService(time.Hour)
	ctx := context.Background()

	resolution := &models.Resolution{Query: "Москва", Threshold: 85}
	require.NoError(t, cache.Set(ctx, "москва", resolution))

	got, found, err := cache.Get(ctx, "москва")
	require.NoError(t, err)
	require.True(t, found)
	assert.Same(t, resolution, got)

	_, found, err = cache.Get(ctx, "другое")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCacheService(time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", &models.Resolution{Query: "q"}))
	time.Sleep(5 * time.Millisecond)

	_, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCacheClearAndStats(t *testing.T) {
	cache := NewMemoryCacheService(time.Hour)
	ctx := context.Background()

	cache.Set(ctx, "a", &models.Resolution{})
	cache.Set(ctx, "b", &models.Resolution{})
	cache.Get(ctx, "a")
	cache.Get(ctx, "missing")

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMiss)
	assert.Equal(t, int64(2), stats.TotalItems)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)

	require.NoError(t, cache.Clear(ctx))
	stats, err = cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalItems)

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.NoError(t, cache.Close())
}
