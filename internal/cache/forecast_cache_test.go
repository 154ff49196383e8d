package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish-go/internal/config"
	"github.com/andresuchdata/replenish-go/internal/domain"
)

func newTestCache(t *testing.T) (ForecastCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)

	host, port, err := net.SplitHostPort(server.Addr())
	require.NoError(t, err)

	c, err := NewForecastCache(config.CacheConfig{
		Enabled:            true,
		RedisHost:          host,
		RedisPort:          port,
		ForecastTTLSeconds: 60,
	})
	require.NoError(t, err)
	return c, server
}

func sampleForecast(itemID string) *domain.ForecastResult {
	return &domain.ForecastResult{
		ItemID:      itemID,
		Model:       domain.ModelSES,
		Confidence:  0.42,
		Values:      []float64{10, 11, 12},
		GeneratedAt: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		Status:      domain.ForecastActive,
	}
}

func TestForecastCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.GetForecast(ctx, "ITEM-A")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetForecast(ctx, sampleForecast("ITEM-A")))

	got, ok, err := c.GetForecast(ctx, "ITEM-A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ITEM-A", got.ItemID)
	assert.Equal(t, domain.ModelSES, got.Model)
	assert.Equal(t, []float64{10, 11, 12}, got.Values)
}

func TestForecastCacheInvalidateAll(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetForecast(ctx, sampleForecast("ITEM-A")))
	require.NoError(t, c.SetForecast(ctx, sampleForecast("ITEM-B")))

	require.NoError(t, c.InvalidateAll(ctx))

	for _, item := range []string{"ITEM-A", "ITEM-B"} {
		_, ok, err := c.GetForecast(ctx, item)
		require.NoError(t, err)
		assert.False(t, ok, "item %s survived invalidation", item)
	}
}

func TestForecastCacheEntriesExpire(t *testing.T) {
	c, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetForecast(ctx, sampleForecast("ITEM-A")))
	server.FastForward(2 * time.Minute)

	_, ok, err := c.GetForecast(ctx, "ITEM-A")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoopCacheNeverHits(t *testing.T) {
	c := NewNoopForecastCache()
	ctx := context.Background()

	require.NoError(t, c.SetForecast(ctx, sampleForecast("ITEM-A")))
	_, ok, err := c.GetForecast(ctx, "ITEM-A")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestDisabledConfigReturnsNoop(t *testing.T) {
	c, err := NewForecastCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	_, ok, getErr := c.GetForecast(context.Background(), "ITEM-A")
	require.NoError(t, getErr)
	assert.False(t, ok)
}
