package cache

import (
	"coin-market-service/internal/domain/entities"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestMarketCache(ttl, failureTTL time.Duration) (*MarketCacheAdapter, *fakeClock, *MemoryCache) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	backend := NewMemoryCache()
	return NewMarketCache(backend, "coins:", ttl, failureTTL, WithClock(clock.Now)), clock, backend
}

func sampleCoins() []entities.Coin {
	return []entities.Coin{
		{
			ID:        "bitcoin",
			Symbol:    "BTC",
			Name:      "Bitcoin",
			Price:     decimal.RequireFromString("64000.5"),
			Change24h: decimal.RequireFromString("-1.25"),
			High24h:   decimal.NewNullDecimal(decimal.RequireFromString("65000")),
		},
	}
}

func TestMarketCache_RoundTrip(t *testing.T) {
	c, clock, _ := newTestMarketCache(5*time.Minute, 5*time.Minute)
	ctx := context.Background()
	key := entities.NewCacheKey("usd", 50, 1)

	require.NoError(t, c.Set(ctx, key, &entities.CacheEntry{
		Data:      sampleCoins(),
		FetchedAt: clock.now,
		Source:    entities.SourcePrimary,
	}))

	entry, ok := c.Get(ctx, key)
	require.True(t, ok)
	require.Len(t, entry.Data, 1)
	assert.Equal(t, "bitcoin", entry.Data[0].ID)
	assert.True(t, entry.Data[0].Price.Equal(decimal.RequireFromString("64000.5")))
	assert.True(t, entry.Data[0].High24h.Valid)
	assert.False(t, entry.Data[0].Low24h.Valid)
	assert.Equal(t, entities.SourcePrimary, entry.Source)
	assert.True(t, entry.FetchedAt.Equal(clock.now))
}

func TestMarketCache_StaleAfterTTL(t *testing.T) {
	c, clock, _ := newTestMarketCache(5*time.Minute, 5*time.Minute)
	ctx := context.Background()
	key := entities.NewCacheKey("usd", 50, 1)
	require.NoError(t, c.Set(ctx, key, &entities.CacheEntry{Data: sampleCoins(), FetchedAt: clock.now, Source: entities.SourcePrimary}))

	clock.now = clock.now.Add(4*time.Minute + 59*time.Second)
	_, ok := c.Get(ctx, key)
	assert.True(t, ok)

	clock.now = clock.now.Add(time.Second)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestMarketCache_FailureEntriesUseFailureTTL(t *testing.T) {
	c, clock, _ := newTestMarketCache(5*time.Minute, 30*time.Second)
	ctx := context.Background()
	key := entities.NewCacheKey("eur", 20, 2)
	require.NoError(t, c.Set(ctx, key, &entities.CacheEntry{FetchedAt: clock.now, Source: entities.SourceNone}))

	entry, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.NotNil(t, entry.Data)
	assert.Empty(t, entry.Data)

	clock.now = clock.now.Add(31 * time.Second)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestMarketCache_KeysAreIndependent(t *testing.T) {
	c, clock, backend := newTestMarketCache(5*time.Minute, 5*time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, entities.NewCacheKey("usd", 50, 1), &entities.CacheEntry{Data: sampleCoins(), FetchedAt: clock.now}))

	_, ok := c.Get(ctx, entities.NewCacheKey("usd", 50, 2))
	assert.False(t, ok)

	raw, err := backend.Get(ctx, "coins:usd-50-1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"fetchedAt"`)
}

func TestMarketCache_CorruptEntryIsMiss(t *testing.T) {
	c, _, backend := newTestMarketCache(5*time.Minute, 5*time.Minute)
	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "coins:usd-50-1", "{not json", time.Minute))

	_, ok := c.Get(ctx, entities.NewCacheKey("usd", 50, 1))
	assert.False(t, ok)
}

type failingBackend struct{ MemoryCache }

func (f *failingBackend) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("backend down")
}

func (f *failingBackend) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return errors.New("backend down")
}

func TestMarketCache_BackendErrors(t *testing.T) {
	c := NewMarketCache(&failingBackend{}, "coins:", time.Minute, 0)
	ctx := context.Background()
	key := entities.NewCacheKey("usd", 50, 1)

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, key, &entities.CacheEntry{}))
	assert.Error(t, c.Set(ctx, key, nil))
}
