package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey_StringAndEquality(t *testing.T) {
	a := NewCacheKey("usd", 50, 1)
	b := CoinQuery{Currency: "usd", PageSize: 50, Page: 1, Force: true}.Key()

	assert.Equal(t, "usd-50-1", a.String())
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, NewCacheKey("usd", 50, 2))
	assert.NotEqual(t, a, NewCacheKey("eur", 50, 1))
}

func TestCacheEntry_IsFresh(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := &CacheEntry{FetchedAt: now}

	assert.True(t, entry.IsFresh(now.Add(4*time.Minute), 5*time.Minute))
	assert.False(t, entry.IsFresh(now.Add(5*time.Minute), 5*time.Minute))

	var missing *CacheEntry
	assert.False(t, missing.IsFresh(now, time.Hour))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTC", NormalizeSymbol(" btc "))
}
