package dto

import (
	"coin-market-service/internal/domain/entities"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinMapper_ToCoinsResponse(t *testing.T) {
	m := NewCoinMapper()
	fetchedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	page := &entities.CoinPage{
		Key: entities.NewCacheKey("usd", 50, 1),
		Coins: []entities.Coin{{
			ID:        "bitcoin",
			Symbol:    "BTC",
			Name:      "Bitcoin",
			Price:     decimal.RequireFromString("65000.5"),
			Change24h: decimal.RequireFromString("-1.2"),
			High24h:   decimal.NewNullDecimal(decimal.NewFromInt(66000)),
		}},
		Source:    entities.SourceSecondary,
		SoftError: "degraded",
		FetchedAt: fetchedAt,
	}

	resp := m.ToCoinsResponse(page)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "65000.5", resp.Data[0].Price)
	require.NotNil(t, resp.Data[0].High24h)
	assert.Equal(t, "66000", *resp.Data[0].High24h)
	assert.Nil(t, resp.Data[0].Low24h)
	assert.Equal(t, "secondary", resp.Source)
	assert.Equal(t, 50, resp.PerPage)

	raw, err := json.Marshal(resp.Data[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"low24h":null`)
}

func TestCoinMapper_EmptyPageHasEmptyArray(t *testing.T) {
	resp := NewCoinMapper().ToCoinsResponse(&entities.CoinPage{Coins: []entities.Coin{}})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":[]`)
}

func TestStoreRecordRoundTrip(t *testing.T) {
	rec := entities.FavoriteRecord{RemoteID: "7", CoinID: "solana", CreatedAt: time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)}
	back := FromStoreRecord(ToStoreRecord(rec))
	assert.Equal(t, rec.RemoteID, back.RemoteID)
	assert.Equal(t, rec.CoinID, back.CoinID)
	assert.True(t, rec.CreatedAt.Equal(back.CreatedAt))
}
