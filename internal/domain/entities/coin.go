package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Coin es el registro normalizado que producen ambos proveedores
type Coin struct {
	ID                string              `json:"id"`
	Symbol            string              `json:"symbol"`
	Name              string              `json:"name"`
	Price             decimal.Decimal     `json:"price"`
	Change24h         decimal.Decimal     `json:"change24h"`
	MarketCap         decimal.Decimal     `json:"marketCap"`
	Volume24h         decimal.Decimal     `json:"volume24h"`
	Image             string              `json:"image"`
	High24h           decimal.NullDecimal `json:"high24h"`
	Low24h            decimal.NullDecimal `json:"low24h"`
	CirculatingSupply decimal.NullDecimal `json:"circulatingSupply"`
	TotalSupply       decimal.NullDecimal `json:"totalSupply"`
}

// NormalizeSymbol pasa el ticker a mayúsculas
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CoinDetail amplía Coin con datos de la ficha individual
type CoinDetail struct {
	Coin
	Description string   `json:"description,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Rank        int      `json:"rank,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// PricePoint es un punto de la serie histórica de precios
type PricePoint struct {
	Time  int64           `json:"time"` // unix millis
	Price decimal.Decimal `json:"price"`
}

// GlobalStats resume el mercado completo en una moneda de cotización.
// BTCDominance es un porcentaje (0-100).
type GlobalStats struct {
	Currency               string              `json:"currency"`
	TotalMarketCap         decimal.Decimal     `json:"totalMarketCap"`
	TotalVolume            decimal.Decimal     `json:"totalVolume"`
	BTCDominance           decimal.Decimal     `json:"btcDominance"`
	MarketCapChange24h     decimal.NullDecimal `json:"marketCapChange24h"`
	ActiveCryptocurrencies int                 `json:"activeCryptocurrencies,omitempty"`
}
