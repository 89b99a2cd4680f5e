package dto

import (
	"time"
)

// CoinsResponse representa la respuesta de /api/v1/coins
type CoinsResponse struct {
	Data      []CoinData `json:"data"`
	Currency  string     `json:"currency"`
	PerPage   int        `json:"per_page"`
	Page      int        `json:"page"`
	Source    string     `json:"source"`
	Cached    bool       `json:"cached"`
	FetchedAt time.Time  `json:"fetched_at"`
	SoftError string     `json:"soft_error,omitempty"`
}

// CoinData es una moneda tal como la ve el cliente; los decimales van como string
type CoinData struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             string  `json:"price"`
	Change24h         string  `json:"change24h"`
	MarketCap         string  `json:"marketCap"`
	Volume24h         string  `json:"volume24h"`
	Image             string  `json:"image"`
	High24h           *string `json:"high24h"`
	Low24h            *string `json:"low24h"`
	CirculatingSupply *string `json:"circulatingSupply"`
	TotalSupply       *string `json:"totalSupply"`
}

// CoinStatusResponse estado de adquisición de una página
type CoinStatusResponse struct {
	Key       string `json:"key"`
	Fetching  bool   `json:"fetching"`
	SoftError string `json:"soft_error,omitempty"`
}

// CoinDetailResponse respuesta de /api/v1/coins/{id}
type CoinDetailResponse struct {
	CoinData
	Description string   `json:"description,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Rank        int      `json:"rank,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Currency    string   `json:"currency"`
	SoftError   string   `json:"soft_error,omitempty"`
}

// PricePointData punto de histórico
type PricePointData struct {
	Time  int64  `json:"time"`
	Price string `json:"price"`
}

// CoinHistoryResponse respuesta de /api/v1/coins/{id}/history
type CoinHistoryResponse struct {
	CoinID    string           `json:"coin_id"`
	Currency  string           `json:"currency"`
	Days      int              `json:"days"`
	Prices    []PricePointData `json:"prices"`
	SoftError string           `json:"soft_error,omitempty"`
}

// GlobalStatsResponse respuesta de /api/v1/global
type GlobalStatsResponse struct {
	Currency               string  `json:"currency"`
	TotalMarketCap         string  `json:"totalMarketCap"`
	TotalVolume            string  `json:"totalVolume"`
	BTCDominance           string  `json:"btcDominance"`
	MarketCapChange24h     *string `json:"marketCapChange24h"`
	ActiveCryptocurrencies int     `json:"activeCryptocurrencies,omitempty"`
	SoftError              string  `json:"soft_error,omitempty"`
}

// FavoritesResponse respuesta de GET /api/v1/favorites
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
	Count     int      `json:"count"`
}

// FavoriteStatusResponse respuesta de GET /api/v1/favorites/{coinId}
type FavoriteStatusResponse struct {
	CoinID   string `json:"coin_id"`
	Favorite bool   `json:"favorite"`
}

// FavoriteMutationResponse resultado de add/remove/toggle/clear
type FavoriteMutationResponse struct {
	OK       bool   `json:"ok"`
	CoinID   string `json:"coin_id,omitempty"`
	Favorite bool   `json:"favorite"`
	Count    int    `json:"count"`
}

// ErrorResponse represents a standard error response for endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse represents the health check response with service status
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}
