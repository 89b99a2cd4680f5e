package entities

import (
	"fmt"
	"time"
)

// Defaults de paginación usados cuando el consumidor no indica valores
const (
	DefaultCurrency = "usd"
	DefaultPageSize = 50
	DefaultPage     = 1
)

// DataSource identifica de dónde provienen los datos de una entrada
type DataSource string

const (
	SourcePrimary   DataSource = "primary"
	SourceSecondary DataSource = "secondary"
	SourceNone      DataSource = "none"
)

// CacheKey identifica una página de mercado. Dos claves son iguales si sus tres campos lo son.
type CacheKey struct {
	Currency string
	PageSize int
	Page     int
}

func NewCacheKey(currency string, pageSize, page int) CacheKey {
	return CacheKey{Currency: currency, PageSize: pageSize, Page: page}
}

// String renders currency-pageSize-page
func (k CacheKey) String() string {
	return fmt.Sprintf("%s-%d-%d", k.Currency, k.PageSize, k.Page)
}

// CacheEntry se reemplaza completa en cada escritura
type CacheEntry struct {
	Data      []Coin     `json:"data"`
	FetchedAt time.Time  `json:"fetchedAt"`
	Source    DataSource `json:"source"`
	SoftError string     `json:"softError,omitempty"`
}

// IsFresh indica si la entrada sigue vigente para el ttl dado
func (e *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e != nil && now.Sub(e.FetchedAt) < ttl
}

// CoinQuery es la petición de una página de mercado
type CoinQuery struct {
	Currency string
	PageSize int
	Page     int
	Force    bool
}

func (q CoinQuery) Key() CacheKey {
	return NewCacheKey(q.Currency, q.PageSize, q.Page)
}

// CoinPage es lo que recibe el consumidor; Coins nunca es nil
type CoinPage struct {
	Key       CacheKey
	Coins     []Coin
	Source    DataSource
	SoftError string
	FetchedAt time.Time
	Cached    bool
}

// FetchStatus expone el estado por clave del orquestador
type FetchStatus struct {
	Fetching  bool
	SoftError string
}
