package interfaces

import (
	"coin-market-service/internal/domain/entities"
	"context"
)

// PrimaryProvider es el proveedor preferido (CoinGecko)
type PrimaryProvider interface {
	Name() string
	FetchPage(ctx context.Context, currency string, pageSize, page int) ([]entities.Coin, error)
	FetchDetail(ctx context.Context, id, currency string) (*entities.CoinDetail, error)
	FetchHistory(ctx context.Context, id, currency string, days int) ([]entities.PricePoint, error)
	FetchGlobal(ctx context.Context, currency string) (*entities.GlobalStats, error)
}

// SecondaryProvider es el respaldo (CoinCap). Sólo cotiza en USD y no pagina.
type SecondaryProvider interface {
	Name() string
	FetchPage(ctx context.Context, pageSize int) ([]entities.Coin, error)
	FetchDetail(ctx context.Context, id string) (*entities.CoinDetail, error)
	FetchHistory(ctx context.Context, id string, days int) ([]entities.PricePoint, error)
	FetchGlobal(ctx context.Context) (*entities.GlobalStats, error)
}

// MarketCache guarda páginas de mercado por CacheKey.
// Get sólo devuelve entradas vigentes.
type MarketCache interface {
	Get(ctx context.Context, key entities.CacheKey) (*entities.CacheEntry, bool)
	Set(ctx context.Context, key entities.CacheKey, entry *entities.CacheEntry) error
}

// MarketService define los casos de uso de datos de mercado
type MarketService interface {
	FetchCoins(ctx context.Context, query entities.CoinQuery) (*entities.CoinPage, error)
	Status(key entities.CacheKey) entities.FetchStatus
	FetchCoinDetail(ctx context.Context, id, currency string) (*entities.CoinDetail, string, error)
	FetchCoinHistory(ctx context.Context, id, currency string, days int) ([]entities.PricePoint, string, error)
	FetchGlobalStats(ctx context.Context, currency string) (*entities.GlobalStats, string, error)
}
