package dto

import (
	"coin-market-service/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// CoinMapper maneja la conversión entre entidades del dominio y DTOs
type CoinMapper struct{}

func NewCoinMapper() *CoinMapper {
	return &CoinMapper{}
}

// ToCoinsResponse convierte una página del dominio; Data nunca es nil
func (m *CoinMapper) ToCoinsResponse(page *entities.CoinPage) *CoinsResponse {
	data := make([]CoinData, len(page.Coins))
	for i, coin := range page.Coins {
		data[i] = m.toCoinData(coin)
	}

	return &CoinsResponse{
		Data:      data,
		Currency:  page.Key.Currency,
		PerPage:   page.Key.PageSize,
		Page:      page.Key.Page,
		Source:    string(page.Source),
		Cached:    page.Cached,
		FetchedAt: page.FetchedAt,
		SoftError: page.SoftError,
	}
}

func (m *CoinMapper) ToStatusResponse(key entities.CacheKey, status entities.FetchStatus) *CoinStatusResponse {
	return &CoinStatusResponse{
		Key:       key.String(),
		Fetching:  status.Fetching,
		SoftError: status.SoftError,
	}
}

func (m *CoinMapper) ToDetailResponse(detail *entities.CoinDetail, currency, softError string) *CoinDetailResponse {
	return &CoinDetailResponse{
		CoinData:    m.toCoinData(detail.Coin),
		Description: detail.Description,
		Homepage:    detail.Homepage,
		Rank:        detail.Rank,
		Categories:  detail.Categories,
		Currency:    currency,
		SoftError:   softError,
	}
}

func (m *CoinMapper) ToHistoryResponse(req *GetCoinHistoryRequest, points []entities.PricePoint, softError string) *CoinHistoryResponse {
	prices := make([]PricePointData, len(points))
	for i, p := range points {
		prices[i] = PricePointData{Time: p.Time, Price: p.Price.String()}
	}
	return &CoinHistoryResponse{
		CoinID:    req.CoinID,
		Currency:  req.Currency,
		Days:      req.Days,
		Prices:    prices,
		SoftError: softError,
	}
}

// ToGlobalResponse redondea la dominancia a dos decimales
func (m *CoinMapper) ToGlobalResponse(stats *entities.GlobalStats, softError string) *GlobalStatsResponse {
	return &GlobalStatsResponse{
		Currency:               stats.Currency,
		TotalMarketCap:         stats.TotalMarketCap.String(),
		TotalVolume:            stats.TotalVolume.String(),
		BTCDominance:           stats.BTCDominance.Round(2).String(),
		MarketCapChange24h:     nullableString(stats.MarketCapChange24h),
		ActiveCryptocurrencies: stats.ActiveCryptocurrencies,
		SoftError:              softError,
	}
}

func (m *CoinMapper) toCoinData(coin entities.Coin) CoinData {
	return CoinData{
		ID:                coin.ID,
		Symbol:            coin.Symbol,
		Name:              coin.Name,
		Price:             coin.Price.String(),
		Change24h:         coin.Change24h.String(),
		MarketCap:         coin.MarketCap.String(),
		Volume24h:         coin.Volume24h.String(),
		Image:             coin.Image,
		High24h:           nullableString(coin.High24h),
		Low24h:            nullableString(coin.Low24h),
		CirculatingSupply: nullableString(coin.CirculatingSupply),
		TotalSupply:       nullableString(coin.TotalSupply),
	}
}

func nullableString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

// ToStoreRecord convierte un FavoriteRecord al formato del store
func ToStoreRecord(r entities.FavoriteRecord) StoreRecord {
	return StoreRecord{
		ID:        RecordID(r.RemoteID),
		CoinID:    r.CoinID,
		CreatedAt: StoreTime{Time: r.CreatedAt},
	}
}

// FromStoreRecord es la conversión inversa
func FromStoreRecord(r StoreRecord) entities.FavoriteRecord {
	return entities.FavoriteRecord{
		RemoteID:  string(r.ID),
		CoinID:    r.CoinID,
		CreatedAt: r.CreatedAt.Time,
	}
}
