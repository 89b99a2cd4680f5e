package coingecko

import (
	"coin-market-service/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// marketCoin es un elemento de /coins/markets. Cualquier numérico puede venir null.
type marketCoin struct {
	ID                       string              `json:"id"`
	Symbol                   string              `json:"symbol"`
	Name                     string              `json:"name"`
	Image                    string              `json:"image"`
	CurrentPrice             decimal.NullDecimal `json:"current_price"`
	MarketCap                decimal.NullDecimal `json:"market_cap"`
	MarketCapRank            int                 `json:"market_cap_rank"`
	TotalVolume              decimal.NullDecimal `json:"total_volume"`
	High24h                  decimal.NullDecimal `json:"high_24h"`
	Low24h                   decimal.NullDecimal `json:"low_24h"`
	PriceChangePercentage24h decimal.NullDecimal `json:"price_change_percentage_24h"`
	CirculatingSupply        decimal.NullDecimal `json:"circulating_supply"`
	TotalSupply              decimal.NullDecimal `json:"total_supply"`
}

func (m marketCoin) toEntity() entities.Coin {
	return entities.Coin{
		ID:                m.ID,
		Symbol:            entities.NormalizeSymbol(m.Symbol),
		Name:              m.Name,
		Price:             orZero(m.CurrentPrice),
		Change24h:         orZero(m.PriceChangePercentage24h),
		MarketCap:         orZero(m.MarketCap),
		Volume24h:         orZero(m.TotalVolume),
		Image:             m.Image,
		High24h:           m.High24h,
		Low24h:            m.Low24h,
		CirculatingSupply: m.CirculatingSupply,
		TotalSupply:       m.TotalSupply,
	}
}

// coinDetail es la respuesta de /coins/{id} con market_data=true
type coinDetail struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	MarketCapRank int      `json:"market_cap_rank"`
	Categories    []string `json:"categories"`
	Description   struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	Image struct {
		Large string `json:"large"`
		Small string `json:"small"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice             map[string]decimal.Decimal `json:"current_price"`
		MarketCap                map[string]decimal.Decimal `json:"market_cap"`
		TotalVolume              map[string]decimal.Decimal `json:"total_volume"`
		High24h                  map[string]decimal.Decimal `json:"high_24h"`
		Low24h                   map[string]decimal.Decimal `json:"low_24h"`
		PriceChangePercentage24h decimal.NullDecimal        `json:"price_change_percentage_24h"`
		CirculatingSupply        decimal.NullDecimal        `json:"circulating_supply"`
		TotalSupply              decimal.NullDecimal        `json:"total_supply"`
	} `json:"market_data"`
}

func (d coinDetail) toEntity(currency string) *entities.CoinDetail {
	md := d.MarketData
	image := d.Image.Large
	if image == "" {
		image = d.Image.Small
	}

	detail := &entities.CoinDetail{
		Coin: entities.Coin{
			ID:                d.ID,
			Symbol:            entities.NormalizeSymbol(d.Symbol),
			Name:              d.Name,
			Price:             md.CurrentPrice[currency],
			Change24h:         orZero(md.PriceChangePercentage24h),
			MarketCap:         md.MarketCap[currency],
			Volume24h:         md.TotalVolume[currency],
			Image:             image,
			High24h:           lookup(md.High24h, currency),
			Low24h:            lookup(md.Low24h, currency),
			CirculatingSupply: md.CirculatingSupply,
			TotalSupply:       md.TotalSupply,
		},
		Description: d.Description.En,
		Rank:        d.MarketCapRank,
		Categories:  nonEmpty(d.Categories),
	}
	for _, h := range d.Links.Homepage {
		if h != "" {
			detail.Homepage = h
			break
		}
	}
	return detail
}

// marketChart es la respuesta de /coins/{id}/market_chart: pares [ms, precio]
type marketChart struct {
	Prices [][2]decimal.Decimal `json:"prices"`
}

func (c marketChart) toEntity() []entities.PricePoint {
	points := make([]entities.PricePoint, 0, len(c.Prices))
	for _, p := range c.Prices {
		points = append(points, entities.PricePoint{
			Time:  p[0].IntPart(),
			Price: p[1],
		})
	}
	return points
}

// globalResponse es la respuesta de /global
type globalResponse struct {
	Data globalData `json:"data"`
}

// globalData trae los agregados indexados por moneda; la dominancia viene por símbolo
type globalData struct {
	ActiveCryptocurrencies          int                        `json:"active_cryptocurrencies"`
	TotalMarketCap                  map[string]decimal.Decimal `json:"total_market_cap"`
	TotalVolume                     map[string]decimal.Decimal `json:"total_volume"`
	MarketCapPercentage             map[string]decimal.Decimal `json:"market_cap_percentage"`
	MarketCapChangePercentage24hUsd decimal.NullDecimal        `json:"market_cap_change_percentage_24h_usd"`
}

func (g globalData) toEntity(currency string) *entities.GlobalStats {
	return &entities.GlobalStats{
		Currency:               currency,
		TotalMarketCap:         g.TotalMarketCap[currency],
		TotalVolume:            g.TotalVolume[currency],
		BTCDominance:           g.MarketCapPercentage["btc"],
		MarketCapChange24h:     g.MarketCapChangePercentage24hUsd,
		ActiveCryptocurrencies: g.ActiveCryptocurrencies,
	}
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func lookup(values map[string]decimal.Decimal, currency string) decimal.NullDecimal {
	v, ok := values[currency]
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(v)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
