package coincap

import (
	"coin-market-service/internal/domain/entities"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const iconURLTemplate = "https://assets.coincap.io/assets/icons/%s@2x.png"

// envelope es la forma común de todas las respuestas de CoinCap
type envelope[T any] struct {
	Data T `json:"data"`
}

// asset llega con todos los numéricos como string (o null)
type asset struct {
	ID                string  `json:"id"`
	Rank              string  `json:"rank"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Supply            *string `json:"supply"`
	MaxSupply         *string `json:"maxSupply"`
	MarketCapUsd      *string `json:"marketCapUsd"`
	VolumeUsd24Hr     *string `json:"volumeUsd24Hr"`
	PriceUsd          *string `json:"priceUsd"`
	ChangePercent24Hr *string `json:"changePercent24Hr"`
	Explorer          string  `json:"explorer"`
}

func (a asset) toCoin(id string) entities.Coin {
	coin := entities.Coin{
		ID:                id,
		Symbol:            entities.NormalizeSymbol(a.Symbol),
		Name:              a.Name,
		Price:             parseOrZero(a.PriceUsd),
		Change24h:         parseOrZero(a.ChangePercent24Hr),
		MarketCap:         parseOrZero(a.MarketCapUsd),
		Volume24h:         parseOrZero(a.VolumeUsd24Hr),
		Image:             fmt.Sprintf(iconURLTemplate, strings.ToLower(strings.TrimSpace(a.Symbol))),
		CirculatingSupply: decimal.NewNullDecimal(parseOrZero(a.Supply)),
		TotalSupply:       parseOrNull(a.MaxSupply),
	}
	return coin
}

func (a asset) toDetail(id string) *entities.CoinDetail {
	rank, _ := decimal.NewFromString(a.Rank)
	return &entities.CoinDetail{
		Coin:     a.toCoin(id),
		Homepage: a.Explorer,
		Rank:     int(rank.IntPart()),
	}
}

// historyPoint es un elemento de /assets/{id}/history
type historyPoint struct {
	PriceUsd string `json:"priceUsd"`
	Time     int64  `json:"time"`
}

func parseOrZero(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseOrNull trata tanto null como un cero como ausencia de dato
func parseOrNull(s *string) decimal.NullDecimal {
	d := parseOrZero(s)
	if d.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
