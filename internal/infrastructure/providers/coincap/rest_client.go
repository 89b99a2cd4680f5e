// Package coincap implementa el proveedor secundario. Sólo cotiza en USD y no pagina.
package coincap

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/infrastructure/config"
	"coin-market-service/internal/infrastructure/httpx"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const providerName = "coincap"

// RestClient habla con la API v2 de CoinCap
type RestClient struct {
	api   *httpx.JSONClient
	ids   *IDMap
	clock func() time.Time
}

// Option personaliza el cliente
type Option func(*RestClient)

// WithIDMap reemplaza la tabla embebida
func WithIDMap(ids *IDMap) Option {
	return func(c *RestClient) {
		c.ids = ids
	}
}

// WithClock fija el reloj usado para calcular ventanas de histórico
func WithClock(clock func() time.Time) Option {
	return func(c *RestClient) {
		c.clock = clock
	}
}

func NewRestClient(cfg config.SecondaryProviderConfig, opts ...Option) *RestClient {
	c := &RestClient{
		api:   httpx.NewJSONClient(providerName, cfg.BaseURL, nil),
		ids:   DefaultIDMap(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RestClient) Name() string {
	return providerName
}

// FetchPage devuelve el top-N de activos. Los ids quedan tal cual los entrega CoinCap.
func (c *RestClient) FetchPage(ctx context.Context, pageSize int) ([]entities.Coin, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageSize))

	var resp envelope[[]asset]
	if err := c.api.GetJSON(ctx, "/assets", "/assets", query, &resp); err != nil {
		return nil, err
	}

	coins := make([]entities.Coin, 0, len(resp.Data))
	for _, a := range resp.Data {
		coins = append(coins, a.toCoin(a.ID))
	}
	return coins, nil
}

// FetchDetail acepta un id canónico; la respuesta se devuelve con ese mismo id
func (c *RestClient) FetchDetail(ctx context.Context, id string) (*entities.CoinDetail, error) {
	secondaryID := c.ids.ToSecondary(id)

	var resp envelope[asset]
	endpoint := fmt.Sprintf("/assets/%s", url.PathEscape(secondaryID))
	if err := c.api.GetJSON(ctx, endpoint, "/assets/{id}", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.toDetail(c.ids.ToCanonical(resp.Data.ID)), nil
}

// FetchHistory pide la serie de precios en USD de los últimos days días
func (c *RestClient) FetchHistory(ctx context.Context, id string, days int) ([]entities.PricePoint, error) {
	secondaryID := c.ids.ToSecondary(id)

	end := c.clock()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	query := url.Values{}
	query.Set("interval", historyInterval(days))
	query.Set("start", strconv.FormatInt(start.UnixMilli(), 10))
	query.Set("end", strconv.FormatInt(end.UnixMilli(), 10))

	var resp envelope[[]historyPoint]
	endpoint := fmt.Sprintf("/assets/%s/history", url.PathEscape(secondaryID))
	if err := c.api.GetJSON(ctx, endpoint, "/assets/{id}/history", query, &resp); err != nil {
		return nil, err
	}

	points := make([]entities.PricePoint, 0, len(resp.Data))
	for _, p := range resp.Data {
		price := p.PriceUsd
		points = append(points, entities.PricePoint{
			Time:  p.Time,
			Price: parseOrZero(&price),
		})
	}
	return points, nil
}

// globalSampleSize es el top de activos sobre el que se agregan los totales
const globalSampleSize = 100

// FetchGlobal estima los totales del mercado sumando el top de activos.
// La dominancia de BTC es su capitalización sobre ese total.
func (c *RestClient) FetchGlobal(ctx context.Context) (*entities.GlobalStats, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(globalSampleSize))

	var resp envelope[[]asset]
	if err := c.api.GetJSON(ctx, "/assets", "/assets", query, &resp); err != nil {
		return nil, err
	}

	stats := &entities.GlobalStats{
		Currency:       "usd",
		TotalMarketCap: decimal.Zero,
		TotalVolume:    decimal.Zero,
		BTCDominance:   decimal.Zero,
	}
	btcMarketCap := decimal.Zero
	for _, a := range resp.Data {
		marketCap := parseOrZero(a.MarketCapUsd)
		stats.TotalMarketCap = stats.TotalMarketCap.Add(marketCap)
		stats.TotalVolume = stats.TotalVolume.Add(parseOrZero(a.VolumeUsd24Hr))
		if a.ID == "bitcoin" {
			btcMarketCap = marketCap
		}
	}
	if stats.TotalMarketCap.IsPositive() {
		stats.BTCDominance = btcMarketCap.Div(stats.TotalMarketCap).Mul(decimal.NewFromInt(100))
	}
	return stats, nil
}

func historyInterval(days int) string {
	switch {
	case days <= 1:
		return "h1"
	case days <= 7:
		return "h12"
	default:
		return "d1"
	}
}
