// Package coingecko implementa el proveedor primario de datos de mercado.
package coingecko

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/infrastructure/config"
	"coin-market-service/internal/infrastructure/httpx"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const providerName = "coingecko"

// RestClient habla con la API REST de CoinGecko. No aplica timeouts ni reintentos:
// eso lo hace el orquestador con el contexto de cada intento.
type RestClient struct {
	api *httpx.JSONClient
}

// NewRestClient creates a new CoinGecko REST client
func NewRestClient(cfg config.PrimaryProviderConfig) *RestClient {
	headers := http.Header{}
	if cfg.APIKey != "" {
		header := cfg.APIKeyHeader
		if header == "" {
			header = "x-cg-demo-api-key"
		}
		headers.Set(header, cfg.APIKey)
	}

	return &RestClient{
		api: httpx.NewJSONClient(providerName, cfg.BaseURL, headers),
	}
}

func (c *RestClient) Name() string {
	return providerName
}

// FetchPage obtiene una página ordenada por capitalización descendente
func (c *RestClient) FetchPage(ctx context.Context, currency string, pageSize, page int) ([]entities.Coin, error) {
	query := url.Values{}
	query.Set("vs_currency", strings.ToLower(currency))
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page))
	query.Set("sparkline", "false")
	query.Set("price_change_percentage", "24h")

	var raw []marketCoin
	if err := c.api.GetJSON(ctx, "/coins/markets", "/coins/markets", query, &raw); err != nil {
		return nil, err
	}

	coins := make([]entities.Coin, 0, len(raw))
	for _, m := range raw {
		coins = append(coins, m.toEntity())
	}
	return coins, nil
}

// FetchDetail obtiene la ficha de una moneda
func (c *RestClient) FetchDetail(ctx context.Context, id, currency string) (*entities.CoinDetail, error) {
	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("market_data", "true")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")

	var raw coinDetail
	endpoint := fmt.Sprintf("/coins/%s", url.PathEscape(id))
	if err := c.api.GetJSON(ctx, endpoint, "/coins/{id}", query, &raw); err != nil {
		return nil, err
	}
	return raw.toEntity(strings.ToLower(currency)), nil
}

// FetchHistory obtiene la serie de precios de los últimos days días
func (c *RestClient) FetchHistory(ctx context.Context, id, currency string, days int) ([]entities.PricePoint, error) {
	interval := "daily"
	if days <= 1 {
		interval = "hourly"
	}

	query := url.Values{}
	query.Set("vs_currency", strings.ToLower(currency))
	query.Set("days", strconv.Itoa(days))
	query.Set("interval", interval)

	var raw marketChart
	endpoint := fmt.Sprintf("/coins/%s/market_chart", url.PathEscape(id))
	if err := c.api.GetJSON(ctx, endpoint, "/coins/{id}/market_chart", query, &raw); err != nil {
		return nil, err
	}
	return raw.toEntity(), nil
}

// FetchGlobal obtiene los agregados de /global en la moneda pedida
func (c *RestClient) FetchGlobal(ctx context.Context, currency string) (*entities.GlobalStats, error) {
	var resp globalResponse
	if err := c.api.GetJSON(ctx, "/global", "/global", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.toEntity(strings.ToLower(currency)), nil
}
