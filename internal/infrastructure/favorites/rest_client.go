// Package favorites implementa el cliente del store remoto de favoritos.
package favorites

import (
	"coin-market-service/internal/application/dto"
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/config"
	"coin-market-service/internal/infrastructure/httpx"
	"coin-market-service/internal/infrastructure/resilience"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const serviceName = "favorites-store"

// ErrRejected indica una respuesta 2xx con success=false
var ErrRejected = errors.New("favorites store rejected the request")

// RestClient implementa interfaces.FavoritesStore sobre HTTP
type RestClient struct {
	api     *httpx.JSONClient
	timeout time.Duration
}

var _ interfaces.FavoritesStore = (*RestClient)(nil)

// NewRestClient creates a client for the favorites store
func NewRestClient(cfg config.FavoritesConfig) *RestClient {
	return &RestClient{
		api:     httpx.NewJSONClient(serviceName, cfg.BaseURL, nil),
		timeout: cfg.RequestTimeout,
	}
}

// List devuelve todos los favoritos del portador del token
func (c *RestClient) List(ctx context.Context, token string) ([]entities.FavoriteRecord, error) {
	return resilience.Run(ctx, serviceName+".list", c.timeout, func(ctx context.Context) ([]entities.FavoriteRecord, error) {
		var resp dto.APIResponse[[]dto.StoreRecord]
		if err := c.api.DoJSON(ctx, http.MethodGet, "/favorites", "/favorites", nil, bearer(token), &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, fmt.Errorf("list: %s: %w", resp.Message, ErrRejected)
		}

		records := make([]entities.FavoriteRecord, 0, len(resp.Data))
		for _, r := range resp.Data {
			records = append(records, dto.FromStoreRecord(r))
		}
		return records, nil
	})
}

// Create añade coinID y devuelve el registro creado
func (c *RestClient) Create(ctx context.Context, token, coinID string) (entities.FavoriteRecord, error) {
	return resilience.Run(ctx, serviceName+".create", c.timeout, func(ctx context.Context) (entities.FavoriteRecord, error) {
		query := url.Values{}
		query.Set("coinId", coinID)

		var resp dto.APIResponse[*dto.StoreRecord]
		if err := c.api.DoJSON(ctx, http.MethodPost, "/favorites", "/favorites", query, bearer(token), &resp); err != nil {
			return entities.FavoriteRecord{}, err
		}
		if !resp.Success || resp.Data == nil {
			return entities.FavoriteRecord{}, fmt.Errorf("create %s: %s: %w", coinID, resp.Message, ErrRejected)
		}
		return dto.FromStoreRecord(*resp.Data), nil
	})
}

// Delete borra el favorito identificado por coinID
func (c *RestClient) Delete(ctx context.Context, token, coinID string) error {
	_, err := resilience.Run(ctx, serviceName+".delete", c.timeout, func(ctx context.Context) (struct{}, error) {
		var resp dto.APIResponse[any]
		endpoint := "/favorites/" + url.PathEscape(coinID)
		if err := c.api.DoJSON(ctx, http.MethodDelete, endpoint, "/favorites/{coinId}", nil, bearer(token), &resp); err != nil {
			return struct{}{}, err
		}
		if !resp.Success {
			return struct{}{}, fmt.Errorf("delete %s: %s: %w", coinID, resp.Message, ErrRejected)
		}
		return struct{}{}, nil
	})
	return err
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}
