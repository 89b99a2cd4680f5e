package dto

import (
	"coin-market-service/internal/domain/entities"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Límites de validación de los parámetros de consulta
const (
	MaxPageSize    = 250
	MaxHistoryDays = 365
	DefaultDays    = 30
)

var (
	currencyPattern = regexp.MustCompile(`^[a-z]{2,10}$`)
	coinIDPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)
)

// ValidationError se traduce a un 400 en los handlers
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// IsValidationError reports whether err is a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetCoinsRequest representa los query params de GET /api/v1/coins
type GetCoinsRequest struct {
	Currency string
	PerPage  int
	Page     int
	Force    bool
}

// NewGetCoinsRequest parsea y valida los query params, aplicando defaults
func NewGetCoinsRequest(query url.Values) (*GetCoinsRequest, error) {
	currency, err := parseCurrency(query.Get("currency"))
	if err != nil {
		return nil, err
	}

	perPage, err := parseIntParam(query.Get("per_page"), "per_page", entities.DefaultPageSize, 1, MaxPageSize)
	if err != nil {
		return nil, err
	}

	page, err := parseIntParam(query.Get("page"), "page", entities.DefaultPage, 1, 0)
	if err != nil {
		return nil, err
	}

	force := false
	if raw := strings.TrimSpace(query.Get("force")); raw != "" {
		force, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, &ValidationError{Param: "force", Reason: "must be a boolean"}
		}
	}

	return &GetCoinsRequest{
		Currency: currency,
		PerPage:  perPage,
		Page:     page,
		Force:    force,
	}, nil
}

// Query convierte la request al tipo de dominio
func (r *GetCoinsRequest) Query() entities.CoinQuery {
	return entities.CoinQuery{
		Currency: r.Currency,
		PageSize: r.PerPage,
		Page:     r.Page,
		Force:    r.Force,
	}
}

// GetCoinHistoryRequest representa GET /api/v1/coins/{id}/history
type GetCoinHistoryRequest struct {
	CoinID   string
	Currency string
	Days     int
}

// NewGetCoinDetailRequest valida id y currency de GET /api/v1/coins/{id}
func NewGetCoinDetailRequest(coinID string, query url.Values) (string, string, error) {
	id, err := ValidateCoinID(coinID)
	if err != nil {
		return "", "", err
	}
	currency, err := parseCurrency(query.Get("currency"))
	if err != nil {
		return "", "", err
	}
	return id, currency, nil
}

func NewGetCoinHistoryRequest(coinID string, query url.Values) (*GetCoinHistoryRequest, error) {
	id, currency, err := NewGetCoinDetailRequest(coinID, query)
	if err != nil {
		return nil, err
	}

	days, err := parseIntParam(query.Get("days"), "days", DefaultDays, 1, MaxHistoryDays)
	if err != nil {
		return nil, err
	}

	return &GetCoinHistoryRequest{CoinID: id, Currency: currency, Days: days}, nil
}

// NewGetGlobalRequest valida currency de GET /api/v1/global
func NewGetGlobalRequest(query url.Values) (string, error) {
	return parseCurrency(query.Get("currency"))
}

// ValidateCoinID normaliza y valida un id canónico (formato CoinGecko)
func ValidateCoinID(coinID string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(coinID))
	if !coinIDPattern.MatchString(id) {
		return "", &ValidationError{Param: "coinId", Reason: "must be a lowercase coin id (a-z, 0-9, -)"}
	}
	return id, nil
}

func parseCurrency(raw string) (string, error) {
	currency := strings.ToLower(strings.TrimSpace(raw))
	if currency == "" {
		return entities.DefaultCurrency, nil
	}
	if !currencyPattern.MatchString(currency) {
		return "", &ValidationError{Param: "currency", Reason: "must be 2-10 letters"}
	}
	return currency, nil
}

// parseIntParam con max 0 significa sin límite superior
func parseIntParam(raw, name string, def, min, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Param: name, Reason: "must be an integer"}
	}
	if v < min {
		return 0, &ValidationError{Param: name, Reason: fmt.Sprintf("must be >= %d", min)}
	}
	if max > 0 && v > max {
		return 0, &ValidationError{Param: name, Reason: fmt.Sprintf("must be <= %d", max)}
	}
	return v, nil
}
