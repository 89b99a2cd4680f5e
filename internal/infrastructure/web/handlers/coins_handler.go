package handlers

import (
	"coin-market-service/internal/application/dto"
	"coin-market-service/internal/application/services"
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/logging"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// CoinsHandler handles market data requests
type CoinsHandler struct {
	marketService interfaces.MarketService
	mapper        *dto.CoinMapper
}

// NewCoinsHandler creates a new instance of the coins handler
func NewCoinsHandler(marketService interfaces.MarketService) *CoinsHandler {
	return &CoinsHandler{
		marketService: marketService,
		mapper:        dto.NewCoinMapper(),
	}
}

// GetCoins maneja GET /api/v1/coins?currency=usd&per_page=50&page=1&force=false.
// Siempre responde 200 con datos válidos: los fallos de proveedores viajan en soft_error.
// @Summary Market page
// @Tags coins
// @Produce json
// @Param currency query string false "Quote currency" default(usd)
// @Param per_page query int false "Page size" default(50)
// @Param page query int false "Page number" default(1)
// @Param force query bool false "Bypass the cache"
// @Success 200 {object} dto.CoinsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/coins [get]
func (h *CoinsHandler) GetCoins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, err := dto.NewGetCoinsRequest(r.URL.Query())
	if err != nil {
		writeValidationError(ctx, w, err)
		return
	}

	page, err := h.marketService.FetchCoins(ctx, request.Query())
	if err != nil {
		// Sólo ocurre si el cliente se fue mientras esperaba
		logging.Debug(ctx, "Client gone before coins page was ready", logging.Fields{
			"key":   request.Query().Key().String(),
			"error": err.Error(),
		})
		return
	}

	if page.SoftError != "" {
		logging.Warn(ctx, "Serving degraded coins page", logging.Fields{
			"key":        page.Key.String(),
			"source":     string(page.Source),
			"soft_error": page.SoftError,
		})
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToCoinsResponse(page))
}

// GetStatus maneja GET /api/v1/coins/status
// @Summary Acquisition status of a market page
// @Tags coins
// @Produce json
// @Param currency query string false "Quote currency" default(usd)
// @Param per_page query int false "Page size" default(50)
// @Param page query int false "Page number" default(1)
// @Success 200 {object} dto.CoinStatusResponse
// @Router /api/v1/coins/status [get]
func (h *CoinsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, err := dto.NewGetCoinsRequest(r.URL.Query())
	if err != nil {
		writeValidationError(ctx, w, err)
		return
	}

	key := request.Query().Key()
	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToStatusResponse(key, h.marketService.Status(key)))
}

// GetCoinDetail maneja GET /api/v1/coins/{id}?currency=usd
// @Summary Coin detail
// @Tags coins
// @Produce json
// @Param id path string true "Coin id"
// @Param currency query string false "Quote currency" default(usd)
// @Success 200 {object} dto.CoinDetailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/coins/{id} [get]
func (h *CoinsHandler) GetCoinDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, currency, err := dto.NewGetCoinDetailRequest(mux.Vars(r)["id"], r.URL.Query())
	if err != nil {
		writeValidationError(ctx, w, err)
		return
	}

	detail, softError, err := h.marketService.FetchCoinDetail(ctx, id, currency)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToDetailResponse(detail, currency, softError))
}

// GetCoinHistory maneja GET /api/v1/coins/{id}/history?currency=usd&days=30
// @Summary Coin price history
// @Tags coins
// @Produce json
// @Param id path string true "Coin id"
// @Param currency query string false "Quote currency" default(usd)
// @Param days query int false "Days back" default(30)
// @Success 200 {object} dto.CoinHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/coins/{id}/history [get]
func (h *CoinsHandler) GetCoinHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, err := dto.NewGetCoinHistoryRequest(mux.Vars(r)["id"], r.URL.Query())
	if err != nil {
		writeValidationError(ctx, w, err)
		return
	}

	points, softError, err := h.marketService.FetchCoinHistory(ctx, request.CoinID, request.Currency, request.Days)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToHistoryResponse(request, points, softError))
}

// GetGlobalStats maneja GET /api/v1/global?currency=usd
// @Summary Global market stats
// @Tags coins
// @Produce json
// @Param currency query string false "Quote currency" default(usd)
// @Success 200 {object} dto.GlobalStatsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/global [get]
func (h *CoinsHandler) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	currency, err := dto.NewGetGlobalRequest(r.URL.Query())
	if err != nil {
		writeValidationError(ctx, w, err)
		return
	}

	stats, softError, err := h.marketService.FetchGlobalStats(ctx, currency)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToGlobalResponse(stats, softError))
}

func (h *CoinsHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if errors.Is(err, services.ErrNotAvailable) {
		logging.Warn(ctx, "Market data not available from any provider", logging.Fields{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
		writeErrorResponse(ctx, w, http.StatusServiceUnavailable, CodeNotAvailable, err.Error())
		return
	}

	logging.ErrorWithError(ctx, "Market service failed", err, logging.Fields{"path": r.URL.Path})
	writeErrorResponse(ctx, w, http.StatusInternalServerError, CodeInternal, "Failed to fetch market data")
}
