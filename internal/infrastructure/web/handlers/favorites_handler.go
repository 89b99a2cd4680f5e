package handlers

import (
	"coin-market-service/internal/application/dto"
	"coin-market-service/internal/application/services"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/web/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// SessionSource resuelve la sesión de favoritos de un token
type SessionSource interface {
	Session(token string) *services.Session
}

// FavoritesHandler expone el espejo de favoritos de la sesión del llamador.
// Las mutaciones responden 200 con ok=false cuando el store remoto las rechaza.
type FavoritesHandler struct {
	sessions SessionSource
}

// NewFavoritesHandler creates a new instance of the favorites handler
func NewFavoritesHandler(sessions SessionSource) *FavoritesHandler {
	return &FavoritesHandler{sessions: sessions}
}

func (h *FavoritesHandler) session(r *http.Request) *services.Session {
	return h.sessions.Session(middleware.TokenFromContext(r.Context()))
}

// List maneja GET /api/v1/favorites
// @Summary Favorites of the session
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.FavoritesResponse
// @Router /api/v1/favorites [get]
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	favorites := h.session(r).Favorites

	ids := favorites.GetAll(ctx)
	writeJSONResponse(ctx, w, http.StatusOK, dto.FavoritesResponse{
		Favorites: ids,
		Count:     len(ids),
	})
}

// Status maneja GET /api/v1/favorites/{coinId}
// @Summary Whether a coin is a favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param coinId path string true "Coin id"
// @Success 200 {object} dto.FavoriteStatusResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/favorites/{coinId} [get]
func (h *FavoritesHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	coinID, err := dto.ValidateCoinID(mux.Vars(r)["coinId"])
	if err != nil {
		writeValidationError(ctx, w, err)
		return
	}

	favorites := h.session(r).Favorites
	favorites.GetAll(ctx)

	writeJSONResponse(ctx, w, http.StatusOK, dto.FavoriteStatusResponse{
		CoinID:   coinID,
		Favorite: favorites.IsFavorite(coinID),
	})
}

// Add maneja POST /api/v1/favorites/{coinId}
// @Summary Add a favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param coinId path string true "Coin id"
// @Success 200 {object} dto.FavoriteMutationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/favorites/{coinId} [post]
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "add", func(f *services.FavoritesSyncCache, r *http.Request, coinID string) bool {
		return f.Add(r.Context(), coinID)
	})
}

// Remove maneja DELETE /api/v1/favorites/{coinId}
// @Summary Remove a favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param coinId path string true "Coin id"
// @Success 200 {object} dto.FavoriteMutationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/favorites/{coinId} [delete]
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "remove", func(f *services.FavoritesSyncCache, r *http.Request, coinID string) bool {
		return f.Remove(r.Context(), coinID)
	})
}

// Toggle maneja POST /api/v1/favorites/{coinId}/toggle
// @Summary Toggle a favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param coinId path string true "Coin id"
// @Success 200 {object} dto.FavoriteMutationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/favorites/{coinId}/toggle [post]
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "toggle", func(f *services.FavoritesSyncCache, r *http.Request, coinID string) bool {
		return f.Toggle(r.Context(), coinID)
	})
}

// Clear maneja DELETE /api/v1/favorites
// @Summary Remove every favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.FavoriteMutationResponse
// @Router /api/v1/favorites [delete]
func (h *FavoritesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	favorites := h.session(r).Favorites

	ok := favorites.Clear(ctx)
	if !ok {
		logging.Warn(ctx, "Favorites clear did not complete", logging.Fields{
			"remaining": favorites.Count(),
		})
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.FavoriteMutationResponse{
		OK:    ok,
		Count: favorites.Count(),
	})
}

func (h *FavoritesHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	apply func(*services.FavoritesSyncCache, *http.Request, string) bool,
) {
	ctx := r.Context()

	coinID, err := dto.ValidateCoinID(mux.Vars(r)["coinId"])
	if err != nil {
		writeValidationError(ctx, w, err)
		return
	}

	favorites := h.session(r).Favorites
	ok := apply(favorites, r, coinID)
	if !ok {
		logging.Debug(ctx, "Favorites mutation not applied", logging.Fields{
			"operation": operation,
			"coin_id":   coinID,
		})
	}

	// Add no puebla el espejo; GetAll lo completa para que count sea el total real
	ids := favorites.GetAll(ctx)
	writeJSONResponse(ctx, w, http.StatusOK, dto.FavoriteMutationResponse{
		OK:       ok,
		CoinID:   coinID,
		Favorite: favorites.IsFavorite(coinID),
		Count:    len(ids),
	})
}
