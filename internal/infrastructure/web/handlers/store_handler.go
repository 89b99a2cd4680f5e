package handlers

import (
	"coin-market-service/internal/application/dto"
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/web/middleware"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// Mensajes del sobre {success,message,data}
const (
	msgUnauthorized  = "Unauthorized"
	msgAlreadyExists = "Coin already in favorites"
	msgInternalError = "Internal server error"
	msgInvalidCoinID = "Invalid coinId"
)

// OwnerKey deriva la clave de dueño a partir del token; el token nunca se guarda
func OwnerKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// StoreHandler implementa la API del servicio favorites-store
type StoreHandler struct {
	repo interfaces.FavoriteRepository
}

// NewStoreHandler creates the favorites-store handler
func NewStoreHandler(repo interfaces.FavoriteRepository) *StoreHandler {
	return &StoreHandler{repo: repo}
}

// ownerKey resuelve el dueño o responde 401
func (h *StoreHandler) ownerKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		writeJSONResponse(r.Context(), w, http.StatusUnauthorized, dto.Failure(msgUnauthorized))
		return "", false
	}
	return OwnerKey(token), true
}

// List maneja GET /favorites
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.ownerKey(w, r)
	if !ok {
		return
	}

	records, err := h.repo.List(ctx, owner)
	if err != nil {
		logging.ErrorWithError(ctx, "Failed to list favorites", err, nil)
		writeJSONResponse(ctx, w, http.StatusInternalServerError, dto.Failure(msgInternalError))
		return
	}

	out := make([]dto.StoreRecord, len(records))
	for i, rec := range records {
		out[i] = dto.ToStoreRecord(rec)
	}
	writeJSONResponse(ctx, w, http.StatusOK, dto.Success(out))
}

// Create maneja POST /favorites?coinId=
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.ownerKey(w, r)
	if !ok {
		return
	}

	coinID, err := dto.ValidateCoinID(r.URL.Query().Get("coinId"))
	if err != nil {
		writeJSONResponse(ctx, w, http.StatusBadRequest, dto.Failure(msgInvalidCoinID))
		return
	}

	record, err := h.repo.Create(ctx, owner, coinID)
	switch {
	case errors.Is(err, interfaces.ErrFavoriteExists):
		writeJSONResponse(ctx, w, http.StatusBadRequest, dto.Failure(msgAlreadyExists))
		return
	case err != nil:
		logging.ErrorWithError(ctx, "Failed to create favorite", err, logging.Fields{"coin_id": coinID})
		writeJSONResponse(ctx, w, http.StatusInternalServerError, dto.Failure(msgInternalError))
		return
	}

	logging.Info(ctx, "Favorite created", logging.Fields{"coin_id": coinID, "id": record.RemoteID})
	writeJSONResponse(ctx, w, http.StatusOK, dto.Success(dto.ToStoreRecord(record)))
}

// Delete maneja DELETE /favorites/{coinId}
func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.ownerKey(w, r)
	if !ok {
		return
	}

	coinID, err := dto.ValidateCoinID(mux.Vars(r)["coinId"])
	if err != nil {
		writeJSONResponse(ctx, w, http.StatusBadRequest, dto.Failure(msgInvalidCoinID))
		return
	}

	if err := h.repo.Delete(ctx, owner, coinID); err != nil {
		logging.ErrorWithError(ctx, "Failed to delete favorite", err, logging.Fields{"coin_id": coinID})
		writeJSONResponse(ctx, w, http.StatusInternalServerError, dto.Failure(msgInternalError))
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.Success[any](nil))
}
