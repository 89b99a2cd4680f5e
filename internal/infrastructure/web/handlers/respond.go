package handlers

import (
	"coin-market-service/internal/application/dto"
	"coin-market-service/internal/infrastructure/logging"
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Códigos de error expuestos en ErrorResponse.Code
const (
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeNotAvailable     = "NOT_AVAILABLE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternal         = "INTERNAL_ERROR"
)

// writeJSONResponse writes a JSON response preserving the request context for logging
func writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.ErrorWithError(ctx, "Failed to encode JSON response", err, logging.Fields{
			"status_code": statusCode,
		})
	}
}

// writeErrorResponse writes an error response
func writeErrorResponse(ctx context.Context, w http.ResponseWriter, statusCode int, code, message string) {
	writeJSONResponse(ctx, w, statusCode, dto.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    code,
	})
}

// writeValidationError maps dto validation failures to 400
func writeValidationError(ctx context.Context, w http.ResponseWriter, err error) {
	var invalid *dto.ValidationError
	if errors.As(err, &invalid) {
		logging.Market().ValidationFailed(ctx, invalid.Param, invalid.Reason)
	} else {
		logging.Security().InvalidRequest(ctx, logging.GetRemoteIP(ctx), err.Error())
	}
	writeErrorResponse(ctx, w, http.StatusBadRequest, CodeInvalidParameter, err.Error())
}
