// Package fault define los tipos de error que cruzan las capas de adquisición de datos.
package fault

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError se devuelve cuando una operación excede su deadline
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %v", e.Op, e.After)
}

// RateLimitError corresponde a un HTTP 429 del proveedor
type RateLimitError struct {
	Provider string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limit exceeded", e.Provider)
}

// HTTPError cubre cualquier otro estado no 2xx
type HTTPError struct {
	Provider string
	Status   int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: API error: %d", e.Provider, e.Status)
}

// NetworkError envuelve fallos de transporte
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError indica un cuerpo de respuesta que no se pudo decodificar
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid response body: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kinds usados como etiquetas de métricas y campos de log
const (
	KindTimeout   = "timeout"
	KindRateLimit = "rate_limit"
	KindHTTP      = "http"
	KindNetwork   = "network"
	KindParse     = "parse"
	KindCanceled  = "canceled"
	KindUnknown   = "unknown"
)

// Kind clasifica err en una de las categorías anteriores
func Kind(err error) string {
	var (
		timeoutErr   *TimeoutError
		rateLimitErr *RateLimitError
		httpErr      *HTTPError
		networkErr   *NetworkError
		parseErr     *ParseError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &rateLimitErr):
		return KindRateLimit
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &parseErr):
		return KindParse
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &networkErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// StatusOf devuelve el código HTTP asociado al error, o 0
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return 429
	}
	return 0
}
