package ratelimit

import (
	"coin-market-service/internal/application/dto"
	"coin-market-service/internal/infrastructure/config"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/metrics"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitMiddleware limita las peticiones entrantes por IP de cliente
type RateLimitMiddleware struct {
	limiter   *RateLimiterCollection
	skipPaths map[string]bool
	enabled   bool
}

// NewRateLimitMiddleware creates the middleware from configuration
func NewRateLimitMiddleware(cfg config.RateLimitConfig) *RateLimitMiddleware {
	return newRateLimitMiddleware(cfg, time.Now)
}

func newRateLimitMiddleware(cfg config.RateLimitConfig, now func() time.Time) *RateLimitMiddleware {
	var limiter *RateLimiterCollection
	if cfg.Enabled {
		limiter = NewRateLimiterCollection(cfg.Capacity, cfg.RefillRate, now)
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		skipPaths: map[string]bool{
			"/health":  true,
			"/ready":   true,
			"/metrics": true,
		},
		enabled: cfg.Enabled,
	}
}

// Handler returns the HTTP middleware handler
func (rlm *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rlm.enabled || rlm.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientID := ClientIP(r)
		bucket := rlm.limiter.Bucket(clientID)
		allowed := bucket.Allow()
		remaining := bucket.Tokens()

		metrics.RecordRateLimitResult(allowed)
		metrics.UpdateRateLimitTokens(clientID, float64(remaining))

		if !allowed {
			logging.Security().RateLimitExceeded(r.Context(), clientID, r.URL.Path)
			rlm.writeRateLimitError(w, bucket.RetryAfter())
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		next.ServeHTTP(w, r)
	})
}

// ClientIP extrae la IP del cliente considerando proxies
func ClientIP(r *http.Request) string {
	if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
		first, _, _ := strings.Cut(xForwardedFor, ",")
		return strings.TrimSpace(first)
	}

	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return strings.TrimSpace(xRealIP)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (rlm *RateLimitMiddleware) writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   "RATE_LIMIT_EXCEEDED",
		Message: "Rate limit exceeded. Please slow down your requests.",
		Code:    strconv.Itoa(http.StatusTooManyRequests),
	})
}
