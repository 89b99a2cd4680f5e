package middleware

import (
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/ratelimit"
	"net/http"
	"strings"
)

// suspiciousPatterns son fragmentos que no aparecen en peticiones legítimas a esta API
var suspiciousPatterns = []string{
	"../",
	"<script",
	"union select",
	"drop table",
	"exec(",
	"eval(",
}

// LoggingMiddleware registra la recepción de cada request y marca las sospechosas.
// Complementa a RequestTracingMiddleware, que registra la finalización.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		remoteIP := ratelimit.ClientIP(r)

		logging.HTTP().RequestReceived(ctx, r.Method, r.URL.Path, r.UserAgent(), remoteIP)
		logging.Debug(ctx, "Processing HTTP request", logging.Fields{
			"headers": extractImportantHeaders(r),
			"query":   r.URL.RawQuery,
		})

		if reason := suspiciousReason(r); reason != "" {
			logging.Security().InvalidRequest(ctx, remoteIP, reason)
		}

		next.ServeHTTP(w, r)
	})
}

// extractImportantHeaders omite Authorization y cookies
func extractImportantHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string)
	for _, header := range []string{"Accept", "Accept-Encoding", "Cache-Control", "Upgrade", "X-Forwarded-For", "X-Real-IP"} {
		if value := r.Header.Get(header); value != "" {
			headers[header] = value
		}
	}
	return headers
}

func suspiciousReason(r *http.Request) string {
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(target, pattern) {
			return "unusual_request_pattern: " + pattern
		}
	}
	if r.ContentLength > 1<<20 {
		return "oversized_body"
	}
	return ""
}
