package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPMetricsMiddleware collects HTTP metrics for Prometheus
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		wrapped := &responseWriterMetrics{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		RecordHTTPRequest(r.Method, normalizePath(r.URL.Path), wrapped.statusCode,
			time.Since(startTime).Seconds(), wrapped.written)
	})
}

// responseWriterMetrics wraps http.ResponseWriter to capture metrics
type responseWriterMetrics struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriterMetrics) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriterMetrics) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Hijack permite el upgrade a WebSocket a través del wrapper
func (rw *responseWriterMetrics) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// normalizePath normalizes URL paths to avoid high cardinality in metrics
func normalizePath(path string) string {
	if path == "/" {
		return "/"
	}

	path = strings.TrimSuffix(path, "/")

	switch {
	case path == "/health", path == "/ready", path == "/metrics":
		return path
	case path == "/api/v1/coins", path == "/api/v1/coins/status":
		return path
	case strings.HasSuffix(path, "/history") && strings.HasPrefix(path, "/api/v1/coins/"):
		return "/api/v1/coins/{id}/history"
	case strings.HasPrefix(path, "/api/v1/coins/"):
		return "/api/v1/coins/{id}"
	case path == "/api/v1/favorites", path == "/api/v1/favorites/events":
		return path
	case strings.HasSuffix(path, "/toggle") && strings.HasPrefix(path, "/api/v1/favorites/"):
		return "/api/v1/favorites/{coinId}/toggle"
	case strings.HasPrefix(path, "/api/v1/favorites/"):
		return "/api/v1/favorites/{coinId}"
	case path == "/favorites":
		return path
	case strings.HasPrefix(path, "/favorites/"):
		return "/favorites/{coinId}"
	case strings.HasPrefix(path, "/api/"):
		return "/api/*"
	default:
		return "/unknown"
	}
}
