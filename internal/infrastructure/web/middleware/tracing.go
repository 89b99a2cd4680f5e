package middleware

import (
	"bufio"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/ratelimit"
	"errors"
	"net"
	"net/http"
	"regexp"
	"time"
)

// requestIDPattern limita los X-Request-ID aceptados del cliente
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// responseWriter captura status y tamaño; soporta Hijack para WebSocket
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// RequestTracingMiddleware adds request id, start time and completion logging
func RequestTracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if !requestIDPattern.MatchString(requestID) {
			requestID = logging.GenerateRequestID()
		}

		startTime := time.Now()
		remoteIP := ratelimit.ClientIP(r)
		ctx := logging.WithRequestID(r.Context(), requestID)
		ctx = logging.WithStartTime(ctx, startTime)
		ctx = logging.WithUserAgent(ctx, r.UserAgent())
		ctx = logging.WithRemoteIP(ctx, remoteIP)

		w.Header().Set("X-Request-ID", requestID)

		wrapped := &responseWriter{ResponseWriter: w}

		r = r.WithContext(ctx)
		next.ServeHTTP(wrapped, r)

		status := wrapped.statusCode
		if status == 0 {
			status = http.StatusOK
		}
		durationMs := float64(time.Since(startTime).Nanoseconds()) / 1e6

		logging.HTTP().RequestCompleted(ctx, r.Method, r.URL.Path, status, durationMs)
		logging.Debug(ctx, "HTTP response details", logging.Fields{
			"response_size": wrapped.written,
			"request_size":  r.ContentLength,
			"remote_ip":     remoteIP,
		})
	})
}
