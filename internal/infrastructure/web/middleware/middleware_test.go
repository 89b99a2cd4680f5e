package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"coin-market-service/internal/infrastructure/logging"

	"github.com/stretchr/testify/assert"
)

func TestRequestTracingMiddleware(t *testing.T) {
	var seenID string
	handler := RequestTracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/coins", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.NotEmpty(t, seenID)
		assert.Equal(t, seenID, rec.Header().Get("X-Request-ID"))
	})

	t.Run("keeps valid incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/coins", nil)
		req.Header.Set("X-Request-ID", "upstream-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "upstream-123", seenID)
	})

	t.Run("replaces malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/coins", nil)
		req.Header.Set("X-Request-ID", "bad id with spaces")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.NotEqual(t, "bad id with spaces", seenID)
	})
}

func TestCredentialsMiddleware(t *testing.T) {
	var seen string
	handler := CredentialsMiddleware("/api/v1/favorites/events")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TokenFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		path   string
		header string
		want   string
	}{
		{"bearer header", "/api/v1/favorites", "Bearer abc", "abc"},
		{"case insensitive scheme", "/api/v1/favorites", "bearer xyz", "xyz"},
		{"basic auth ignored", "/api/v1/favorites", "Basic Zm9vOmJhcg==", ""},
		{"missing", "/api/v1/favorites", "", ""},
		{"query token on upgrade path", "/api/v1/favorites/events?access_token=qtok", "", "qtok"},
		{"query token ignored elsewhere", "/api/v1/favorites?access_token=qtok", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = "unset"
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestSuspiciousReason(t *testing.T) {
	assert.NotEmpty(t, suspiciousReason(httptest.NewRequest(http.MethodGet, "/api/v1/coins?currency=usd%27%20UNION%20SELECT", nil)))
	assert.Empty(t, suspiciousReason(httptest.NewRequest(http.MethodGet, "/api/v1/coins?currency=usd", nil)))
}
