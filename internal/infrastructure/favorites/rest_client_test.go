package favorites

import (
	"coin-market-service/internal/domain/fault"
	"coin-market-service/internal/infrastructure/config"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *RestClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewRestClient(config.FavoritesConfig{BaseURL: server.URL, RequestTimeout: timeout})
}

func TestRestClient_List(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/favorites", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success": true, "message": "Success", "data": [
			{"id": 1, "coinId": "bitcoin", "createdAt": "2024-01-01T10:00:00"},
			{"id": "2", "coinId": "ethereum", "createdAt": "2024-01-02T10:00:00Z"}
		]}`))
	})

	records, err := client.List(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].RemoteID)
	assert.Equal(t, "bitcoin", records[0].CoinID)
	assert.Equal(t, 2024, records[0].CreatedAt.Year())
	assert.Equal(t, "2", records[1].RemoteID)
}

func TestRestClient_Create(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "solana", r.URL.Query().Get("coinId"))
		_, _ = w.Write([]byte(`{"success": true, "message": "Success", "data": {"id": 9, "coinId": "solana", "createdAt": "2024-03-01T00:00:00"}}`))
	})

	rec, err := client.Create(context.Background(), "tok", "solana")
	require.NoError(t, err)
	assert.Equal(t, "9", rec.RemoteID)
	assert.Equal(t, "solana", rec.CoinID)
}

func TestRestClient_CreateDuplicateIsHTTPError(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success": false, "message": "Coin already in favorites", "data": null}`))
	})

	_, err := client.Create(context.Background(), "tok", "bitcoin")
	var httpErr *fault.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestRestClient_Delete(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/favorites/avalanche-2", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "message": "Success", "data": null}`))
	})

	require.NoError(t, client.Delete(context.Background(), "tok", "avalanche-2"))
}

func TestRestClient_Rejected(t *testing.T) {
	client := newTestClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "nope", "data": null}`))
	})

	err := client.Delete(context.Background(), "tok", "bitcoin")
	assert.True(t, errors.Is(err, ErrRejected))
}

func TestRestClient_Timeout(t *testing.T) {
	client := newTestClient(t, 20*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	_, err := client.List(context.Background(), "tok")
	var timeoutErr *fault.TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}
