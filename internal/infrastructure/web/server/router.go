package server

import (
	_ "coin-market-service/docs"
	"coin-market-service/internal/infrastructure/metrics"
	"coin-market-service/internal/infrastructure/ratelimit"
	"coin-market-service/internal/infrastructure/web/handlers"
	"coin-market-service/internal/infrastructure/web/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const eventsPath = "/api/v1/favorites/events"

// APIHandlers agrupa los handlers de cmd/api. RateLimit puede ser nil.
type APIHandlers struct {
	Coins     *handlers.CoinsHandler
	Favorites *handlers.FavoritesHandler
	Events    *handlers.EventsHandler
	Health    *handlers.HealthHandler
	RateLimit *ratelimit.RateLimitMiddleware
}

// NewAPIRouter registra las rutas de la API de mercado y favoritos
func NewAPIRouter(h APIHandlers) http.Handler {
	router := mux.NewRouter()

	registerOperational(router, h.Health)
	registerDocs(router)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/coins", h.Coins.GetCoins).Methods(http.MethodGet)
	api.HandleFunc("/coins/status", h.Coins.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}", h.Coins.GetCoinDetail).Methods(http.MethodGet)
	api.HandleFunc("/coins/{id}/history", h.Coins.GetCoinHistory).Methods(http.MethodGet)
	api.HandleFunc("/global", h.Coins.GetGlobalStats).Methods(http.MethodGet)

	// events va antes que {coinId} para que no lo capture
	api.HandleFunc("/favorites/events", h.Events.Stream).Methods(http.MethodGet)
	api.HandleFunc("/favorites", h.Favorites.List).Methods(http.MethodGet)
	api.HandleFunc("/favorites", h.Favorites.Clear).Methods(http.MethodDelete)
	api.HandleFunc("/favorites/{coinId}", h.Favorites.Status).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{coinId}", h.Favorites.Add).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{coinId}", h.Favorites.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/favorites/{coinId}/toggle", h.Favorites.Toggle).Methods(http.MethodPost)

	var handler http.Handler = router
	handler = corsMiddleware(handler)
	handler = middleware.CredentialsMiddleware(eventsPath)(handler)
	if h.RateLimit != nil {
		handler = h.RateLimit.Handler(handler)
	}
	return chainObservability(handler)
}

// NewStoreRouter registra las rutas del servicio favorites-store
func NewStoreRouter(store *handlers.StoreHandler, health *handlers.HealthHandler) http.Handler {
	router := mux.NewRouter()

	registerOperational(router, health)

	router.HandleFunc("/favorites", store.List).Methods(http.MethodGet)
	router.HandleFunc("/favorites", store.Create).Methods(http.MethodPost)
	router.HandleFunc("/favorites/{coinId}", store.Delete).Methods(http.MethodDelete)

	var handler http.Handler = router
	handler = middleware.CredentialsMiddleware("")(handler)
	return chainObservability(handler)
}

func registerOperational(router *mux.Router, health *handlers.HealthHandler) {
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/ready", health.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// registerDocs sirve la UI de Swagger y el documento registrado por el paquete docs
func registerDocs(router *mux.Router) {
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)).Methods(http.MethodGet)

	router.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	}).Methods(http.MethodGet)
}

// chainObservability: tracing es el más externo para que todo lo demás vea el request id
func chainObservability(next http.Handler) http.Handler {
	handler := metrics.HTTPMetricsMiddleware(next)
	handler = middleware.LoggingMiddleware(handler)
	return middleware.RequestTracingMiddleware(handler)
}

// corsMiddleware adds CORS headers for browser dashboards
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
