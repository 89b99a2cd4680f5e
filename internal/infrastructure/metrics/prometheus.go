package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the coin market service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_market_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_market_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Cache Metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"}, // operation: get/set/delete, result: hit/miss/stale/success/error
	)

	CacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coin_market_cache_keys",
			Help: "Number of keys currently in cache",
		},
		[]string{"cache_type"},
	)

	// External provider metrics
	ExternalAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_external_api_requests_total",
			Help: "Total number of external API requests",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	ExternalAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_market_external_api_request_duration_seconds",
			Help:    "External API request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 3.0, 6.0, 10.0},
		},
		[]string{"service", "endpoint"},
	)

	ExternalAPIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_external_api_retries_total",
			Help: "Total number of external API retry attempts",
		},
		[]string{"service", "attempt"},
	)

	ExternalAPIRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_external_api_rate_limited_total",
			Help: "Number of 429 responses received from market data providers",
		},
		[]string{"service"},
	)

	// Market data pipeline
	CoinRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_coin_requests_total",
			Help: "Total number of coin listing requests",
		},
		[]string{"cache_result", "source"}, // cache_result: hit/miss/forced
	)

	SharedFetchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coin_market_shared_fetches_total",
			Help: "Callers that joined an in-flight fetch for the same cache key",
		},
	)

	FallbackActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_fallback_activations_total",
			Help: "Total number of fallbacks from the primary to the secondary provider",
		},
		[]string{"reason"}, // reason: timeout/rate_limit/http/network/parse
	)

	FallbackDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coin_market_fallback_duration_seconds",
			Help:    "Duration of the secondary provider call after a primary failure",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 3.0, 5.0},
		},
	)

	TotalFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coin_market_total_failures_total",
			Help: "Fetches where both providers failed and an empty listing was cached",
		},
	)

	// Favorites
	FavoritesOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_favorites_operations_total",
			Help: "Favorites operations by outcome",
		},
		[]string{"operation", "result"}, // result: success/failure/skipped
	)

	FavoritesSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coin_market_favorites_sessions",
			Help: "Number of live favorites sessions",
		},
	)

	NotifierDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coin_market_notifier_drops_total",
			Help: "Favorite change events dropped because a subscriber buffer was full",
		},
	)

	// Rate Limiting Metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_market_rate_limit_requests_total",
			Help: "Total number of requests processed by rate limiter",
		},
		[]string{"result"},
	)

	RateLimitTokensRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coin_market_rate_limit_tokens_remaining",
			Help: "Number of tokens remaining in rate limiter buckets",
		},
		[]string{"client_id"},
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coin_market_application_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)

	UptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coin_market_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)

	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordCacheOperation records cache operation metrics
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheKeys sets the number of keys held by a cache backend
func UpdateCacheKeys(cacheType string, keys int) {
	CacheKeys.WithLabelValues(cacheType).Set(float64(keys))
}

// RecordExternalAPICall records external API call metrics. Duration in seconds.
func RecordExternalAPICall(service, endpoint string, statusCode int, duration float64) {
	ExternalAPIRequestsTotal.WithLabelValues(service, endpoint, strconv.Itoa(statusCode)).Inc()
	ExternalAPIRequestDuration.WithLabelValues(service, endpoint).Observe(duration)
}

// RecordExternalAPIRetry records external API retry attempts
func RecordExternalAPIRetry(service string, attempt int) {
	ExternalAPIRetries.WithLabelValues(service, strconv.Itoa(attempt)).Inc()
}

// RecordRateLimited counts a 429 answer from a provider
func RecordRateLimited(service string) {
	ExternalAPIRateLimited.WithLabelValues(service).Inc()
}

// RecordCoinRequest records how a coin listing request was served
func RecordCoinRequest(cacheResult, source string) {
	CoinRequestsTotal.WithLabelValues(cacheResult, source).Inc()
}

func RecordSharedFetch() {
	SharedFetchesTotal.Inc()
}

// RecordFallbackActivation records a primary → secondary fallback
func RecordFallbackActivation(reason string) {
	FallbackActivationsTotal.WithLabelValues(reason).Inc()
}

func RecordFallbackDuration(duration float64) {
	FallbackDuration.Observe(duration)
}

func RecordTotalFailure() {
	TotalFailuresTotal.Inc()
}

// RecordFavoritesOperation records a favorites mutation or read
func RecordFavoritesOperation(operation, result string) {
	FavoritesOperationsTotal.WithLabelValues(operation, result).Inc()
}

func UpdateFavoritesSessions(n int) {
	FavoritesSessions.Set(float64(n))
}

func RecordNotifierDrop() {
	NotifierDropsTotal.Inc()
}

// RecordRateLimitResult records rate limiting results
func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// UpdateRateLimitTokens updates remaining tokens gauge
func UpdateRateLimitTokens(clientID string, tokens float64) {
	RateLimitTokensRemaining.WithLabelValues(clientID).Set(tokens)
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, goVersion string) {
	ApplicationInfo.WithLabelValues(version, goVersion).Set(1)
}

// UpdateUptime updates application uptime
func UpdateUptime(seconds float64) {
	UptimeSeconds.Set(seconds)
}
