package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validator valida la configuración cargada
type Validator struct{}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{}
}

// Validate valida la configuración del gateway (cmd/api)
func (v *Validator) Validate(config *Config) error {
	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateCache(config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := v.validateProviders(config.Providers); err != nil {
		return fmt.Errorf("providers config validation failed: %w", err)
	}

	if err := v.validateFavorites(config.Favorites); err != nil {
		return fmt.Errorf("favorites config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

// ValidateStore valida la configuración del servicio de favoritos (cmd/favorites-store)
func (v *Validator) ValidateStore(config *Config) error {
	if err := v.validateStore(config.Store); err != nil {
		return fmt.Errorf("store config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateServer(config ServerConfig) error {
	if err := validatePort(config.Port); err != nil {
		return err
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	return nil
}

// validateCache valida la configuración del cache de mercado
func (v *Validator) validateCache(config CacheConfig) error {
	validBackends := []string{"memory", "redis"}
	if !contains(validBackends, config.Backend) {
		return fmt.Errorf("invalid cache backend: %s, must be one of: %v", config.Backend, validBackends)
	}

	if err := validateTTL("cache ttl", config.TTL); err != nil {
		return err
	}

	if err := validateTTL("cache failure_ttl", config.FailureTTL); err != nil {
		return err
	}

	if config.FailureTTL > config.TTL {
		return fmt.Errorf("cache failure_ttl (%v) cannot exceed ttl (%v)", config.FailureTTL, config.TTL)
	}

	if config.KeyPrefix == "" {
		return fmt.Errorf("cache key_prefix cannot be empty")
	}

	if config.Backend == "redis" {
		if err := v.validateRedis(config.Redis); err != nil {
			return err
		}
	}

	return nil
}

func validateTTL(name string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%s must be positive, got: %v", name, ttl)
	}
	if ttl < time.Second {
		return fmt.Errorf("%s too short: %v, min 1 second", name, ttl)
	}
	if ttl > 24*time.Hour {
		return fmt.Errorf("%s too long: %v, max 24 hours", name, ttl)
	}
	return nil
}

// validateRedis valida la configuración de Redis
func (v *Validator) validateRedis(config RedisConfig) error {
	if config.Addr == "" {
		return fmt.Errorf("redis addr cannot be empty")
	}

	if !strings.Contains(config.Addr, ":") {
		return fmt.Errorf("invalid redis addr format: %s, expected host:port", config.Addr)
	}

	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("invalid redis DB: %d, must be between 0-15", config.DB)
	}

	return nil
}

// validateProviders valida CoinGecko y CoinCap
func (v *Validator) validateProviders(config ProvidersConfig) error {
	primary := config.Primary
	if err := v.validateURL(primary.BaseURL, "primary base_url"); err != nil {
		return err
	}

	if primary.Timeout <= 0 {
		return fmt.Errorf("primary timeout must be positive, got: %v", primary.Timeout)
	}

	if primary.MaxRetries < 0 || primary.MaxRetries > 5 {
		return fmt.Errorf("primary max_retries must be between 0-5, got: %d", primary.MaxRetries)
	}

	if primary.RetryDelay < 0 || primary.RetryDelay > 10*time.Second {
		return fmt.Errorf("primary retry_delay must be between 0 and 10s, got: %v", primary.RetryDelay)
	}

	if primary.APIKey != "" && primary.APIKeyHeader == "" {
		return fmt.Errorf("primary api_key_header cannot be empty when api_key is set")
	}

	secondary := config.Secondary
	if err := v.validateURL(secondary.BaseURL, "secondary base_url"); err != nil {
		return err
	}

	if secondary.Timeout <= 0 {
		return fmt.Errorf("secondary timeout must be positive, got: %v", secondary.Timeout)
	}

	return nil
}

// validateFavorites valida el cliente del store remoto
func (v *Validator) validateFavorites(config FavoritesConfig) error {
	if err := v.validateURL(config.BaseURL, "favorites base_url"); err != nil {
		return err
	}

	if config.RequestTimeout <= 0 {
		return fmt.Errorf("favorites request_timeout must be positive, got: %v", config.RequestTimeout)
	}

	if config.RefreshInterval <= 0 {
		return fmt.Errorf("favorites refresh_interval must be positive, got: %v", config.RefreshInterval)
	}

	if config.SessionIdleTimeout < config.RefreshInterval {
		return fmt.Errorf("favorites session_idle_timeout (%v) must be >= refresh_interval (%v)",
			config.SessionIdleTimeout, config.RefreshInterval)
	}

	if config.EventBuffer < 1 || config.EventBuffer > 1024 {
		return fmt.Errorf("favorites event_buffer must be between 1-1024, got: %d", config.EventBuffer)
	}

	return nil
}

// validateRateLimit valida la configuración de rate limiting
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.Capacity <= 0 {
		return fmt.Errorf("rate_limit capacity must be positive when enabled, got: %d", config.Capacity)
	}

	if config.RefillRate <= 0 {
		return fmt.Errorf("rate_limit refill_rate must be positive when enabled, got: %d", config.RefillRate)
	}

	if config.Capacity > 10000 {
		return fmt.Errorf("rate_limit capacity too high: %d, max 10000", config.Capacity)
	}

	if config.RefillRate > 1000 {
		return fmt.Errorf("rate_limit refill_rate too high: %d, max 1000", config.RefillRate)
	}

	return nil
}

// validateLogging valida la configuración de logging
func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, config.Level) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, config.Format) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	return nil
}

func (v *Validator) validateStore(config StoreConfig) error {
	if err := validatePort(config.Port); err != nil {
		return err
	}

	if config.DatabaseURL == "" {
		return fmt.Errorf("store database_url cannot be empty")
	}

	parsed, err := url.Parse(config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("invalid store database_url: %v", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("invalid store database_url scheme: %s, must be postgres or postgresql", parsed.Scheme)
	}

	if config.MaxConns < 1 || config.MaxConns > 100 {
		return fmt.Errorf("store max_conns must be between 1-100, got: %d", config.MaxConns)
	}

	return nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", port)
	}
	return nil
}

// validateURL valida que una URL sea válida para HTTP/HTTPS
func (v *Validator) validateURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %s, error: %v", fieldName, rawURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: %s, must be http or https", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}

	return nil
}

// contains verifica si un slice contiene un elemento (case-insensitive)
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
