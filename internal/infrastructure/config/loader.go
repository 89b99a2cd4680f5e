package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading using Viper
type Loader struct {
	v           *viper.Viper
	configPaths []string
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v:           viper.New(),
		configPaths: []string{"./configs", "../configs", ".", "/etc/coin-market"},
	}
}

// WithConfigPaths reemplaza las rutas de búsqueda del config.yaml
func (l *Loader) WithConfigPaths(paths ...string) *Loader {
	l.configPaths = paths
	return l
}

// Load loads configuration from files and environment variables
func (l *Loader) Load() (*Config, error) {
	l.setupViper()

	if err := l.v.ReadInConfig(); err != nil {
		// Sin config.yaml se usan sólo defaults y env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// setupViper configures Viper to read files and env vars
func (l *Loader) setupViper() {
	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")

	for _, path := range l.configPaths {
		l.v.AddConfigPath(path)
	}

	l.v.AutomaticEnv()
	l.v.SetEnvPrefix("COIN_MARKET") // COIN_MARKET_SERVER_PORT
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv sólo resuelve claves conocidas por viper
	l.registerDefaults(GetDefaultConfig())
	l.bindEnvVars()
}

// registerDefaults declara todas las claves para que las env vars con prefijo se apliquen en Unmarshal
func (l *Loader) registerDefaults(c *Config) {
	defaults := map[string]interface{}{
		"server.port":                      c.Server.Port,
		"server.shutdown_timeout":          c.Server.ShutdownTimeout,
		"cache.backend":                    c.Cache.Backend,
		"cache.ttl":                        c.Cache.TTL,
		"cache.failure_ttl":                c.Cache.FailureTTL,
		"cache.key_prefix":                 c.Cache.KeyPrefix,
		"cache.redis.addr":                 c.Cache.Redis.Addr,
		"cache.redis.password":             c.Cache.Redis.Password,
		"cache.redis.db":                   c.Cache.Redis.DB,
		"providers.primary.base_url":       c.Providers.Primary.BaseURL,
		"providers.primary.api_key":        c.Providers.Primary.APIKey,
		"providers.primary.api_key_header": c.Providers.Primary.APIKeyHeader,
		"providers.primary.timeout":        c.Providers.Primary.Timeout,
		"providers.primary.max_retries":    c.Providers.Primary.MaxRetries,
		"providers.primary.retry_delay":    c.Providers.Primary.RetryDelay,
		"providers.secondary.base_url":     c.Providers.Secondary.BaseURL,
		"providers.secondary.timeout":      c.Providers.Secondary.Timeout,
		"favorites.base_url":               c.Favorites.BaseURL,
		"favorites.request_timeout":        c.Favorites.RequestTimeout,
		"favorites.refresh_interval":       c.Favorites.RefreshInterval,
		"favorites.session_idle_timeout":   c.Favorites.SessionIdleTimeout,
		"favorites.event_buffer":           c.Favorites.EventBuffer,
		"rate_limit.enabled":               c.RateLimit.Enabled,
		"rate_limit.capacity":              c.RateLimit.Capacity,
		"rate_limit.refill_rate":           c.RateLimit.RefillRate,
		"logging.level":                    c.Logging.Level,
		"logging.format":                   c.Logging.Format,
		"logging.add_source":               c.Logging.AddSource,
		"store.port":                       c.Store.Port,
		"store.database_url":               c.Store.DatabaseURL,
		"store.max_conns":                  c.Store.MaxConns,
	}
	for key, value := range defaults {
		l.v.SetDefault(key, value)
	}
}

// bindEnvVars maps well-known environment variables to configuration keys
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"server.port":                  "PORT",
		"cache.backend":                "CACHE_BACKEND",
		"cache.ttl":                    "CACHE_TTL",
		"cache.redis.addr":             "REDIS_ADDR",
		"cache.redis.password":         "REDIS_PASSWORD",
		"cache.redis.db":               "REDIS_DB",
		"providers.primary.base_url":   "COINGECKO_BASE_URL",
		"providers.primary.api_key":    "COINGECKO_API_KEY",
		"providers.secondary.base_url": "COINCAP_BASE_URL",
		"favorites.base_url":           "FAVORITES_BASE_URL",
		"logging.level":                "LOG_LEVEL",
		"logging.format":               "LOG_FORMAT",
		"logging.add_source":           "LOG_ADD_SOURCE",
		"rate_limit.enabled":           "RATE_LIMIT_ENABLED",
		"rate_limit.capacity":          "RATE_LIMIT_CAPACITY",
		"rate_limit.refill_rate":       "RATE_LIMIT_REFILL_RATE",
		"store.port":                   "STORE_PORT",
		"store.database_url":           "DATABASE_URL",
	}

	for configKey, envVar := range envMappings {
		// El nombre con prefijo sigue teniendo prioridad
		prefixed := "COIN_MARKET_" + strings.ToUpper(strings.ReplaceAll(configKey, ".", "_"))
		_ = l.v.BindEnv(configKey, prefixed, envVar)
	}
}

// GetEnvironment determina el entorno actual desde ENV vars
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if env == "" {
		env = "development"
	}
	return env
}
