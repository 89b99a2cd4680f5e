package cache

import (
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/config"
	"coin-market-service/internal/infrastructure/logging"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheType represents the type of cache implementation
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// Factory provides methods to create cache backends
type Factory struct {
	pingTimeout time.Duration
}

// NewFactory creates a new cache factory
func NewFactory() *Factory {
	return &Factory{pingTimeout: 5 * time.Second}
}

// CreateCache creates a cache backend from the cache section of the config
func (f *Factory) CreateCache(ctx context.Context, cfg config.CacheConfig) (interfaces.Cache, error) {
	switch CacheType(cfg.Backend) {
	case CacheTypeMemory:
		logging.Info(ctx, "Creating memory cache", logging.Fields{"type": "memory"})
		return NewMemoryCache(), nil

	case CacheTypeRedis:
		logging.Info(ctx, "Creating Redis cache", logging.Fields{
			"type":     "redis",
			"addr":     cfg.Redis.Addr,
			"database": cfg.Redis.DB,
		})
		return f.createRedisCache(ctx, cfg.Redis)

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Backend)
	}
}

// createRedisCache creates the client and checks the connection
func (f *Factory) createRedisCache(ctx context.Context, cfg config.RedisConfig) (interfaces.Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	logging.Info(ctx, "Redis connection established successfully", logging.Fields{
		"addr":     cfg.Addr,
		"database": cfg.DB,
	})
	return NewRedisCacheWithClient(rdb), nil
}
