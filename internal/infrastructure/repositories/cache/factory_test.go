package cache

import (
	"coin-market-service/internal/infrastructure/config"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_CreateCache(t *testing.T) {
	factory := NewFactory()
	factory.pingTimeout = 200 * time.Millisecond

	tests := []struct {
		name        string
		cfg         config.CacheConfig
		expectError bool
		expectType  interface{}
	}{
		{
			name:       "memory backend",
			cfg:        config.CacheConfig{Backend: "memory"},
			expectType: &MemoryCache{},
		},
		{
			name:        "unsupported backend",
			cfg:         config.CacheConfig{Backend: "memcached"},
			expectError: true,
		},
		{
			name: "redis unreachable",
			cfg: config.CacheConfig{
				Backend: "redis",
				Redis:   config.RedisConfig{Addr: "127.0.0.1:1"},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := factory.CreateCache(context.Background(), tt.cfg)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expectType, c)
		})
	}
}
