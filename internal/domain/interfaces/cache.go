package interfaces

import (
	"context"
	"time"
)

// Cache es el backend clave/valor (memoria o Redis) sobre el que se montan los adaptadores tipados
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
