package cache

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/metrics"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MarketCacheAdapter guarda CacheEntry serializadas en JSON sobre cualquier interfaces.Cache,
// bajo la clave <prefix><currency-pageSize-page>. La vigencia se decide por FetchedAt.
type MarketCacheAdapter struct {
	backend    interfaces.Cache
	prefix     string
	ttl        time.Duration
	failureTTL time.Duration
	now        func() time.Time
}

var _ interfaces.MarketCache = (*MarketCacheAdapter)(nil)

// MarketCacheOption configura el adaptador
type MarketCacheOption func(*MarketCacheAdapter)

// WithClock sustituye el reloj usado para evaluar la vigencia
func WithClock(now func() time.Time) MarketCacheOption {
	return func(a *MarketCacheAdapter) {
		a.now = now
	}
}

// NewMarketCache crea el adaptador. failureTTL aplica a las entradas sin fuente (fallo total).
func NewMarketCache(backend interfaces.Cache, prefix string, ttl, failureTTL time.Duration, opts ...MarketCacheOption) *MarketCacheAdapter {
	if failureTTL <= 0 || failureTTL > ttl {
		failureTTL = ttl
	}
	a := &MarketCacheAdapter{
		backend:    backend,
		prefix:     prefix,
		ttl:        ttl,
		failureTTL: failureTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *MarketCacheAdapter) key(key entities.CacheKey) string {
	return a.prefix + key.String()
}

// ttlFor devuelve la vigencia aplicable a la entrada
func (a *MarketCacheAdapter) ttlFor(entry *entities.CacheEntry) time.Duration {
	if entry.Source == entities.SourceNone {
		return a.failureTTL
	}
	return a.ttl
}

// Get devuelve la entrada sólo si existe y sigue vigente
func (a *MarketCacheAdapter) Get(ctx context.Context, key entities.CacheKey) (*entities.CacheEntry, bool) {
	storageKey := a.key(key)

	raw, err := a.backend.Get(ctx, storageKey)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) && !errors.Is(err, ErrKeyExpired) {
			metrics.RecordCacheOperation("get", "error")
			logging.Cache().CacheError(ctx, logging.CacheOpGet, storageKey, err)
			return nil, false
		}
		metrics.RecordCacheOperation("get", "miss")
		logging.CacheOperation(ctx, logging.CacheOpGet, storageKey, false)
		return nil, false
	}

	var entry entities.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		metrics.RecordCacheOperation("get", "error")
		logging.Cache().CacheError(ctx, logging.CacheOpGet, storageKey, fmt.Errorf("decode entry: %w", err))
		return nil, false
	}

	if !entry.IsFresh(a.now(), a.ttlFor(&entry)) {
		metrics.RecordCacheOperation("get", "stale")
		logging.CacheOperation(ctx, logging.CacheOpGet, storageKey, false)
		return nil, false
	}

	if entry.Data == nil {
		entry.Data = []entities.Coin{}
	}

	metrics.RecordCacheOperation("get", "hit")
	logging.CacheOperation(ctx, logging.CacheOpGet, storageKey, true)
	return &entry, true
}

// Set reemplaza la entrada completa para key
func (a *MarketCacheAdapter) Set(ctx context.Context, key entities.CacheKey, entry *entities.CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("nil cache entry for %s", key)
	}
	stored := *entry
	if stored.Data == nil {
		stored.Data = []entities.Coin{}
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		metrics.RecordCacheOperation("set", "error")
		return fmt.Errorf("encode cache entry: %w", err)
	}

	storageKey := a.key(key)
	if err := a.backend.Set(ctx, storageKey, string(payload), a.ttl); err != nil {
		metrics.RecordCacheOperation("set", "error")
		logging.Cache().CacheError(ctx, logging.CacheOpSet, storageKey, err)
		return fmt.Errorf("store cache entry %s: %w", storageKey, err)
	}

	metrics.RecordCacheOperation("set", "success")
	logging.Cache().Set(ctx, storageKey, a.ttlFor(&stored).Seconds())
	return nil
}
