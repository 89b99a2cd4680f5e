package services

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/domain/fault"
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/metrics"
	"coin-market-service/internal/infrastructure/resilience"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultPrimaryTimeout   = 6 * time.Second
	DefaultSecondaryTimeout = 3 * time.Second
)

// Mensajes de soft error expuestos al consumidor
const (
	SoftErrorDegraded     = "primary provider unavailable, serving data from secondary provider (%s)"
	SoftErrorTotalFailure = "market data unavailable from primary and secondary providers"
	usdOnlyNote           = "; prices quoted in USD"
)

// ErrNotAvailable se devuelve en detalle/histórico cuando ambos proveedores fallan
var ErrNotAvailable = errors.New("market data not available")

// MarketServiceConfig agrupa los deadlines por proveedor
type MarketServiceConfig struct {
	PrimaryTimeout   time.Duration
	SecondaryTimeout time.Duration
}

// marketService implementa interfaces.MarketService: cache, primario con reintentos,
// secundario como respaldo y entrada vacía ante fallo total.
type marketService struct {
	primary          interfaces.PrimaryProvider
	secondary        interfaces.SecondaryProvider
	cache            interfaces.MarketCache
	retrier          *resilience.Retrier
	primaryTimeout   time.Duration
	secondaryTimeout time.Duration
	now              func() time.Time

	group singleflight.Group

	mu     sync.RWMutex
	status map[entities.CacheKey]entities.FetchStatus
}

// MarketServiceOption personaliza el servicio
type MarketServiceOption func(*marketService)

// WithServiceClock fija el reloj usado para sellar las entradas
func WithServiceClock(now func() time.Time) MarketServiceOption {
	return func(s *marketService) {
		s.now = now
	}
}

// NewMarketService creates the market data orchestrator
func NewMarketService(
	primary interfaces.PrimaryProvider,
	secondary interfaces.SecondaryProvider,
	cache interfaces.MarketCache,
	retrier *resilience.Retrier,
	cfg MarketServiceConfig,
	opts ...MarketServiceOption,
) interfaces.MarketService {
	if cfg.PrimaryTimeout <= 0 {
		cfg.PrimaryTimeout = DefaultPrimaryTimeout
	}
	if cfg.SecondaryTimeout <= 0 {
		cfg.SecondaryTimeout = DefaultSecondaryTimeout
	}

	s := &marketService{
		primary:          primary,
		secondary:        secondary,
		cache:            cache,
		retrier:          retrier,
		primaryTimeout:   cfg.PrimaryTimeout,
		secondaryTimeout: cfg.SecondaryTimeout,
		now:              time.Now,
		status:           make(map[entities.CacheKey]entities.FetchStatus),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchCoins sirve una página de mercado. Los fallos de proveedores nunca llegan al llamador:
// el único error posible es la cancelación de su propio contexto mientras espera.
func (s *marketService) FetchCoins(ctx context.Context, query entities.CoinQuery) (*entities.CoinPage, error) {
	key := query.Key()
	logging.Market().CoinsRequested(ctx, key.String(), query.Force)

	if !query.Force {
		if entry, ok := s.cache.Get(ctx, key); ok {
			metrics.RecordCoinRequest("hit", string(entry.Source))
			logging.Market().CoinsServed(ctx, key.String(), len(entry.Data), string(entry.Source), true)
			return newCoinPage(key, entry, true), nil
		}
	}

	res, err := s.join(ctx, key, query.Force)
	if err != nil {
		return nil, err
	}
	if res.Shared {
		metrics.RecordSharedFetch()
	}

	flight := res.Val.(flightResult)
	if flight.cached {
		metrics.RecordCoinRequest("hit", string(flight.entry.Source))
		logging.Market().CoinsServed(ctx, key.String(), len(flight.entry.Data), string(flight.entry.Source), true)
		return newCoinPage(key, flight.entry, true), nil
	}

	cacheResult := "miss"
	if query.Force {
		cacheResult = "forced"
	}
	metrics.RecordCoinRequest(cacheResult, string(flight.entry.Source))
	logging.Market().CoinsServed(ctx, key.String(), len(flight.entry.Data), string(flight.entry.Source), false)
	return newCoinPage(key, flight.entry, false), nil
}

// flightResult es lo que comparte una adquisición entre los llamadores de la misma clave
type flightResult struct {
	entry  *entities.CacheEntry
	cached bool
}

// join se une a la adquisición en curso para key o abre una nueva. La adquisición sigue
// aunque el primer llamador se vaya. Una adquisición no forzada vuelve a mirar la cache
// antes de salir a los proveedores: otra pudo terminar entre el primer Get y el DoChan.
func (s *marketService) join(ctx context.Context, key entities.CacheKey, force bool) (singleflight.Result, error) {
	fetchCtx := context.WithoutCancel(ctx)
	flight := func(force bool) <-chan singleflight.Result {
		return s.group.DoChan(key.String(), func() (interface{}, error) {
			if !force {
				if entry, ok := s.cache.Get(fetchCtx, key); ok {
					return flightResult{entry: entry, cached: true}, nil
				}
			}
			return flightResult{entry: s.refresh(fetchCtx, key)}, nil
		})
	}

	ch := flight(force)
	for {
		select {
		case res := <-ch:
			// un llamador forzado no se conforma con la cache que encontró otro
			if force && res.Val.(flightResult).cached {
				ch = flight(true)
				continue
			}
			return res, nil
		case <-ctx.Done():
			return singleflight.Result{}, ctx.Err()
		}
	}
}

// Status informa si hay una adquisición en curso para key y el último soft error
func (s *marketService) Status(key entities.CacheKey) entities.FetchStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[key]
}

// refresh ejecuta primario → secundario y siempre guarda una entrada
func (s *marketService) refresh(ctx context.Context, key entities.CacheKey) *entities.CacheEntry {
	s.updateStatus(key, func(st *entities.FetchStatus) { st.Fetching = true })

	result := acquire(ctx, s, key.String(), key.Currency,
		func(ctx context.Context) ([]entities.Coin, error) {
			return s.primary.FetchPage(ctx, key.Currency, key.PageSize, key.Page)
		},
		func(ctx context.Context) ([]entities.Coin, error) {
			return s.secondary.FetchPage(ctx, key.PageSize)
		},
	)

	entry := &entities.CacheEntry{
		Data:      result.value,
		FetchedAt: s.now(),
		Source:    result.source,
		SoftError: result.softError,
	}
	if entry.Data == nil {
		entry.Data = []entities.Coin{}
	}

	if err := s.cache.Set(ctx, key, entry); err != nil {
		logging.Cache().CacheError(ctx, "set", key.String(), err)
	}

	s.updateStatus(key, func(st *entities.FetchStatus) {
		st.Fetching = false
		st.SoftError = entry.SoftError
	})
	return entry
}

// FetchCoinDetail busca la ficha en el primario y, si falla, en el secundario
func (s *marketService) FetchCoinDetail(ctx context.Context, id, currency string) (*entities.CoinDetail, string, error) {
	result := acquire(ctx, s, "detail:"+id, currency,
		func(ctx context.Context) (*entities.CoinDetail, error) {
			return s.primary.FetchDetail(ctx, id, currency)
		},
		func(ctx context.Context) (*entities.CoinDetail, error) {
			return s.secondary.FetchDetail(ctx, id)
		},
	)
	if result.source == entities.SourceNone {
		return nil, result.softError, fmt.Errorf("coin %s: %w", id, ErrNotAvailable)
	}
	return result.value, result.softError, nil
}

// FetchCoinHistory devuelve la serie de precios de los últimos days días
func (s *marketService) FetchCoinHistory(ctx context.Context, id, currency string, days int) ([]entities.PricePoint, string, error) {
	result := acquire(ctx, s, fmt.Sprintf("history:%s:%d", id, days), currency,
		func(ctx context.Context) ([]entities.PricePoint, error) {
			return s.primary.FetchHistory(ctx, id, currency, days)
		},
		func(ctx context.Context) ([]entities.PricePoint, error) {
			return s.secondary.FetchHistory(ctx, id, days)
		},
	)
	if result.source == entities.SourceNone {
		return nil, result.softError, fmt.Errorf("coin %s history: %w", id, ErrNotAvailable)
	}
	return result.value, result.softError, nil
}

// FetchGlobalStats devuelve los agregados del mercado. El secundario sólo cotiza en USD.
func (s *marketService) FetchGlobalStats(ctx context.Context, currency string) (*entities.GlobalStats, string, error) {
	result := acquire(ctx, s, "global:"+currency, currency,
		func(ctx context.Context) (*entities.GlobalStats, error) {
			return s.primary.FetchGlobal(ctx, currency)
		},
		func(ctx context.Context) (*entities.GlobalStats, error) {
			return s.secondary.FetchGlobal(ctx)
		},
	)
	if result.source == entities.SourceNone {
		return nil, result.softError, fmt.Errorf("global stats: %w", ErrNotAvailable)
	}
	return result.value, result.softError, nil
}

type acquisition[T any] struct {
	value     T
	source    entities.DataSource
	softError string
}

// acquire corre el primario con reintentos (deadline por intento) y el secundario una sola vez
func acquire[T any](
	ctx context.Context,
	s *marketService,
	label, currency string,
	primary func(context.Context) (T, error),
	secondary func(context.Context) (T, error),
) acquisition[T] {
	start := time.Now()

	value, primaryErr := resilience.Do(ctx, s.retrier, func(ctx context.Context, attempt int) (T, error) {
		return resilience.Run(ctx, s.primary.Name(), s.primaryTimeout, primary)
	})
	if primaryErr == nil {
		return acquisition[T]{value: value, source: entities.SourcePrimary}
	}

	reason := fault.Kind(primaryErr)
	metrics.RecordFallbackActivation(reason)
	logging.Market().FallbackActivated(ctx, label, reason, primaryErr)

	value, secondaryErr := resilience.Run(ctx, s.secondary.Name(), s.secondaryTimeout, secondary)
	metrics.RecordFallbackDuration(time.Since(start).Seconds())

	if secondaryErr == nil {
		softError := fmt.Sprintf(SoftErrorDegraded, s.secondary.Name())
		if !strings.EqualFold(currency, "usd") {
			softError += usdOnlyNote
		}
		return acquisition[T]{value: value, source: entities.SourceSecondary, softError: softError}
	}

	metrics.RecordTotalFailure()
	logging.Market().TotalFailure(ctx, label, primaryErr, secondaryErr)

	var zero T
	return acquisition[T]{value: zero, source: entities.SourceNone, softError: SoftErrorTotalFailure}
}

func (s *marketService) updateStatus(key entities.CacheKey, fn func(*entities.FetchStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status[key]
	fn(&st)
	if !st.Fetching && st.SoftError == "" {
		delete(s.status, key)
		return
	}
	s.status[key] = st
}

func newCoinPage(key entities.CacheKey, entry *entities.CacheEntry, cached bool) *entities.CoinPage {
	coins := entry.Data
	if coins == nil {
		coins = []entities.Coin{}
	}
	return &entities.CoinPage{
		Key:       key,
		Coins:     coins,
		Source:    entry.Source,
		SoftError: entry.SoftError,
		FetchedAt: entry.FetchedAt,
		Cached:    cached,
	}
}
