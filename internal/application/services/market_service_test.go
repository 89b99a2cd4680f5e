package services

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/domain/fault"
	"coin-market-service/internal/infrastructure/resilience"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type instantTimer struct{}

func (instantTimer) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

type fakePrimary struct {
	calls   atomic.Int32
	page    func(ctx context.Context, currency string, pageSize, page int) ([]entities.Coin, error)
	detail  func(ctx context.Context, id, currency string) (*entities.CoinDetail, error)
	history func(ctx context.Context, id, currency string, days int) ([]entities.PricePoint, error)
	global  func(ctx context.Context, currency string) (*entities.GlobalStats, error)
}

func (f *fakePrimary) Name() string { return "primary-fake" }

func (f *fakePrimary) FetchPage(ctx context.Context, currency string, pageSize, page int) ([]entities.Coin, error) {
	f.calls.Add(1)
	return f.page(ctx, currency, pageSize, page)
}

func (f *fakePrimary) FetchDetail(ctx context.Context, id, currency string) (*entities.CoinDetail, error) {
	f.calls.Add(1)
	return f.detail(ctx, id, currency)
}

func (f *fakePrimary) FetchHistory(ctx context.Context, id, currency string, days int) ([]entities.PricePoint, error) {
	f.calls.Add(1)
	return f.history(ctx, id, currency, days)
}

func (f *fakePrimary) FetchGlobal(ctx context.Context, currency string) (*entities.GlobalStats, error) {
	f.calls.Add(1)
	return f.global(ctx, currency)
}

type fakeSecondary struct {
	calls   atomic.Int32
	page    func(ctx context.Context, pageSize int) ([]entities.Coin, error)
	detail  func(ctx context.Context, id string) (*entities.CoinDetail, error)
	history func(ctx context.Context, id string, days int) ([]entities.PricePoint, error)
	global  func(ctx context.Context) (*entities.GlobalStats, error)
}

func (f *fakeSecondary) Name() string { return "secondary-fake" }

func (f *fakeSecondary) FetchPage(ctx context.Context, pageSize int) ([]entities.Coin, error) {
	f.calls.Add(1)
	return f.page(ctx, pageSize)
}

func (f *fakeSecondary) FetchDetail(ctx context.Context, id string) (*entities.CoinDetail, error) {
	f.calls.Add(1)
	return f.detail(ctx, id)
}

func (f *fakeSecondary) FetchHistory(ctx context.Context, id string, days int) ([]entities.PricePoint, error) {
	f.calls.Add(1)
	return f.history(ctx, id, days)
}

func (f *fakeSecondary) FetchGlobal(ctx context.Context) (*entities.GlobalStats, error) {
	f.calls.Add(1)
	return f.global(ctx)
}

// memoryMarketCache aplica la misma regla de vigencia que el adaptador real
type memoryMarketCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[entities.CacheKey]*entities.CacheEntry

	// missNext fuerza fallos de lectura aunque la entrada esté vigente
	missNext atomic.Int32
}

func newMemoryMarketCache(ttl time.Duration, now func() time.Time) *memoryMarketCache {
	return &memoryMarketCache{ttl: ttl, now: now, entries: map[entities.CacheKey]*entities.CacheEntry{}}
}

func (c *memoryMarketCache) Get(_ context.Context, key entities.CacheKey) (*entities.CacheEntry, bool) {
	if c.missNext.Add(-1) >= 0 {
		return nil, false
	}
	c.missNext.Store(0)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || !entry.IsFresh(c.now(), c.ttl) {
		return nil, false
	}
	return entry, true
}

func (c *memoryMarketCache) Set(_ context.Context, key entities.CacheKey, entry *entities.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func coins(ids ...string) []entities.Coin {
	out := make([]entities.Coin, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.Coin{ID: id, Symbol: entities.NormalizeSymbol(id), Price: decimal.NewFromInt(1)})
	}
	return out
}

type marketFixture struct {
	primary   *fakePrimary
	secondary *fakeSecondary
	cache     *memoryMarketCache
	clock     *clock
	service   *marketService
}

func newMarketFixture(t *testing.T) *marketFixture {
	t.Helper()
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	f := &marketFixture{
		primary: &fakePrimary{
			page: func(context.Context, string, int, int) ([]entities.Coin, error) {
				return coins("bitcoin", "ethereum"), nil
			},
		},
		secondary: &fakeSecondary{
			page: func(context.Context, int) ([]entities.Coin, error) {
				return coins("bitcoin"), nil
			},
		},
		cache: newMemoryMarketCache(5*time.Minute, clk.Now),
		clock: clk,
	}
	retrier := resilience.NewRetrier("primary-fake", 1, 200*time.Millisecond, resilience.WithTimer(instantTimer{}))
	f.service = NewMarketService(f.primary, f.secondary, f.cache, retrier, MarketServiceConfig{
		PrimaryTimeout:   time.Second,
		SecondaryTimeout: time.Second,
	}, WithServiceClock(clk.Now)).(*marketService)
	return f
}

func defaultQuery() entities.CoinQuery {
	return entities.CoinQuery{Currency: "usd", PageSize: 50, Page: 1}
}

func TestFetchCoins_PrimarySuccessIsCached(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()

	page, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)
	assert.Len(t, page.Coins, 2)
	assert.Equal(t, entities.SourcePrimary, page.Source)
	assert.Empty(t, page.SoftError)
	assert.False(t, page.Cached)

	f.clock.Advance(4 * time.Minute)
	page, err = f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)
	assert.True(t, page.Cached)
	assert.Equal(t, int32(1), f.primary.calls.Load())
}

func TestFetchCoins_StaleEntryRefetches(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()

	_, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	page, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)
	assert.False(t, page.Cached)
	assert.Equal(t, int32(2), f.primary.calls.Load())
}

func TestFetchCoins_ForceBypassesCache(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()

	_, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)

	q := defaultQuery()
	q.Force = true
	page, err := f.service.FetchCoins(ctx, q)
	require.NoError(t, err)
	assert.False(t, page.Cached)
	assert.Equal(t, int32(2), f.primary.calls.Load())
}

func TestFetchCoins_RetriesThenSucceeds(t *testing.T) {
	f := newMarketFixture(t)
	var attempts atomic.Int32
	f.primary.page = func(context.Context, string, int, int) ([]entities.Coin, error) {
		if attempts.Add(1) == 1 {
			return nil, &fault.RateLimitError{Provider: "primary-fake"}
		}
		return coins("solana"), nil
	}

	page, err := f.service.FetchCoins(context.Background(), defaultQuery())
	require.NoError(t, err)
	assert.Equal(t, entities.SourcePrimary, page.Source)
	assert.Equal(t, "solana", page.Coins[0].ID)
	assert.Equal(t, int32(2), f.primary.calls.Load())
	assert.Equal(t, int32(0), f.secondary.calls.Load())
}

func TestFetchCoins_FallbackToSecondary(t *testing.T) {
	f := newMarketFixture(t)
	f.primary.page = func(context.Context, string, int, int) ([]entities.Coin, error) {
		return nil, &fault.HTTPError{Provider: "primary-fake", Status: 500}
	}

	page, err := f.service.FetchCoins(context.Background(), defaultQuery())
	require.NoError(t, err)
	assert.Equal(t, entities.SourceSecondary, page.Source)
	assert.Equal(t, "primary provider unavailable, serving data from secondary provider (secondary-fake)", page.SoftError)
	assert.Len(t, page.Coins, 1)

	// 1 intento + 1 reintento, luego el secundario exactamente una vez
	assert.Equal(t, int32(2), f.primary.calls.Load())
	assert.Equal(t, int32(1), f.secondary.calls.Load())

	entry, ok := f.cache.Get(context.Background(), defaultQuery().Key())
	require.True(t, ok)
	assert.Equal(t, entities.SourceSecondary, entry.Source)
}

func TestFetchCoins_NonUSDFallbackNotesCurrency(t *testing.T) {
	f := newMarketFixture(t)
	f.primary.page = func(context.Context, string, int, int) ([]entities.Coin, error) {
		return nil, errors.New("boom")
	}

	q := defaultQuery()
	q.Currency = "eur"
	page, err := f.service.FetchCoins(context.Background(), q)
	require.NoError(t, err)
	assert.Contains(t, page.SoftError, "prices quoted in USD")
}

func TestFetchCoins_PrimaryTimeoutFallsBack(t *testing.T) {
	f := newMarketFixture(t)
	retrier := resilience.NewRetrier("primary-fake", 0, 0, resilience.WithTimer(instantTimer{}))
	f.service = NewMarketService(f.primary, f.secondary, f.cache, retrier, MarketServiceConfig{
		PrimaryTimeout:   20 * time.Millisecond,
		SecondaryTimeout: time.Second,
	}, WithServiceClock(f.clock.Now)).(*marketService)

	f.primary.page = func(ctx context.Context, _ string, _, _ int) ([]entities.Coin, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	page, err := f.service.FetchCoins(context.Background(), defaultQuery())
	require.NoError(t, err)
	assert.Equal(t, entities.SourceSecondary, page.Source)
}

func TestFetchCoins_TotalFailureCachesEmptyEntry(t *testing.T) {
	f := newMarketFixture(t)
	f.primary.page = func(context.Context, string, int, int) ([]entities.Coin, error) {
		return nil, &fault.NetworkError{Provider: "primary-fake", Err: errors.New("refused")}
	}
	f.secondary.page = func(context.Context, int) ([]entities.Coin, error) {
		return nil, &fault.HTTPError{Provider: "secondary-fake", Status: 503}
	}
	ctx := context.Background()

	page, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)
	require.NotNil(t, page.Coins)
	assert.Empty(t, page.Coins)
	assert.Equal(t, entities.SourceNone, page.Source)
	assert.Equal(t, SoftErrorTotalFailure, page.SoftError)
	assert.Equal(t, SoftErrorTotalFailure, f.service.Status(defaultQuery().Key()).SoftError)

	// dentro del TTL no hay nuevas llamadas
	f.clock.Advance(time.Minute)
	page, err = f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)
	assert.True(t, page.Cached)
	assert.Empty(t, page.Coins)
	assert.Equal(t, int32(2), f.primary.calls.Load())
	assert.Equal(t, int32(1), f.secondary.calls.Load())
}

func TestFetchCoins_SingleFlightPerKey(t *testing.T) {
	f := newMarketFixture(t)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	f.primary.page = func(context.Context, string, int, int) ([]entities.Coin, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return coins("bitcoin"), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*entities.CoinPage, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			page, err := f.service.FetchCoins(context.Background(), defaultQuery())
			assert.NoError(t, err)
			results[i] = page
		}(i)
	}

	<-started
	assert.True(t, f.service.Status(defaultQuery().Key()).Fetching)
	assert.False(t, f.service.Status(entities.NewCacheKey("usd", 50, 2)).Fetching)

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), f.primary.calls.Load())
	for _, page := range results {
		require.NotNil(t, page)
		assert.Len(t, page.Coins, 1)
	}
	assert.False(t, f.service.Status(defaultQuery().Key()).Fetching)
}

func TestFetchCoins_LateJoinerUsesEntryStoredMeanwhile(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()

	_, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)
	require.Equal(t, int32(1), f.primary.calls.Load())

	// la primera lectura ocurrió antes de que la otra adquisición guardara su entrada
	f.cache.missNext.Store(1)
	page, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)

	assert.True(t, page.Cached)
	assert.Len(t, page.Coins, 2)
	assert.Equal(t, int32(1), f.primary.calls.Load())
}

func TestFetchCoins_ForceIgnoresEntryStoredMeanwhile(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()

	_, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)

	query := defaultQuery()
	query.Force = true
	page, err := f.service.FetchCoins(ctx, query)
	require.NoError(t, err)

	assert.False(t, page.Cached)
	assert.Equal(t, int32(2), f.primary.calls.Load())
}

func TestFetchCoins_DifferentKeysDoNotShare(t *testing.T) {
	f := newMarketFixture(t)
	ctx := context.Background()

	q2 := defaultQuery()
	q2.Page = 2
	_, err := f.service.FetchCoins(ctx, defaultQuery())
	require.NoError(t, err)
	_, err = f.service.FetchCoins(ctx, q2)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.primary.calls.Load())
}

func TestFetchCoins_CallerCancellation(t *testing.T) {
	f := newMarketFixture(t)
	release := make(chan struct{})
	f.primary.page = func(context.Context, string, int, int) ([]entities.Coin, error) {
		<-release
		return coins("bitcoin"), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.service.FetchCoins(ctx, defaultQuery())
		done <- err
	}()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// la adquisición compartida termina y queda en cache
	close(release)
	require.Eventually(t, func() bool {
		_, ok := f.cache.Get(context.Background(), defaultQuery().Key())
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestFetchCoinDetail(t *testing.T) {
	tests := []struct {
		name         string
		primaryErr   error
		secondaryErr error
		wantSource   string
		wantErr      error
	}{
		{name: "primary", wantSource: "primary"},
		{name: "secondary", primaryErr: errors.New("down"), wantSource: "secondary"},
		{name: "none", primaryErr: errors.New("down"), secondaryErr: errors.New("down too"), wantErr: ErrNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMarketFixture(t)
			f.primary.detail = func(_ context.Context, id, _ string) (*entities.CoinDetail, error) {
				if tt.primaryErr != nil {
					return nil, tt.primaryErr
				}
				return &entities.CoinDetail{Coin: entities.Coin{ID: id}, Description: "primary"}, nil
			}
			f.secondary.detail = func(_ context.Context, id string) (*entities.CoinDetail, error) {
				if tt.secondaryErr != nil {
					return nil, tt.secondaryErr
				}
				return &entities.CoinDetail{Coin: entities.Coin{ID: id}, Description: "secondary"}, nil
			}

			detail, softErr, err := f.service.FetchCoinDetail(context.Background(), "bitcoin", "usd")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, detail)
				assert.Equal(t, SoftErrorTotalFailure, softErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, detail.Description)
			assert.Equal(t, tt.wantSource == "secondary", softErr != "")
		})
	}
}

func TestFetchCoinHistory_FallsBack(t *testing.T) {
	f := newMarketFixture(t)
	f.primary.history = func(context.Context, string, string, int) ([]entities.PricePoint, error) {
		return nil, &fault.RateLimitError{Provider: "primary-fake"}
	}
	f.secondary.history = func(_ context.Context, id string, days int) ([]entities.PricePoint, error) {
		assert.Equal(t, "ripple", id)
		assert.Equal(t, 7, days)
		return []entities.PricePoint{{Time: 1, Price: decimal.NewFromInt(2)}}, nil
	}

	points, softErr, err := f.service.FetchCoinHistory(context.Background(), "ripple", "usd", 7)
	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.NotEmpty(t, softErr)
}

func TestFetchGlobalStats(t *testing.T) {
	primaryStats := &entities.GlobalStats{Currency: "eur", BTCDominance: decimal.NewFromInt(52)}
	secondaryStats := &entities.GlobalStats{Currency: "usd", BTCDominance: decimal.NewFromInt(60)}

	tests := []struct {
		name         string
		primaryErr   error
		secondaryErr error
		want         *entities.GlobalStats
		wantSoftErr  string
		wantErr      error
	}{
		{name: "primary", want: primaryStats},
		{
			name:        "secondary in usd",
			primaryErr:  errors.New("down"),
			want:        secondaryStats,
			wantSoftErr: "primary provider unavailable, serving data from secondary provider (secondary-fake); prices quoted in USD",
		},
		{
			name:         "none",
			primaryErr:   errors.New("down"),
			secondaryErr: errors.New("down too"),
			wantSoftErr:  SoftErrorTotalFailure,
			wantErr:      ErrNotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMarketFixture(t)
			f.primary.global = func(_ context.Context, currency string) (*entities.GlobalStats, error) {
				assert.Equal(t, "eur", currency)
				return primaryStats, tt.primaryErr
			}
			f.secondary.global = func(context.Context) (*entities.GlobalStats, error) {
				return secondaryStats, tt.secondaryErr
			}

			stats, softErr, err := f.service.FetchGlobalStats(context.Background(), "eur")
			assert.Equal(t, tt.wantSoftErr, softErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stats)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, stats)
		})
	}
}
