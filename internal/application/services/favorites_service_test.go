package services

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/domain/interfaces"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore es un store en memoria que cuenta llamadas y permite inyectar fallos
type fakeStore struct {
	mu         sync.Mutex
	records    map[string][]entities.FavoriteRecord
	nextID     int
	listCalls  int
	createCall int
	deleteCall int
	failList   error
	failCreate error
	failDelete map[string]error
	onCreate   func(coinID string)

	// onList corre después de tomar la instantánea y antes de devolverla
	onList func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string][]entities.FavoriteRecord{}, failDelete: map[string]error{}}
}

func (s *fakeStore) seed(token string, coinIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range coinIDs {
		s.nextID++
		s.records[token] = append(s.records[token], entities.FavoriteRecord{
			RemoteID: fmt.Sprint(s.nextID),
			CoinID:   id,
		})
	}
}

func (s *fakeStore) List(_ context.Context, token string) ([]entities.FavoriteRecord, error) {
	s.mu.Lock()
	s.listCalls++
	if s.failList != nil {
		s.mu.Unlock()
		return nil, s.failList
	}
	out := make([]entities.FavoriteRecord, len(s.records[token]))
	copy(out, s.records[token])
	hook := s.onList
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, token, coinID string) (entities.FavoriteRecord, error) {
	if s.onCreate != nil {
		s.onCreate(coinID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCall++
	if s.failCreate != nil {
		return entities.FavoriteRecord{}, s.failCreate
	}
	for _, r := range s.records[token] {
		if r.CoinID == coinID {
			return entities.FavoriteRecord{}, errors.New("Coin already in favorites")
		}
	}
	s.nextID++
	rec := entities.FavoriteRecord{RemoteID: fmt.Sprint(s.nextID), CoinID: coinID, CreatedAt: time.Now()}
	s.records[token] = append(s.records[token], rec)
	return rec, nil
}

func (s *fakeStore) Delete(_ context.Context, token, coinID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCall++
	if err := s.failDelete[coinID]; err != nil {
		return err
	}
	kept := s.records[token][:0]
	for _, r := range s.records[token] {
		if r.CoinID != coinID {
			kept = append(kept, r)
		}
	}
	s.records[token] = kept
	return nil
}

func (s *fakeStore) calls() (list, create, del int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.createCall, s.deleteCall
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []entities.FavoriteChange
}

func (p *recordingPublisher) Publish(change entities.FavoriteChange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
}

func (p *recordingPublisher) snapshot() []entities.FavoriteChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entities.FavoriteChange(nil), p.changes...)
}

const testToken = "token-123"

func newFavorites(store interfaces.FavoritesStore, token string, clk *clock) (*FavoritesSyncCache, *recordingPublisher) {
	pub := &recordingPublisher{}
	f := NewFavoritesSyncCache(
		interfaces.StaticCredential(token),
		store,
		pub,
		WithRefreshInterval(30*time.Second),
		WithFavoritesClock(clk.Now),
	)
	return f, pub
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestFavorites_UnauthenticatedIsEmpty(t *testing.T) {
	store := newFakeStore()
	f, _ := newFavorites(store, "", newClock())
	ctx := context.Background()

	assert.Equal(t, []string{}, f.GetAll(ctx))
	assert.False(t, f.Add(ctx, "bitcoin"))
	assert.False(t, f.Remove(ctx, "bitcoin"))
	assert.False(t, f.Clear(ctx))

	list, create, del := store.calls()
	assert.Zero(t, list+create+del)
}

func TestFavorites_GetAllUsesMirrorWithinInterval(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin", "ethereum")
	clk := newClock()
	f, _ := newFavorites(store, testToken, clk)
	ctx := context.Background()

	assert.Equal(t, []string{"bitcoin", "ethereum"}, f.GetAll(ctx))
	clk.Advance(29 * time.Second)
	f.GetAll(ctx)
	list, _, _ := store.calls()
	assert.Equal(t, 1, list)

	clk.Advance(time.Second)
	f.GetAll(ctx)
	list, _, _ = store.calls()
	assert.Equal(t, 2, list)
}

func TestFavorites_GetAllDeduplicates(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin", "bitcoin", "solana")
	f, _ := newFavorites(store, testToken, newClock())

	assert.Equal(t, []string{"bitcoin", "solana"}, f.GetAll(context.Background()))
	assert.Equal(t, 2, f.Count())
}

func TestFavorites_GetAllFailureKeepsMirror(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin")
	clk := newClock()
	f, _ := newFavorites(store, testToken, clk)
	ctx := context.Background()

	require.Equal(t, []string{"bitcoin"}, f.GetAll(ctx))

	store.failList = errors.New("store down")
	clk.Advance(time.Minute)
	assert.Equal(t, []string{"bitcoin"}, f.GetAll(ctx))
}

func TestFavorites_ReloadDoesNotOverwriteConcurrentAdd(t *testing.T) {
	store := newFakeStore()
	f, _ := newFavorites(store, testToken, newClock())
	ctx := context.Background()

	listed := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.onList = func() {
		once.Do(func() {
			close(listed)
			<-release
		})
	}

	done := make(chan []string)
	go func() { done <- f.GetAll(ctx) }()

	<-listed
	require.True(t, f.Add(ctx, "bitcoin"))
	close(release)
	<-done

	assert.True(t, f.IsFavorite("bitcoin"))
	assert.Equal(t, []string{"bitcoin"}, f.GetAll(ctx))

	// el reload descartado no marca el espejo como fresco
	list, _, _ := store.calls()
	assert.Equal(t, 2, list)
}

func TestFavorites_ReloadDoesNotResurrectConcurrentRemove(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin", "ethereum")
	clk := newClock()
	f, _ := newFavorites(store, testToken, clk)
	ctx := context.Background()
	require.Len(t, f.GetAll(ctx), 2)

	listed := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.onList = func() {
		once.Do(func() {
			close(listed)
			<-release
		})
	}

	clk.Advance(time.Minute)
	done := make(chan []string)
	go func() { done <- f.GetAll(ctx) }()

	<-listed
	require.True(t, f.Remove(ctx, "ethereum"))
	close(release)
	<-done

	assert.False(t, f.IsFavorite("ethereum"))
	assert.True(t, f.IsFavorite("bitcoin"))
}

func TestFavorites_IsFavoriteNeverFetches(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin")
	f, _ := newFavorites(store, testToken, newClock())

	assert.False(t, f.IsFavorite("bitcoin"))
	list, _, _ := store.calls()
	assert.Zero(t, list)
}

func TestFavorites_OptimisticAdd(t *testing.T) {
	store := newFakeStore()
	f, pub := newFavorites(store, testToken, newClock())
	ctx := context.Background()

	require.True(t, f.Add(ctx, "bitcoin"))
	assert.True(t, f.IsFavorite("bitcoin"))

	changes := pub.snapshot()
	require.Len(t, changes, 1)
	assert.Equal(t, entities.ChangeAdd, changes[0].Action)
	assert.Equal(t, "bitcoin", changes[0].CoinID)
}

func TestFavorites_AddFailureLeavesMirror(t *testing.T) {
	store := newFakeStore()
	store.failCreate = errors.New("boom")
	f, pub := newFavorites(store, testToken, newClock())

	assert.False(t, f.Add(context.Background(), "bitcoin"))
	assert.False(t, f.IsFavorite("bitcoin"))
	assert.Empty(t, pub.snapshot())
}

func TestFavorites_RemoveMissWithoutRemoteCall(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin")
	f, pub := newFavorites(store, testToken, newClock())
	ctx := context.Background()
	f.GetAll(ctx)

	assert.False(t, f.Remove(ctx, "doesnotexist"))
	_, _, del := store.calls()
	assert.Zero(t, del)
	assert.Empty(t, pub.snapshot())
}

func TestFavorites_RemoveLazilyPopulates(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin", "ethereum")
	f, pub := newFavorites(store, testToken, newClock())

	require.True(t, f.Remove(context.Background(), "ethereum"))
	assert.Equal(t, []string{"bitcoin"}, f.GetAll(context.Background()))

	list, _, del := store.calls()
	assert.Equal(t, 1, list)
	assert.Equal(t, 1, del)
	changes := pub.snapshot()
	require.Len(t, changes, 1)
	assert.Equal(t, entities.ChangeRemove, changes[0].Action)
}

func TestFavorites_RemoveFailureKeepsRecord(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin")
	store.failDelete["bitcoin"] = errors.New("boom")
	f, _ := newFavorites(store, testToken, newClock())

	assert.False(t, f.Remove(context.Background(), "bitcoin"))
	assert.True(t, f.IsFavorite("bitcoin"))
}

func TestFavorites_Toggle(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin")
	f, _ := newFavorites(store, testToken, newClock())
	ctx := context.Background()

	// bitcoin ya existe en remoto: toggle debe poblar primero y quitarlo
	require.True(t, f.Toggle(ctx, "bitcoin"))
	assert.False(t, f.IsFavorite("bitcoin"))

	require.True(t, f.Toggle(ctx, "solana"))
	assert.True(t, f.IsFavorite("solana"))
}

func TestFavorites_ClearAll(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin", "ethereum", "solana")
	f, pub := newFavorites(store, testToken, newClock())

	require.True(t, f.Clear(context.Background()))
	assert.Zero(t, f.Count())

	_, _, del := store.calls()
	assert.Equal(t, 3, del)
	changes := pub.snapshot()
	require.Len(t, changes, 1)
	assert.Equal(t, entities.ChangeClear, changes[0].Action)
	assert.Empty(t, changes[0].CoinID)
}

func TestFavorites_ClearPartialFailure(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin", "ethereum", "solana")
	store.failDelete["ethereum"] = errors.New("boom")
	f, pub := newFavorites(store, testToken, newClock())

	assert.False(t, f.Clear(context.Background()))
	assert.Equal(t, 1, f.Count())
	assert.True(t, f.IsFavorite("ethereum"))

	var removed []string
	for _, c := range pub.snapshot() {
		assert.Equal(t, entities.ChangeRemove, c.Action)
		removed = append(removed, c.CoinID)
	}
	sort.Strings(removed)
	assert.Equal(t, []string{"bitcoin", "solana"}, removed)
}

func TestFavorites_SameCoinMutationsAreSerialized(t *testing.T) {
	store := newFakeStore()
	f, _ := newFavorites(store, testToken, newClock())
	ctx := context.Background()

	var (
		mu      sync.Mutex
		active  int
		overlap bool
	)
	store.onCreate = func(string) {
		mu.Lock()
		active++
		if active > 1 {
			overlap = true
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
	}

	var wg sync.WaitGroup
	results := make([]bool, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Add(ctx, "bitcoin")
		}(i)
	}
	wg.Wait()

	assert.False(t, overlap)
	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.Count())
	assert.Zero(t, f.locks.size())
}

func TestFavorites_Invalidate(t *testing.T) {
	store := newFakeStore()
	store.seed(testToken, "bitcoin")
	f, _ := newFavorites(store, testToken, newClock())
	ctx := context.Background()

	f.GetAll(ctx)
	f.Invalidate()
	assert.False(t, f.IsFavorite("bitcoin"))

	f.GetAll(ctx)
	list, _, _ := store.calls()
	assert.Equal(t, 2, list)
}
