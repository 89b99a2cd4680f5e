package services

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/metrics"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultRefreshInterval = 30 * time.Second

// FavoritesSyncCache mantiene un espejo local de los favoritos remotos de una sesión.
// Las lecturas van contra el espejo; las mutaciones van al store y, si éste confirma,
// se aplican en el espejo en sitio y se publican.
type FavoritesSyncCache struct {
	credential      interfaces.CredentialSource
	store           interfaces.FavoritesStore
	publisher       interfaces.ChangePublisher
	refreshInterval time.Duration
	now             func() time.Time

	mu              sync.RWMutex
	records         []entities.FavoriteRecord
	populated       bool
	lastRefreshedAt time.Time
	// mutations cuenta los cambios confirmados; protegido por mu
	mutations       uint64

	refreshGroup singleflight.Group
	locks        *keyedMutex
}

var _ interfaces.Favorites = (*FavoritesSyncCache)(nil)

// FavoritesOption configura el espejo
type FavoritesOption func(*FavoritesSyncCache)

func WithRefreshInterval(d time.Duration) FavoritesOption {
	return func(f *FavoritesSyncCache) {
		if d > 0 {
			f.refreshInterval = d
		}
	}
}

func WithFavoritesClock(now func() time.Time) FavoritesOption {
	return func(f *FavoritesSyncCache) {
		f.now = now
	}
}

// NewFavoritesSyncCache crea el espejo de una sesión
func NewFavoritesSyncCache(
	credential interfaces.CredentialSource,
	store interfaces.FavoritesStore,
	publisher interfaces.ChangePublisher,
	opts ...FavoritesOption,
) *FavoritesSyncCache {
	f := &FavoritesSyncCache{
		credential:      credential,
		store:           store,
		publisher:       publisher,
		refreshInterval: DefaultRefreshInterval,
		now:             time.Now,
		locks:           newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GetAll devuelve los ids favoritos, refrescando desde el store si el espejo está vencido.
// Sin credencial devuelve vacío sin llamar al store.
func (f *FavoritesSyncCache) GetAll(ctx context.Context) []string {
	token := f.credential.Token()
	if token == "" {
		f.Invalidate()
		return []string{}
	}

	f.mu.RLock()
	fresh := f.populated && f.now().Sub(f.lastRefreshedAt) < f.refreshInterval
	f.mu.RUnlock()
	if fresh {
		metrics.RecordFavoritesOperation("get_all", "mirror")
		return f.ids()
	}

	_, _, _ = f.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, f.refresh(ctx, token)
	})
	return f.ids()
}

// refresh reemplaza el espejo con la lista remota. Si una mutación se confirmó mientras
// List estaba en vuelo, la lista leída puede ser anterior a ella y se descarta.
func (f *FavoritesSyncCache) refresh(ctx context.Context, token string) error {
	f.mu.RLock()
	generation := f.mutations
	f.mu.RUnlock()

	records, err := f.store.List(ctx, token)
	if err != nil {
		metrics.RecordFavoritesOperation("get_all", "failure")
		logging.Favorites().SyncFailed(ctx, "get_all", "", err)
		return err
	}

	deduped := make([]entities.FavoriteRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.CoinID] {
			continue
		}
		seen[r.CoinID] = true
		deduped = append(deduped, r)
	}

	f.mu.Lock()
	if f.mutations != generation {
		f.mu.Unlock()
		metrics.RecordFavoritesOperation("get_all", "superseded")
		return nil
	}
	f.records = deduped
	f.populated = true
	f.lastRefreshedAt = f.now()
	f.mu.Unlock()

	metrics.RecordFavoritesOperation("get_all", "success")
	return nil
}

// IsFavorite consulta sólo el espejo; nunca dispara un fetch
func (f *FavoritesSyncCache) IsFavorite(coinID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexOf(coinID) >= 0
}

// Add crea el favorito remoto y lo incorpora al espejo
func (f *FavoritesSyncCache) Add(ctx context.Context, coinID string) bool {
	unlock := f.locks.Lock(coinID)
	defer unlock()
	return f.add(ctx, coinID)
}

func (f *FavoritesSyncCache) add(ctx context.Context, coinID string) bool {
	token := f.credential.Token()
	if token == "" {
		metrics.RecordFavoritesOperation("add", "unauthenticated")
		return false
	}

	record, err := f.store.Create(ctx, token, coinID)
	if err != nil {
		metrics.RecordFavoritesOperation("add", "failure")
		logging.Favorites().SyncFailed(ctx, "add", coinID, err)
		return false
	}
	if record.CoinID == "" {
		record.CoinID = coinID
	}

	f.mu.Lock()
	if i := f.indexOf(record.CoinID); i >= 0 {
		f.records[i] = record
	} else {
		f.records = append(f.records, record)
	}
	f.mutations++
	f.mu.Unlock()

	f.publish(entities.ChangeAdd, coinID)
	metrics.RecordFavoritesOperation("add", "success")
	logging.Favorites().Mutation(ctx, "add", coinID, true)
	return true
}

// Remove borra el favorito si está en el espejo. Si no está, no llama al store.
func (f *FavoritesSyncCache) Remove(ctx context.Context, coinID string) bool {
	unlock := f.locks.Lock(coinID)
	defer unlock()

	f.ensurePopulated(ctx)
	return f.remove(ctx, coinID)
}

func (f *FavoritesSyncCache) remove(ctx context.Context, coinID string) bool {
	token := f.credential.Token()
	if token == "" {
		metrics.RecordFavoritesOperation("remove", "unauthenticated")
		return false
	}
	if !f.IsFavorite(coinID) {
		metrics.RecordFavoritesOperation("remove", "noop")
		return false
	}

	if err := f.store.Delete(ctx, token, coinID); err != nil {
		metrics.RecordFavoritesOperation("remove", "failure")
		logging.Favorites().SyncFailed(ctx, "remove", coinID, err)
		return false
	}

	f.mu.Lock()
	if i := f.indexOf(coinID); i >= 0 {
		f.records = append(f.records[:i:i], f.records[i+1:]...)
	}
	f.mutations++
	f.mu.Unlock()

	f.publish(entities.ChangeRemove, coinID)
	metrics.RecordFavoritesOperation("remove", "success")
	logging.Favorites().Mutation(ctx, "remove", coinID, true)
	return true
}

// Toggle alterna el estado de coinID bajo un único lock
func (f *FavoritesSyncCache) Toggle(ctx context.Context, coinID string) bool {
	unlock := f.locks.Lock(coinID)
	defer unlock()

	f.ensurePopulated(ctx)
	if f.IsFavorite(coinID) {
		return f.remove(ctx, coinID)
	}
	return f.add(ctx, coinID)
}

// Clear borra todos los favoritos en paralelo. Devuelve true sólo si todos los borrados
// tuvieron éxito; los que fallan siguen en el espejo.
func (f *FavoritesSyncCache) Clear(ctx context.Context) bool {
	token := f.credential.Token()
	if token == "" {
		metrics.RecordFavoritesOperation("clear", "unauthenticated")
		return false
	}

	f.ensurePopulated(ctx)

	f.mu.RLock()
	snapshot := make([]entities.FavoriteRecord, len(f.records))
	copy(snapshot, f.records)
	f.mu.RUnlock()

	ids := make([]string, len(snapshot))
	for i, r := range snapshot {
		ids[i] = r.CoinID
	}
	unlock := f.locks.LockAll(ids)
	defer unlock()

	deleted := make([]bool, len(snapshot))
	var g errgroup.Group
	for i, r := range snapshot {
		i, coinID := i, r.CoinID
		g.Go(func() error {
			if err := f.store.Delete(ctx, token, coinID); err != nil {
				logging.Favorites().SyncFailed(ctx, "clear", coinID, err)
				return err
			}
			deleted[i] = true
			return nil
		})
	}
	allOK := g.Wait() == nil

	removed := make(map[string]bool, len(snapshot))
	for i, r := range snapshot {
		if deleted[i] {
			removed[r.CoinID] = true
		}
	}

	f.mu.Lock()
	kept := f.records[:0:0]
	for _, r := range f.records {
		if !removed[r.CoinID] {
			kept = append(kept, r)
		}
	}
	f.records = kept
	if len(removed) > 0 {
		f.mutations++
	}
	f.mu.Unlock()

	if allOK {
		f.publish(entities.ChangeClear, "")
		metrics.RecordFavoritesOperation("clear", "success")
	} else {
		for coinID := range removed {
			f.publish(entities.ChangeRemove, coinID)
		}
		metrics.RecordFavoritesOperation("clear", "partial")
	}
	logging.Favorites().Mutation(ctx, "clear", "", allOK)
	return allOK
}

// Count número de favoritos en el espejo
func (f *FavoritesSyncCache) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.records)
}

// Invalidate descarta el espejo; el próximo GetAll vuelve al store
func (f *FavoritesSyncCache) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = nil
	f.populated = false
	f.lastRefreshedAt = time.Time{}
}

func (f *FavoritesSyncCache) ensurePopulated(ctx context.Context) {
	f.mu.RLock()
	populated := f.populated
	f.mu.RUnlock()
	if !populated {
		f.GetAll(ctx)
	}
}

func (f *FavoritesSyncCache) ids() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids := make([]string, len(f.records))
	for i, r := range f.records {
		ids[i] = r.CoinID
	}
	return ids
}

// indexOf requiere f.mu tomado
func (f *FavoritesSyncCache) indexOf(coinID string) int {
	for i, r := range f.records {
		if r.CoinID == coinID {
			return i
		}
	}
	return -1
}

func (f *FavoritesSyncCache) publish(action entities.ChangeAction, coinID string) {
	if f.publisher == nil {
		return
	}
	f.publisher.Publish(entities.FavoriteChange{
		Action: action,
		CoinID: coinID,
		At:     f.now(),
	})
}
