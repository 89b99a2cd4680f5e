package services

import (
	"coin-market-service/internal/domain/interfaces"
	"coin-market-service/internal/infrastructure/metrics"
	"coin-market-service/internal/infrastructure/notify"
	"sync"
	"time"
)

const DefaultSessionIdleTimeout = 30 * time.Minute

// Session agrupa el espejo de favoritos y el notificador de un portador de token
type Session struct {
	Favorites *FavoritesSyncCache
	Notifier  *notify.Broker

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionRegistryConfig parámetros compartidos por todas las sesiones
type SessionRegistryConfig struct {
	RefreshInterval time.Duration
	IdleTimeout     time.Duration
}

// SessionRegistry crea sesiones bajo demanda por token y expulsa las inactivas
type SessionRegistry struct {
	store interfaces.FavoritesStore
	cfg   SessionRegistryConfig
	now   func() time.Time

	mu        sync.Mutex
	sessions  map[string]*Session
	anonymous *Session
}

// NewSessionRegistry creates a registry backed by store
func NewSessionRegistry(store interfaces.FavoritesStore, cfg SessionRegistryConfig, now func() time.Time) *SessionRegistry {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultSessionIdleTimeout
	}
	if now == nil {
		now = time.Now
	}

	r := &SessionRegistry{
		store:    store,
		cfg:      cfg,
		now:      now,
		sessions: make(map[string]*Session),
	}
	r.anonymous = r.newSession("")
	return r
}

// Session devuelve la sesión de token, creándola en el primer uso.
// El token vacío comparte una sesión sin credencial que nunca llama al store.
func (r *SessionRegistry) Session(token string) *Session {
	now := r.now()
	if token == "" {
		r.anonymous.touch(now)
		return r.anonymous
	}

	r.mu.Lock()
	s, ok := r.sessions[token]
	if !ok {
		s = r.newSession(token)
		r.sessions[token] = s
		metrics.UpdateFavoritesSessions(len(r.sessions))
	}
	r.mu.Unlock()

	s.touch(now)
	return s
}

func (r *SessionRegistry) newSession(token string) *Session {
	broker := notify.NewBroker()
	return &Session{
		Favorites: NewFavoritesSyncCache(
			interfaces.StaticCredential(token),
			r.store,
			broker,
			WithRefreshInterval(r.cfg.RefreshInterval),
			WithFavoritesClock(r.now),
		),
		Notifier: broker,
		lastSeen: r.now(),
	}
}

// Sweep expulsa las sesiones inactivas sin suscriptores y devuelve cuántas eliminó
func (r *SessionRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for token, s := range r.sessions {
		if s.Notifier.Subscribers() > 0 {
			continue
		}
		if s.idleSince(now) < r.cfg.IdleTimeout {
			continue
		}
		delete(r.sessions, token)
		s.Notifier.Close()
		evicted++
	}

	metrics.UpdateFavoritesSessions(len(r.sessions))
	return evicted
}

// Len número de sesiones autenticadas vivas
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close cierra todos los notificadores
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, s := range r.sessions {
		s.Notifier.Close()
		delete(r.sessions, token)
	}
	r.anonymous.Notifier.Close()
	metrics.UpdateFavoritesSessions(0)
}
