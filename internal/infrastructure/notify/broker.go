// Package notify reparte los cambios de favoritos entre los suscriptores de una sesión.
package notify

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/infrastructure/metrics"
	"sync"
)

// DefaultBuffer tamaño de buffer por suscriptor cuando no se indica otro
const DefaultBuffer = 16

// Broker implementa interfaces.ChangePublisher. Publish nunca bloquea: si el buffer de un
// suscriptor está lleno, ese suscriptor pierde el evento.
type Broker struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[uint64]chan entities.FavoriteChange
	closed      bool
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[uint64]chan entities.FavoriteChange),
	}
}

// Subscribe registra un suscriptor. El canal se cierra en Unsubscribe o Close.
func (b *Broker) Subscribe(buffer int) (uint64, <-chan entities.FavoriteChange) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan entities.FavoriteChange, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return 0, ch
	}
	b.nextID++
	b.subscribers[b.nextID] = ch
	return b.nextID, ch
}

func (b *Broker) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Publish entrega change a cada suscriptor sin esperar
func (b *Broker) Publish(change entities.FavoriteChange) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- change:
		default:
			metrics.RecordNotifierDrop()
		}
	}
}

// Subscribers número de suscriptores activos
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close cierra todos los canales; Subscribe posterior devuelve un canal ya cerrado
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
