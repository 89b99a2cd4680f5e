package interfaces

import (
	"coin-market-service/internal/domain/entities"
	"context"
	"errors"
)

// ErrFavoriteExists se devuelve al añadir un coin que el dueño ya tiene
var ErrFavoriteExists = errors.New("coin already in favorites")

// FavoriteRepository persiste los favoritos del store, particionados por ownerKey.
// Delete de un coin inexistente no es un error.
type FavoriteRepository interface {
	List(ctx context.Context, ownerKey string) ([]entities.FavoriteRecord, error)
	Create(ctx context.Context, ownerKey, coinID string) (entities.FavoriteRecord, error)
	Delete(ctx context.Context, ownerKey, coinID string) error
	Ping(ctx context.Context) error
}

// FavoritesStore es el store remoto de favoritos; token es la credencial bearer
type FavoritesStore interface {
	List(ctx context.Context, token string) ([]entities.FavoriteRecord, error)
	Create(ctx context.Context, token, coinID string) (entities.FavoriteRecord, error)
	Delete(ctx context.Context, token, coinID string) error
}

// CredentialSource devuelve la credencial actual o "" si no hay sesión
type CredentialSource interface {
	Token() string
}

// StaticCredential es una credencial fija, la usada por sesión en el servidor
type StaticCredential string

func (c StaticCredential) Token() string { return string(c) }

// ChangePublisher recibe los cambios de favoritos; Publish no debe bloquear
type ChangePublisher interface {
	Publish(change entities.FavoriteChange)
}

// Favorites es la vista que consumen los handlers
type Favorites interface {
	GetAll(ctx context.Context) []string
	IsFavorite(coinID string) bool
	Add(ctx context.Context, coinID string) bool
	Remove(ctx context.Context, coinID string) bool
	Toggle(ctx context.Context, coinID string) bool
	Clear(ctx context.Context) bool
	Count() int
}
