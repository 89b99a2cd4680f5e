package postgres

import (
	"coin-market-service/internal/domain/entities"
	"coin-market-service/internal/domain/interfaces"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// FavoriteRepository implements interfaces.FavoriteRepository on the coin_favorites table.
type FavoriteRepository struct {
	pool *Pool
}

var _ interfaces.FavoriteRepository = (*FavoriteRepository)(nil)

func NewFavoriteRepository(pool *Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// List devuelve los favoritos del dueño en orden de creación
func (r *FavoriteRepository) List(ctx context.Context, ownerKey string) ([]entities.FavoriteRecord, error) {
	query := `
		SELECT id, coin_id, created_at
		FROM coin_favorites
		WHERE owner_key = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanFavorite)
	if err != nil {
		return nil, fmt.Errorf("scan favorites: %w", err)
	}
	if records == nil {
		records = []entities.FavoriteRecord{}
	}
	return records, nil
}

// Create inserts a favorite. Returns interfaces.ErrFavoriteExists on (owner, coin) conflict.
func (r *FavoriteRepository) Create(ctx context.Context, ownerKey, coinID string) (entities.FavoriteRecord, error) {
	query := `
		INSERT INTO coin_favorites (owner_key, coin_id)
		VALUES ($1, $2)
		RETURNING id, coin_id, created_at
	`

	rows, err := r.pool.Query(ctx, query, ownerKey, coinID)
	if err != nil {
		return entities.FavoriteRecord{}, fmt.Errorf("insert favorite: %w", err)
	}

	record, err := pgx.CollectExactlyOneRow(rows, scanFavorite)
	if err != nil {
		if isDuplicateKeyError(err) {
			return entities.FavoriteRecord{}, interfaces.ErrFavoriteExists
		}
		return entities.FavoriteRecord{}, fmt.Errorf("insert favorite: %w", err)
	}
	return record, nil
}

// Delete is a no-op when the favorite does not exist
func (r *FavoriteRepository) Delete(ctx context.Context, ownerKey, coinID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM coin_favorites WHERE owner_key = $1 AND coin_id = $2`, ownerKey, coinID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanFavorite(row pgx.CollectableRow) (entities.FavoriteRecord, error) {
	var (
		id        int64
		coinID    string
		createdAt time.Time
	)
	if err := row.Scan(&id, &coinID, &createdAt); err != nil {
		return entities.FavoriteRecord{}, err
	}
	return entities.FavoriteRecord{
		RemoteID:  strconv.FormatInt(id, 10),
		CoinID:    coinID,
		CreatedAt: createdAt.UTC(),
	}, nil
}
