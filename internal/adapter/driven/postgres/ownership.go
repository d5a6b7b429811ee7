package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/photoflow/photoflow-api/internal/core/domain"
)

const countOwnedPhotos = `SELECT COUNT(*) FROM photos WHERE s3_key = $1 AND email = $2`

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OwnershipStore implements port.OwnershipStore
type OwnershipStore struct {
	db Querier
}

// NewOwnershipStore creates a new ownership store
func NewOwnershipStore(db Querier) *OwnershipStore {
	return &OwnershipStore{db: db}
}

// Count returns the number of photo records with the key owned by owner
func (s *OwnershipStore) Count(ctx context.Context, key domain.ResourceKey, owner domain.Identity) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, countOwnedPhotos, key.Key, owner.Email).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count photos")
	}
	return count, nil
}
