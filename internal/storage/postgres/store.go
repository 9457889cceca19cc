package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the repositories for services whose operations span users
// and items.
type Store struct {
	*UserRepository
	*ItemRepository
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		UserRepository: NewUserRepository(pool),
		ItemRepository: NewItemRepository(pool),
		pool:           pool,
	}
}

// WithTx runs fn in a single transaction shared by both repositories. It
// must be defined here: the WithTx methods promoted from the embedded
// repositories are ambiguous.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.pool, fn)
}
