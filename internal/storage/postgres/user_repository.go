package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *UserRepository) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `
INSERT INTO users (id, username, secret, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, user.ID, user.Username, user.Secret, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `SELECT id, username, secret, created_at FROM users WHERE username = $1`

	var u domain.User
	err := r.queryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.Secret, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ListPurchasesByUser(ctx context.Context, userID string) ([]domain.Item, error) {
	const query = `
SELECT i.id, i.owner_id, i.title, i.description, i.price::text, i.status, i.created_at
FROM purchases p
JOIN items i ON i.id = p.item_id
WHERE p.buyer_id = $1
ORDER BY p.created_at DESC`

	items, err := r.queryItems(ctx, query, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return items, nil
}

func (r *UserRepository) ListListingsByUser(ctx context.Context, userID string) ([]domain.Item, error) {
	const query = `
SELECT id, owner_id, title, description, price::text, status, created_at
FROM items
WHERE owner_id = $1
ORDER BY created_at DESC`

	items, err := r.queryItems(ctx, query, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return items, nil
}

func (r *UserRepository) queryItems(ctx context.Context, sql string, args ...any) ([]domain.Item, error) {
	rows, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var item domain.Item
		var status string
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.Price, &status, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Status = domain.ItemStatus(status)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *UserRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *UserRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
