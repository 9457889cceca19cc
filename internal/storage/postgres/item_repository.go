package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ItemRepository) CreateItem(ctx context.Context, item domain.Item) error {
	const stmt = `
INSERT INTO items (id, owner_id, title, description, price, status, created_at)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`

	_, err := r.exec(ctx, stmt,
		item.ID,
		item.OwnerID,
		item.Title,
		item.Description,
		item.Price,
		item.Status,
		item.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *ItemRepository) GetItem(ctx context.Context, itemID string) (domain.Item, error) {
	const query = `
SELECT id, owner_id, title, description, price::text, status, created_at
FROM items
WHERE id = $1`

	var item domain.Item
	var status string
	err := r.queryRow(ctx, query, itemID).
		Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.Price, &status, &item.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Item{}, domain.ErrItemNotFound
		}
		if err == pgx.ErrNoRows {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	item.Status = domain.ItemStatus(status)
	return item, nil
}

func (r *ItemRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	const query = `
SELECT id, owner_id, title, description, price::text, status, created_at
FROM items
ORDER BY created_at DESC`

	items, err := r.queryItems(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) SearchItems(ctx context.Context, query string) ([]domain.Item, error) {
	const stmt = `
SELECT id, owner_id, title, description, price::text, status, created_at
FROM items
WHERE description ILIKE '%' || $1 || '%'
ORDER BY created_at DESC`

	items, err := r.queryItems(ctx, stmt, escapeLike(query))
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

// MarkSold is the purchase serialization point: the row flips to SOLD only
// if it is currently FOR_SALE, so concurrent purchases cannot both win.
func (r *ItemRepository) MarkSold(ctx context.Context, itemID string) error {
	const stmt = `UPDATE items SET status = 'SOLD' WHERE id = $1 AND status = 'FOR_SALE'`

	tag, err := r.exec(ctx, stmt, itemID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("mark sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the race or the item never existed; re-read to tell which.
		if _, err := r.GetItem(ctx, itemID); err != nil {
			return err
		}
		return domain.ErrItemAlreadySold
	}
	return nil
}

// RevertSold compensates a purchase whose recording step failed. The guard
// on purchases keeps it from reopening an item that does have a buyer.
func (r *ItemRepository) RevertSold(ctx context.Context, itemID string) error {
	const stmt = `
UPDATE items SET status = 'FOR_SALE'
WHERE id = $1 AND status = 'SOLD'
  AND NOT EXISTS (SELECT 1 FROM purchases WHERE item_id = $1)`

	if _, err := r.exec(ctx, stmt, itemID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("revert sold: %w", err)
	}
	return nil
}

func (r *ItemRepository) RecordPurchase(ctx context.Context, purchase domain.Purchase) error {
	const stmt = `
INSERT INTO purchases (item_id, buyer_id, created_at)
VALUES ($1, $2, $3)`

	_, err := r.exec(ctx, stmt, purchase.ItemID, purchase.BuyerID, purchase.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrItemAlreadySold
		}
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("record purchase: %w", err)
	}
	return nil
}

// escapeLike neutralizes LIKE metacharacters so user input matches
// literally.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

func (r *ItemRepository) queryItems(ctx context.Context, sql string, args ...any) ([]domain.Item, error) {
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

func (r *ItemRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ItemRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ItemRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
