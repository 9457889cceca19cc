package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sheraliozodov77/ostaa-app/internal/domain"
	"github.com/sheraliozodov77/ostaa-app/internal/testutil"
)

func TestUserRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewUserRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateUser and GetUserByUsername round-trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		user := domain.User{
			ID:        uuid.NewString(),
			Username:  "alice",
			Secret:    "secret",
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.GetUserByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != user.ID || got.Username != "alice" || got.Secret != "secret" {
			t.Fatalf("unexpected user: %+v", got)
		}
	})

	t.Run("duplicate username maps to ErrUsernameTaken", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		testutil.InsertUser(t, ctx, pool, "alice", "secret")

		err := repo.CreateUser(ctx, domain.User{
			ID:        uuid.NewString(),
			Username:  "alice",
			Secret:    "other",
			CreatedAt: time.Now().UTC(),
		})
		if err != domain.ErrUsernameTaken {
			t.Fatalf("expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("unknown username maps to ErrUserNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		_, err := repo.GetUserByUsername(ctx, "ghost")
		if err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("ListPurchasesByUser joins items", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		sellerID := testutil.InsertUser(t, ctx, pool, "alice", "secret")
		buyerID := testutil.InsertUser(t, ctx, pool, "bob", "secret")
		itemID := testutil.InsertItem(t, ctx, pool, sellerID, domain.Item{
			Title:  "Bike",
			Price:  "50.00",
			Status: domain.ItemStatusSold,
		})
		if _, err := pool.Exec(ctx,
			`INSERT INTO purchases (item_id, buyer_id) VALUES ($1, $2)`,
			itemID, buyerID,
		); err != nil {
			t.Fatalf("insert purchase: %v", err)
		}

		items, err := repo.ListPurchasesByUser(ctx, buyerID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 1 || items[0].ID != itemID {
			t.Fatalf("unexpected purchases: %+v", items)
		}
		if items[0].Status != domain.ItemStatusSold {
			t.Fatalf("expected SOLD, got %s", items[0].Status)
		}
		if items[0].Price != "50.00" {
			t.Fatalf("expected price 50.00, got %s", items[0].Price)
		}

		empty, err := repo.ListPurchasesByUser(ctx, sellerID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected no purchases for seller, got %+v", empty)
		}
	})

	t.Run("ListListingsByUser returns owner's items", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		aliceID := testutil.InsertUser(t, ctx, pool, "alice", "secret")
		bobID := testutil.InsertUser(t, ctx, pool, "bob", "secret")
		itemID := testutil.InsertItem(t, ctx, pool, aliceID, domain.Item{Title: "Bike", Price: "50.00"})
		testutil.InsertItem(t, ctx, pool, bobID, domain.Item{Title: "Desk", Price: "80.00"})

		items, err := repo.ListListingsByUser(ctx, aliceID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 1 || items[0].ID != itemID {
			t.Fatalf("unexpected listings: %+v", items)
		}
	})
}
