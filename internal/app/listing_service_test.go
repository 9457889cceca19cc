package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sheraliozodov77/ostaa-app/internal/clock"
	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

func TestListingService_CreateItem(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	t.Run("creates item for sale by default", func(t *testing.T) {
		repo := newFakeListingRepo()
		repo.users["alice"] = domain.User{ID: "u1", Username: "alice"}
		svc := NewListingService(repo, clock.NewFixed(now))

		item, err := svc.CreateItem(context.Background(), CreateItemInput{
			OwnerUsername: "alice",
			Title:         "Bike",
			Description:   "A red bike",
			Price:         "50",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if item.ID == "" {
			t.Fatalf("expected item ID to be set")
		}
		if item.OwnerID != "u1" {
			t.Fatalf("expected owner u1, got %s", item.OwnerID)
		}
		if item.Status != domain.ItemStatusForSale {
			t.Fatalf("expected status FOR_SALE, got %s", item.Status)
		}
		if item.Price != "50.00" {
			t.Fatalf("expected price 50.00, got %s", item.Price)
		}
		if len(repo.items) != 1 {
			t.Fatalf("expected item persisted")
		}
	})

	t.Run("resolves owner and inserts in one transaction", func(t *testing.T) {
		repo := newFakeListingRepo()
		repo.users["alice"] = domain.User{ID: "u1", Username: "alice"}
		svc := NewListingService(repo, clock.NewFixed(now))

		_, err := svc.CreateItem(context.Background(), CreateItemInput{
			OwnerUsername: "alice",
			Title:         "Bike",
			Price:         "50",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !repo.resolvedInTx || !repo.insertedInTx {
			t.Fatalf("expected owner lookup and insert inside the transaction, got resolve=%v insert=%v",
				repo.resolvedInTx, repo.insertedInTx)
		}
	})

	t.Run("insert failure surfaces through the transaction", func(t *testing.T) {
		repo := newFakeListingRepo()
		repo.users["alice"] = domain.User{ID: "u1", Username: "alice"}
		repo.createItemErr = domain.ErrInvalidID
		svc := NewListingService(repo, clock.NewFixed(now))

		_, err := svc.CreateItem(context.Background(), CreateItemInput{
			OwnerUsername: "alice",
			Title:         "Bike",
			Price:         "50",
		})
		if err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
		if len(repo.items) != 0 {
			t.Fatalf("expected nothing persisted, got %d items", len(repo.items))
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		repo := newFakeListingRepo()
		repo.users["alice"] = domain.User{ID: "u1", Username: "alice"}
		svc := NewListingService(repo, clock.NewFixed(now))

		_, err := svc.CreateItem(context.Background(), CreateItemInput{
			OwnerUsername: "alice",
			Title:         "   ",
			Price:         "50",
		})
		if err != domain.ErrTitleRequired {
			t.Fatalf("expected ErrTitleRequired, got %v", err)
		}
	})

	t.Run("malformed price rejected", func(t *testing.T) {
		repo := newFakeListingRepo()
		repo.users["alice"] = domain.User{ID: "u1", Username: "alice"}
		svc := NewListingService(repo, clock.NewFixed(now))

		for _, price := range []string{"", "abc", "-5", "NaN", "5e1", "0.005", "5.", ".5", "1 0", "12345678901"} {
			_, err := svc.CreateItem(context.Background(), CreateItemInput{
				OwnerUsername: "alice",
				Title:         "Bike",
				Price:         price,
			})
			if err != domain.ErrInvalidPrice {
				t.Fatalf("price %q: expected ErrInvalidPrice, got %v", price, err)
			}
		}
	})

	t.Run("price canonicalized to two fractional digits", func(t *testing.T) {
		repo := newFakeListingRepo()
		repo.users["alice"] = domain.User{ID: "u1", Username: "alice"}
		svc := NewListingService(repo, clock.NewFixed(now))

		cases := map[string]string{
			"50":     "50.00",
			"5.5":    "5.50",
			"0.05":   "0.05",
			"007":    "7.00",
			"0":      "0.00",
			" 12.30": "12.30",
		}
		for in, want := range cases {
			item, err := svc.CreateItem(context.Background(), CreateItemInput{
				OwnerUsername: "alice",
				Title:         "Bike",
				Price:         in,
			})
			if err != nil {
				t.Fatalf("price %q: expected no error, got %v", in, err)
			}
			if item.Price != want {
				t.Fatalf("price %q: expected %q, got %q", in, want, item.Price)
			}
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		repo := newFakeListingRepo()
		repo.users["alice"] = domain.User{ID: "u1", Username: "alice"}
		svc := NewListingService(repo, clock.NewFixed(now))

		_, err := svc.CreateItem(context.Background(), CreateItemInput{
			OwnerUsername: "alice",
			Title:         "Bike",
			Price:         "50",
			Status:        "PENDING",
		})
		if err != domain.ErrInvalidStatus {
			t.Fatalf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("unknown owner rejected", func(t *testing.T) {
		svc := NewListingService(newFakeListingRepo(), clock.NewFixed(now))

		_, err := svc.CreateItem(context.Background(), CreateItemInput{
			OwnerUsername: "ghost",
			Title:         "Bike",
			Price:         "50",
		})
		if err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestListingService_SearchItems(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	repo := newFakeListingRepo()
	repo.items = []domain.Item{
		{ID: "i1", Description: "A red Bike in great shape"},
		{ID: "i2", Description: "Wooden desk"},
	}
	svc := NewListingService(repo, clock.NewFixed(now))

	t.Run("case-insensitive substring match", func(t *testing.T) {
		items, err := svc.SearchItems(context.Background(), "bik")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 1 || items[0].ID != "i1" {
			t.Fatalf("expected only i1, got %+v", items)
		}
	})

	t.Run("empty query returns the full set", func(t *testing.T) {
		items, err := svc.SearchItems(context.Background(), "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
	})

	t.Run("no match returns empty", func(t *testing.T) {
		items, err := svc.SearchItems(context.Background(), "piano")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 0 {
			t.Fatalf("expected no items, got %d", len(items))
		}
	})
}

func TestListingService_ListPurchases(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	repo := newFakeListingRepo()
	repo.users["bob"] = domain.User{ID: "u2", Username: "bob"}
	repo.purchases["u2"] = []domain.Item{{ID: "i1", Title: "Bike", Status: domain.ItemStatusSold}}
	svc := NewListingService(repo, clock.NewFixed(now))

	items, err := svc.ListPurchases(context.Background(), "bob")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 1 || items[0].ID != "i1" {
		t.Fatalf("expected purchase i1, got %+v", items)
	}

	if _, err := svc.ListPurchases(context.Background(), "ghost"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

type fakeListingRepo struct {
	users     map[string]domain.User
	items     []domain.Item
	purchases map[string][]domain.Item
	listings  map[string][]domain.Item

	inTx          bool
	resolvedInTx  bool
	insertedInTx  bool
	createItemErr error
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		users:     make(map[string]domain.User),
		purchases: make(map[string][]domain.Item),
		listings:  make(map[string][]domain.Item),
	}
}

func (f *fakeListingRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.inTx = true
	defer func() { f.inTx = false }()
	return fn(ctx)
}

func (f *fakeListingRepo) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	f.resolvedInTx = f.inTx
	user, ok := f.users[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeListingRepo) CreateItem(_ context.Context, item domain.Item) error {
	f.insertedInTx = f.inTx
	if f.createItemErr != nil {
		return f.createItemErr
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeListingRepo) ListItems(_ context.Context) ([]domain.Item, error) {
	return append([]domain.Item(nil), f.items...), nil
}

func (f *fakeListingRepo) SearchItems(_ context.Context, query string) ([]domain.Item, error) {
	needle := strings.ToLower(query)
	var out []domain.Item
	for _, item := range f.items {
		if strings.Contains(strings.ToLower(item.Description), needle) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) ListPurchasesByUser(_ context.Context, userID string) ([]domain.Item, error) {
	return f.purchases[userID], nil
}

func (f *fakeListingRepo) ListListingsByUser(_ context.Context, userID string) ([]domain.Item, error) {
	return f.listings[userID], nil
}
