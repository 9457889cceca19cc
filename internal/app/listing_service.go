package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sheraliozodov77/ostaa-app/internal/clock"
	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

type ListingRepository interface {
	// WithTx runs fn inside a single transaction; repository calls made
	// with fn's context join it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	CreateItem(ctx context.Context, item domain.Item) error
	ListItems(ctx context.Context) ([]domain.Item, error)
	SearchItems(ctx context.Context, query string) ([]domain.Item, error)
	ListPurchasesByUser(ctx context.Context, userID string) ([]domain.Item, error)
	ListListingsByUser(ctx context.Context, userID string) ([]domain.Item, error)
}

type ListingService struct {
	repo  ListingRepository
	clock clock.Clock
}

func NewListingService(repo ListingRepository, clk clock.Clock) *ListingService {
	return &ListingService{
		repo:  repo,
		clock: clk,
	}
}

type CreateItemInput struct {
	OwnerUsername string
	Title         string
	Description   string
	Price         string
	Status        string
}

func (s *ListingService) CreateItem(ctx context.Context, in CreateItemInput) (domain.Item, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Item{}, domain.ErrTitleRequired
	}
	price, err := normalizePrice(in.Price)
	if err != nil {
		return domain.Item{}, err
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return domain.Item{}, err
	}

	item := domain.Item{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       price,
		Status:      status,
		CreatedAt:   s.clock.Now(),
	}

	// Resolve the owner and insert in one transaction so the owner cannot
	// disappear between the two statements.
	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		owner, err := s.repo.GetUserByUsername(ctx, in.OwnerUsername)
		if err != nil {
			return err
		}
		item.OwnerID = owner.ID
		return s.repo.CreateItem(ctx, item)
	})
	if err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func (s *ListingService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.repo.ListItems(ctx)
}

// SearchItems matches the query against item descriptions, case
// insensitively. An empty query matches everything and returns the full
// set.
func (s *ListingService) SearchItems(ctx context.Context, query string) ([]domain.Item, error) {
	if query == "" {
		return s.repo.ListItems(ctx)
	}
	return s.repo.SearchItems(ctx, query)
}

func (s *ListingService) ListPurchases(ctx context.Context, username string) ([]domain.Item, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPurchasesByUser(ctx, user.ID)
}

func (s *ListingService) ListListings(ctx context.Context, username string) ([]domain.Item, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListListingsByUser(ctx, user.ID)
}

// normalizePrice validates a decimal price string and canonicalizes it to
// two fractional digits, matching the NUMERIC(12,2) store column so the
// value round-trips byte for byte. The string never goes through a float:
// that would accept exponent forms and silently round fractions past two
// digits.
func normalizePrice(price string) (string, error) {
	price = strings.TrimSpace(price)
	whole, frac, hasFrac := strings.Cut(price, ".")
	if whole == "" || !isDigits(whole) {
		return "", domain.ErrInvalidPrice
	}
	if hasFrac && (frac == "" || len(frac) > 2 || !isDigits(frac)) {
		return "", domain.ErrInvalidPrice
	}
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	// NUMERIC(12,2) holds ten integer digits.
	if len(whole) > 10 {
		return "", domain.ErrInvalidPrice
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	}
	return whole + "." + frac, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normalizeStatus(status string) (domain.ItemStatus, error) {
	switch domain.ItemStatus(status) {
	case "":
		return domain.ItemStatusForSale, nil
	case domain.ItemStatusForSale:
		return domain.ItemStatusForSale, nil
	case domain.ItemStatusSold:
		return domain.ItemStatusSold, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
