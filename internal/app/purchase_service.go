package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/sheraliozodov77/ostaa-app/internal/clock"
	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

type PurchaseRepository interface {
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	// MarkSold transitions the item FOR_SALE -> SOLD only if it is
	// currently FOR_SALE. It returns domain.ErrItemNotFound for a missing
	// item and domain.ErrItemAlreadySold when the transition was lost.
	MarkSold(ctx context.Context, itemID string) error
	// RecordPurchase attributes the item to the buyer. A duplicate record
	// surfaces as domain.ErrItemAlreadySold.
	RecordPurchase(ctx context.Context, purchase domain.Purchase) error
	// RevertSold undoes MarkSold unless a purchase record already exists
	// for the item.
	RevertSold(ctx context.Context, itemID string) error
}

type PurchaseService struct {
	repo          PurchaseRepository
	clock         clock.Clock
	logger        *log.Logger
	recordRetries uint64
	recordBackoff time.Duration
}

const (
	defaultRecordRetries = 2 // attempts = 1 + retries
	defaultRecordBackoff = 100 * time.Millisecond
)

func NewPurchaseService(repo PurchaseRepository, clk clock.Clock, opts ...PurchaseServiceOption) *PurchaseService {
	svc := &PurchaseService{
		repo:          repo,
		clock:         clk,
		logger:        log.Default(),
		recordRetries: defaultRecordRetries,
		recordBackoff: defaultRecordBackoff,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PurchaseServiceOption func(*PurchaseService)

// WithLogger overrides where partial-failure details are recorded.
func WithLogger(logger *log.Logger) PurchaseServiceOption {
	return func(s *PurchaseService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecordRetries overrides how many times the purchase recording step is
// retried after its first failure.
func WithRecordRetries(n uint64) PurchaseServiceOption {
	return func(s *PurchaseService) {
		s.recordRetries = n
	}
}

// WithRecordBackoff overrides the delay between recording retries.
func WithRecordBackoff(d time.Duration) PurchaseServiceOption {
	return func(s *PurchaseService) {
		if d > 0 {
			s.recordBackoff = d
		}
	}
}

type PurchaseInput struct {
	ItemID        string
	BuyerUsername string
}

// Purchase marks the item sold and records it against the buyer.
//
// The status transition is the serialization point: it is a compare-and-set
// at the store layer, so two concurrent purchases of the same item yield
// exactly one success and one domain.ErrItemAlreadySold. Recording the
// purchase is best effort afterwards: it is retried a bounded number of
// times, and if it still fails the item is reverted to FOR_SALE and the
// recording error is surfaced so the caller can retry the whole operation.
// Only when that compensation also fails does the call report
// domain.ErrPurchaseInconsistent; the item/buyer pair is logged first so an
// operator can reconcile it.
func (s *PurchaseService) Purchase(ctx context.Context, in PurchaseInput) (domain.Purchase, error) {
	if in.ItemID == "" {
		return domain.Purchase{}, domain.ErrItemNotFound
	}

	buyer, err := s.repo.GetUserByUsername(ctx, in.BuyerUsername)
	if err != nil {
		return domain.Purchase{}, err
	}

	if err := s.repo.MarkSold(ctx, in.ItemID); err != nil {
		return domain.Purchase{}, err
	}

	purchase := domain.Purchase{
		ItemID:    in.ItemID,
		BuyerID:   buyer.ID,
		CreatedAt: s.clock.Now(),
	}

	if err := s.recordWithRetry(ctx, purchase); err != nil {
		// Someone else recorded the item between our CAS and here; the
		// item is sold either way and nothing needs compensating.
		if errors.Is(err, domain.ErrItemAlreadySold) {
			return domain.Purchase{}, domain.ErrItemAlreadySold
		}
		return domain.Purchase{}, s.compensate(ctx, purchase, err)
	}

	return purchase, nil
}

func (s *PurchaseService) recordWithRetry(ctx context.Context, purchase domain.Purchase) error {
	backoff := retry.WithMaxRetries(s.recordRetries, retry.NewConstant(s.recordBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.repo.RecordPurchase(ctx, purchase)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrItemAlreadySold) {
			return err // permanent
		}
		return retry.RetryableError(err)
	})
}

func (s *PurchaseService) compensate(ctx context.Context, purchase domain.Purchase, cause error) error {
	// The revert must run even if the client has gone away; otherwise a
	// disconnect mid-purchase strands the item as SOLD with no buyer.
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.RevertSold(ctx, purchase.ItemID); err != nil {
		// The item is SOLD with no recorded buyer and could not be
		// reverted. Log everything needed for manual reconciliation.
		s.logger.Printf(
			"ERROR: purchase inconsistent item_id=%s buyer_id=%s record_err=%v revert_err=%v",
			purchase.ItemID, purchase.BuyerID, cause, err,
		)
		return domain.ErrPurchaseInconsistent
	}
	return cause
}
