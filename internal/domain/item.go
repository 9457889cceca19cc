package domain

import "time"

type ItemStatus string

const (
	ItemStatusForSale ItemStatus = "FOR_SALE"
	ItemStatusSold    ItemStatus = "SOLD"
)

// Item is a listing posted by a user. Price travels as a decimal string;
// the store keeps it as NUMERIC. Once Status is SOLD it never goes back to
// FOR_SALE, except when purchase compensation rolls back a recording
// failure.
type Item struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Price       string
	Status      ItemStatus
	CreatedAt   time.Time
}
