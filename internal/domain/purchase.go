package domain

import "time"

// Purchase attributes a sold item to its buyer. ItemID is the primary key
// in storage, so an item can have at most one buyer.
type Purchase struct {
	ItemID    string
	BuyerID   string
	CreatedAt time.Time
}
