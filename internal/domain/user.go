package domain

import "time"

// User is a marketplace account. Username is unique and immutable once
// created. Listings and purchases are derived from items and the purchase
// relation rather than embedded here.
type User struct {
	ID        string
	Username  string
	Secret    string
	CreatedAt time.Time
}
