package domain

import "errors"

var (
	ErrUsernameRequired     = errors.New("username required")
	ErrSecretRequired       = errors.New("password required")
	ErrUsernameTaken        = errors.New("username is already taken")
	ErrInvalidCredentials   = errors.New("incorrect username or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrItemAlreadySold      = errors.New("item already sold")
	ErrPurchaseInconsistent = errors.New("purchase left in inconsistent state")
	ErrTitleRequired        = errors.New("title required")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInvalidStatus        = errors.New("invalid item status")
	ErrInvalidID            = errors.New("invalid id")
)
