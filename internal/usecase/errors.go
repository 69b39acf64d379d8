package usecase

import "errors"

// Sentinel errors returned by services. Handlers map them to HTTP status
// codes with errors.Is.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrOrderNotFound   = errors.New("order not found")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart has no items")
	ErrEmptyOrder        = errors.New("order has no items")

	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountNotActive      = errors.New("account is not active")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	ErrEmailTaken    = errors.New("email already registered")
	ErrProductExists = errors.New("product name already exists")
)
