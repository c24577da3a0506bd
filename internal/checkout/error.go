package checkout

import "errors"

var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero and not exceed available stock")
	ErrMissingAddress       = errors.New("delivery address is required")
	ErrInvalidPaymentMethod = errors.New("payment method must be online or cod")
	ErrInsufficientStock    = errors.New("listing no longer has enough stock")
)
