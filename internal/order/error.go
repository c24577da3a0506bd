package order

import "errors"

var (
	ErrInvalidStatus = errors.New("invalid order status")
	ErrOrderNotFound = errors.New("order not found")
	ErrNotOrderOwner = errors.New("only the order's farmer can change its status")
)
