package domain

import "errors"

var (
	ErrProductNotFound        = errors.New("product not found, check the exact name")
	ErrStockNotAvailable      = errors.New("no available stock for this product")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrProductNameRequired    = errors.New("product name required")
	ErrBuyerRequired          = errors.New("buyer required")
	ErrTicketingNotConfigured = errors.New("ticket category is not configured yet")
	ErrTicketNotFound         = errors.New("ticket not found")
)
