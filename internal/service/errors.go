package service

import "errors"

var (
	ErrUnknownProduct    = errors.New("product not found in catalog")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrNoPendingOrder    = errors.New("no order is waiting for confirmation")
	ErrOrderInFlight     = errors.New("order is already being sent")
	ErrIllegalTransition = errors.New("illegal transition of checkout stage")
)
