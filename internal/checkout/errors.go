package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrBuyerNameRequired  = errors.New("Buyer name is required.")
	ErrInvalidEmail       = errors.New("Please enter a valid email address.")
	ErrProductUnavailable = errors.New("One or more products are no longer available.")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrCheckoutFailed     = errors.New("Checkout failed due to invalid cart data.")
)

// ValidationError reports buyer input rejected before any storage access.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// InsufficientStockError names the first product whose locked stock could
// not cover the requested quantity.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.ProductName)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
