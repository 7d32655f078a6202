package sales

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTransactionNotFound indicates the transaction id or number does not resolve.
var ErrTransactionNotFound = errors.New("sales: transaction not found")

// ErrInvalidStatusTransition indicates a disallowed status change.
var ErrInvalidStatusTransition = errors.New("sales: invalid status transition")

// ValidationError carries every request problem found, so the caller sees
// all of them in one round trip.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "sales: validation failed: " + strings.Join(e.Problems, "; ")
}

// ProductNotFoundError names the cart line whose product id does not resolve
// to an active catalog entry.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("sales: product %d not found", e.ProductID)
}

// InsufficientStockError reports a decrement that would drive stock negative,
// with enough detail for cashier-facing messaging.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("sales: insufficient stock for %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// PersistenceError wraps a unit-of-work failure, including timeouts. Nothing
// was committed, so the whole sale is safe to retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("sales: transaction failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
