package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation (e.g. duplicate email).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidItemID indicates a malformed item id in a request.
	ErrInvalidItemID = errors.New("invalid item id")
	// ErrInvalidQuantity indicates a non-positive quantity on add/set.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrItemNotFound indicates the referenced item does not exist in inventory.
	ErrItemNotFound = errors.New("item not found")
	// ErrLineNotFound indicates the cart has no line for the referenced item.
	ErrLineNotFound = errors.New("item not found in cart")

	// ErrVersionConflict is returned by the cart store when a conditional
	// write loses to a concurrent commit. The cart service retries on it.
	ErrVersionConflict = errors.New("cart version conflict")
	// ErrConflict is surfaced when the retry budget for optimistic writes is
	// exhausted. Callers may resubmit.
	ErrConflict = errors.New("cart is being modified concurrently, retry")
)

// ValidationError marks malformed input the caller must fix; it is never
// retried.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// InsufficientStockError reports how many units can still be added. When the
// item already sits in the cart, Available is stock minus the quantity already
// held, matching the "only N more available" framing shown to shoppers.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d available in stock", e.Available)
}
