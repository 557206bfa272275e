// internal/catalog/errors.go
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("item not found")
	ErrNotForSale        = errors.New("item is not for sale")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrMissingAddress    = errors.New("a shipping address is required")
	ErrMissingEmail      = errors.New("an email address is required")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidItem       = errors.New("invalid item")
)

// PurchaseError describes a rejected purchase. Err is one of the sentinel
// errors above, so callers can match it with errors.Is.
type PurchaseError struct {
	ItemID   string
	Kind     Kind
	Quantity int
	// Available is only set for ErrInsufficientStock.
	Available int
	Err       error
}

func newPurchaseError(item Item, quantity int, err error) *PurchaseError {
	return &PurchaseError{ItemID: item.ID(), Kind: item.Kind(), Quantity: quantity, Err: err}
}

func (e *PurchaseError) Error() string {
	if errors.Is(e.Err, ErrInsufficientStock) {
		return fmt.Sprintf("purchase %q: %v: available %d, requested %d", e.ItemID, e.Err, e.Available, e.Quantity)
	}
	return fmt.Sprintf("purchase %q: %v", e.ItemID, e.Err)
}

func (e *PurchaseError) Unwrap() error { return e.Err }
