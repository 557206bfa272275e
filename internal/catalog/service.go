// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Service defines the interface for the bookstore catalog.
type Service interface {
	AddItem(ctx context.Context, item Item)
	GetItem(ctx context.Context, id string) (Item, error)
	Purchase(ctx context.Context, id string, quantity int, email, address *string) (decimal.Decimal, error)
	RemoveOutdated(ctx context.Context, years int) []Item
	RemoveOutdatedAsOf(ctx context.Context, years, currentYear int) []Item
	ListAll(ctx context.Context) []Item
	Inventory(ctx context.Context) string
}
