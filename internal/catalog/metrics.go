// internal/catalog/metrics.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type storeMetrics struct {
	purchases      metric.Int64Counter
	purchaseAmount metric.Float64Histogram
	itemsRemoved   metric.Int64Counter
}

func newStoreMetrics(meter metric.Meter) (*storeMetrics, error) {
	purchases, err := meter.Int64Counter("bookstore.purchases",
		metric.WithDescription("Purchase attempts by item kind and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create purchases counter: %w", err)
	}

	purchaseAmount, err := meter.Float64Histogram("bookstore.purchase.amount",
		metric.WithDescription("Amount paid per completed purchase"),
	)
	if err != nil {
		return nil, fmt.Errorf("create purchase amount histogram: %w", err)
	}

	itemsRemoved, err := meter.Int64Counter("bookstore.items.removed",
		metric.WithDescription("Items pruned from the catalog as outdated"),
	)
	if err != nil {
		return nil, fmt.Errorf("create items removed counter: %w", err)
	}

	return &storeMetrics{
		purchases:      purchases,
		purchaseAmount: purchaseAmount,
		itemsRemoved:   itemsRemoved,
	}, nil
}

func noopStoreMetrics() *storeMetrics {
	m, _ := newStoreMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}

func (m *storeMetrics) recordPurchase(ctx context.Context, kind Kind, amount decimal.Decimal, err error) {
	attrs := metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("outcome", Outcome(err)),
	)
	m.purchases.Add(ctx, 1, attrs)
	if err == nil {
		m.purchaseAmount.Record(ctx, amount.InexactFloat64(), attrs)
	}
}

// Outcome classifies a purchase result for metrics and API responses.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotForSale):
		return "not_for_sale"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrMissingAddress):
		return "missing_address"
	case errors.Is(err, ErrMissingEmail):
		return "missing_email"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return "error"
	}
}
