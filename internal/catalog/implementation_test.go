// internal/catalog/implementation_test.go
package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"bookstore/internal/catalog"
)

func TestPurchasePhysicalScenario(t *testing.T) {
	ctx := context.Background()
	svc, shipper, _ := newTestService()
	svc.AddItem(ctx, mustPhysical(t, "A", 2020, "10.0", 5))

	amount, err := svc.Purchase(ctx, "A", 2, nil, ptr("X"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("20.0").Equal(amount), "got %s", amount)
	assert.Equal(t, 3, stockOf(t, svc, "A"))

	_, err = svc.Purchase(ctx, "A", 10, nil, ptr("X"))
	assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Equal(t, 3, stockOf(t, svc, "A"))

	assert.Len(t, shipper.calls(), 1)
}

func TestPurchaseDigital(t *testing.T) {
	ctx := context.Background()
	svc, shipper, mailer := newTestService()
	svc.AddItem(ctx, mustDigital(t, "E", 2018, "35.00", "PDF"))

	amount, err := svc.Purchase(ctx, "E", 3, ptr("Marwan@yahoo.dev"), nil)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("105").Equal(amount), "got %s", amount)
	assert.Equal(t, []delivery{{itemID: "E", to: "Marwan@yahoo.dev"}}, mailer.calls())
	assert.Empty(t, shipper.calls())
}

func TestPurchaseMissingItem(t *testing.T) {
	svc, _, _ := newTestService()

	amount, err := svc.Purchase(context.Background(), "missing-id", 1, ptr("a@b.c"), ptr("X"))

	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.True(t, amount.IsZero())
}

func TestPurchaseDisplayItemIsRejected(t *testing.T) {
	ctx := context.Background()
	svc, shipper, mailer := newTestService()
	svc.AddItem(ctx, mustDisplay(t, "DEMO-001", 2013, "22.99"))
	before := svc.Inventory(ctx)

	_, err := svc.Purchase(ctx, "DEMO-001", 1, ptr("a@b.c"), ptr("X"))

	assert.ErrorIs(t, err, catalog.ErrNotForSale)
	assert.Equal(t, before, svc.Inventory(ctx))
	assert.Empty(t, shipper.calls())
	assert.Empty(t, mailer.calls())
}

func TestPurchaseRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	svc, shipper, _ := newTestService()
	svc.AddItem(ctx, mustPhysical(t, "A", 2020, "10", 5))

	for _, qty := range []int{0, -1, -100} {
		_, err := svc.Purchase(ctx, "A", qty, nil, ptr("X"))
		assert.ErrorIs(t, err, catalog.ErrInvalidQuantity)
	}
	_, err := svc.Purchase(ctx, "missing", 0, nil, ptr("X"))
	assert.ErrorIs(t, err, catalog.ErrInvalidQuantity, "quantity is validated before lookup")

	assert.Equal(t, 5, stockOf(t, svc, "A"))
	assert.Empty(t, shipper.calls())
}

func TestPurchaseErrorsCarryItemDetails(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	svc.AddItem(ctx, mustPhysical(t, "A", 2020, "10", 1))

	_, err := svc.Purchase(ctx, "A", 1, nil, nil)

	var perr *catalog.PurchaseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "A", perr.ItemID)
	assert.Equal(t, catalog.KindPhysical, perr.Kind)
	assert.ErrorIs(t, perr, catalog.ErrMissingAddress)
}

func TestAddItemOverwritesByID(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	svc.AddItem(ctx, mustPhysical(t, "A", 2020, "10", 5))
	svc.AddItem(ctx, mustDigital(t, "A", 2021, "12", "EPUB"))
	svc.AddItem(ctx, nil)

	items := svc.ListAll(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, catalog.KindDigital, items[0].Kind())
	assert.Equal(t, 2021, items[0].YearPublished())
}

func TestListAllReturnsSnapshots(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	svc.AddItem(ctx, mustPhysical(t, "B", 2020, "10", 5))
	svc.AddItem(ctx, mustDigital(t, "A", 2020, "10", "PDF"))

	items := svc.ListAll(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].ID())
	assert.Equal(t, "B", items[1].ID())

	// Purchasing through a snapshot must not reach the catalog.
	err := items[1].HandlePurchase(ctx, 5, catalog.PurchaseContext{Address: ptr("X"), Shipping: &shipperSpy{}})
	require.NoError(t, err)
	assert.Equal(t, 5, stockOf(t, svc, "B"))
}

func TestAddItemKeepsPrivateCopy(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	item := mustPhysical(t, "A", 2020, "10", 1000)
	svc.AddItem(ctx, item)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			_, err := svc.Purchase(ctx, "A", 1, nil, ptr("X"))
			assert.NoError(t, err)
		}
	}()
	for range 200 {
		assert.Equal(t, 1000, item.Stock())
	}
	wg.Wait()

	assert.Equal(t, 1000, item.Stock())
	assert.Equal(t, 800, stockOf(t, svc, "A"))

	// Changes through the caller's reference do not reach the catalog either.
	require.NoError(t, item.HandlePurchase(ctx, 10, catalog.PurchaseContext{Address: ptr("X"), Shipping: &shipperSpy{}}))
	assert.Equal(t, 990, item.Stock())
	assert.Equal(t, 800, stockOf(t, svc, "A"))
}

func TestGetItem(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	svc.AddItem(ctx, mustDigital(t, "E", 2018, "35", "PDF"))

	item, err := svc.GetItem(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, "E", item.ID())

	_, err = svc.GetItem(ctx, "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRemoveOutdatedAsOf(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	svc.AddItem(ctx, mustPhysical(t, "old", 1995, "54.99", 3))
	svc.AddItem(ctx, mustPhysical(t, "mid", 2008, "45.50", 5))
	svc.AddItem(ctx, mustDigital(t, "new", 2017, "55.99", "EPUB"))
	svc.AddItem(ctx, mustDisplay(t, "edge", 2004, "1"))

	removed := svc.RemoveOutdatedAsOf(ctx, 20, 2024)

	require.Len(t, removed, 1)
	assert.Equal(t, "old", removed[0].ID())
	assert.Len(t, svc.ListAll(ctx), 3, "an item from exactly the cutoff year stays")

	assert.Empty(t, svc.RemoveOutdatedAsOf(ctx, 20, 2024))
	assert.Len(t, svc.ListAll(ctx), 3)
}

func TestRemoveOutdatedUsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }
	svc, _, _ := newTestService(catalog.WithClock(clock))
	svc.AddItem(ctx, mustPhysical(t, "1995", 1995, "1", 1))
	svc.AddItem(ctx, mustPhysical(t, "2008", 2008, "1", 1))
	svc.AddItem(ctx, mustPhysical(t, "2017", 2017, "1", 1))

	removed := svc.RemoveOutdated(ctx, 20)

	require.Len(t, removed, 1)
	assert.Equal(t, "1995", removed[0].ID())
}

func TestInventory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	assert.Equal(t, "--- Current Inventory ---\nInventory is empty.\n-------------------------\n", svc.Inventory(ctx))

	svc.AddItem(ctx, mustPhysical(t, "A", 2008, "45.50", 5))
	assert.Equal(t,
		"--- Current Inventory ---\n  - ID: A, Title: Title A, Author: Author, Year: 2008 (Paper, Stock: 5)\n-------------------------\n",
		svc.Inventory(ctx))
}

func TestConcurrentPurchasesNeverOversell(t *testing.T) {
	ctx := context.Background()
	svc, shipper, _ := newTestService()
	svc.AddItem(ctx, mustPhysical(t, "A", 2020, "1", 10))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Purchase(ctx, "A", 1, nil, ptr("X")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, stockOf(t, svc, "A"))
	assert.Len(t, shipper.calls(), 10)
}

func TestPurchaseTracing(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	svc, _, _ := newTestService(catalog.WithTracerProvider(provider))
	svc.AddItem(ctx, mustPhysical(t, "A", 2020, "10", 1))
	exporter.Reset()

	_, err := svc.Purchase(ctx, "A", 1, nil, ptr("X"))
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, "A", 1, nil, ptr("X"))
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	for _, span := range spans {
		assert.Equal(t, "catalog.purchase", span.Name)
		assert.Contains(t, span.Attributes, attribute.String("item.id", "A"))
		assert.Contains(t, span.Attributes, attribute.String("item.kind", "physical"))
	}
	assert.Contains(t, spans[0].Attributes, attribute.String("purchase.amount", "10"))
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestPurchaseMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	svc, _, _ := newTestService(catalog.WithMeterProvider(provider))
	svc.AddItem(ctx, mustPhysical(t, "A", 1990, "10", 1))

	_, _ = svc.Purchase(ctx, "A", 1, nil, ptr("X"))
	_, _ = svc.Purchase(ctx, "A", 1, nil, ptr("X"))
	_, _ = svc.Purchase(ctx, "missing", 1, nil, ptr("X"))
	svc.RemoveOutdatedAsOf(ctx, 10, 2024)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byOutcome := map[string]int64{}
	var removed int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "bookstore.purchases":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					outcome, _ := dp.Attributes.Value("outcome")
					byOutcome[outcome.AsString()] += dp.Value
				}
			case "bookstore.items.removed":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					removed += dp.Value
				}
			}
		}
	}

	assert.Equal(t, map[string]int64{"success": 1, "insufficient_stock": 1, "not_found": 1}, byOutcome)
	assert.Equal(t, int64(1), removed)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", catalog.Outcome(nil))
	assert.Equal(t, "not_for_sale", catalog.Outcome(&catalog.PurchaseError{Err: catalog.ErrNotForSale}))
	assert.Equal(t, "missing_email", catalog.Outcome(catalog.ErrMissingEmail))
	assert.Equal(t, "error", catalog.Outcome(errors.New("boom")))
}
