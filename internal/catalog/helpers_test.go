// internal/catalog/helpers_test.go
package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bookstore/internal/catalog"
)

type delivery struct {
	itemID string
	to     string
}

type shipperSpy struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (s *shipperSpy) Ship(_ context.Context, item catalog.Item, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, delivery{itemID: item.ID(), to: address})
}

func (s *shipperSpy) calls() []delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]delivery(nil), s.deliveries...)
}

type mailerSpy struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (m *mailerSpy) Send(_ context.Context, item catalog.Item, recipient string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, delivery{itemID: item.ID(), to: recipient})
}

func (m *mailerSpy) calls() []delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]delivery(nil), m.deliveries...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(opts ...catalog.Option) (catalog.Service, *shipperSpy, *mailerSpy) {
	shipper := &shipperSpy{}
	mailer := &mailerSpy{}
	opts = append([]catalog.Option{catalog.WithLogger(discardLogger())}, opts...)
	return catalog.NewService(shipper, mailer, opts...), shipper, mailer
}

func mustPhysical(t require.TestingT, id string, year int, price string, stock int) *catalog.PhysicalItem {
	item, err := catalog.NewPhysicalItem(id, "Title "+id, "Author", year, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	return item
}

func mustDigital(t require.TestingT, id string, year int, price, format string) *catalog.DigitalItem {
	item, err := catalog.NewDigitalItem(id, "Title "+id, "Author", year, decimal.RequireFromString(price), format)
	require.NoError(t, err)
	return item
}

func mustDisplay(t require.TestingT, id string, year int, price string) *catalog.DisplayItem {
	item, err := catalog.NewDisplayItem(id, "Title "+id, "Author", year, decimal.RequireFromString(price))
	require.NoError(t, err)
	return item
}

func ptr(s string) *string { return &s }

func stockOf(t require.TestingT, svc catalog.Service, id string) int {
	item, err := svc.GetItem(context.Background(), id)
	require.NoError(t, err)
	physical, ok := item.(*catalog.PhysicalItem)
	require.True(t, ok, "item %s is not physical", id)
	return physical.Stock()
}
