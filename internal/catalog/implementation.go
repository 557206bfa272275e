// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "bookstore/catalog"

// Option configures the catalog service.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	now            func() time.Time
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the time source RemoveOutdated takes the current year from.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider overrides the global OpenTelemetry meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// service implements the Service interface.
type service struct {
	mu       sync.Mutex
	items    map[string]Item
	shipping ShippingService
	mail     MailService

	logger  *slog.Logger
	now     func() time.Time
	tracer  trace.Tracer
	metrics *storeMetrics
}

// NewService creates a new catalog service that fulfils sales through the
// given collaborators. A nil collaborator is replaced by one that does
// nothing.
func NewService(shipping ShippingService, mail MailService, opts ...Option) Service {
	if shipping == nil {
		shipping = discardShipping{}
	}
	if mail == nil {
		mail = discardMail{}
	}

	o := options{
		logger:         slog.Default(),
		now:            time.Now,
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	metrics, err := newStoreMetrics(o.meterProvider.Meter(instrumentationName))
	if err != nil {
		o.logger.Warn("catalog metrics disabled", "error", err)
		metrics = noopStoreMetrics()
	}

	return &service{
		items:    make(map[string]Item),
		shipping: shipping,
		mail:     mail,
		logger:   o.logger,
		now:      o.now,
		tracer:   o.tracerProvider.Tracer(instrumentationName),
		metrics:  metrics,
	}
}

// AddItem inserts a copy of item, replacing any item with the same
// identifier. Later changes to item are not seen by the catalog and the
// catalog's own changes are not seen through item.
func (s *service) AddItem(ctx context.Context, item Item) {
	if item == nil {
		return
	}
	item = item.snapshot()
	ctx, span := s.tracer.Start(ctx, "catalog.add_item",
		trace.WithAttributes(
			attribute.String("item.id", item.ID()),
			attribute.String("item.kind", string(item.Kind())),
		),
	)
	defer span.End()

	s.mu.Lock()
	_, replaced := s.items[item.ID()]
	s.items[item.ID()] = item
	s.mu.Unlock()

	span.SetAttributes(attribute.Bool("item.replaced", replaced))
	s.logger.InfoContext(ctx, "item added",
		"item_id", item.ID(),
		"title", item.Title(),
		"kind", item.Kind(),
		"replaced", replaced,
	)
}

// GetItem returns a snapshot of the item with the given identifier.
func (s *service) GetItem(ctx context.Context, id string) (Item, error) {
	_, span := s.tracer.Start(ctx, "catalog.get_item",
		trace.WithAttributes(attribute.String("item.id", id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		span.SetStatus(codes.Error, ErrNotFound.Error())
		return nil, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return item.snapshot(), nil
}

// Purchase sells quantity copies of an item and returns the amount paid.
// The item decides how the sale is fulfilled.
func (s *service) Purchase(ctx context.Context, id string, quantity int, email, address *string) (decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.purchase",
		trace.WithAttributes(
			attribute.String("item.id", id),
			attribute.Int("purchase.quantity", quantity),
		),
	)
	defer span.End()

	amount, kind, err := s.purchase(ctx, id, quantity, email, address)
	s.metrics.recordPurchase(ctx, kind, amount, err)
	if kind != "" {
		span.SetAttributes(attribute.String("item.kind", string(kind)))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "purchase rejected",
			"item_id", id,
			"quantity", quantity,
			"error", err,
		)
		return decimal.Zero, err
	}

	span.SetAttributes(attribute.String("purchase.amount", amount.String()))
	s.logger.InfoContext(ctx, "purchase completed",
		"item_id", id,
		"kind", kind,
		"quantity", quantity,
		"amount", amount.String(),
	)
	return amount, nil
}

func (s *service) purchase(ctx context.Context, id string, quantity int, email, address *string) (decimal.Decimal, Kind, error) {
	if quantity <= 0 {
		return decimal.Zero, "", &PurchaseError{ItemID: id, Quantity: quantity, Err: ErrInvalidQuantity}
	}

	// Lookup through the stock decrement runs under one lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return decimal.Zero, "", &PurchaseError{ItemID: id, Quantity: quantity, Err: ErrNotFound}
	}
	if !item.Saleable() {
		return decimal.Zero, item.Kind(), newPurchaseError(item, quantity, ErrNotForSale)
	}

	pc := PurchaseContext{
		Email:    email,
		Address:  address,
		Shipping: s.shipping,
		Mail:     s.mail,
	}
	if err := item.HandlePurchase(ctx, quantity, pc); err != nil {
		return decimal.Zero, item.Kind(), err
	}

	return item.Price().Mul(decimal.NewFromInt(int64(quantity))), item.Kind(), nil
}

// RemoveOutdated removes items older than years, measured from the
// current year of the service clock.
func (s *service) RemoveOutdated(ctx context.Context, years int) []Item {
	return s.RemoveOutdatedAsOf(ctx, years, s.now().Year())
}

// RemoveOutdatedAsOf removes every item published strictly before
// currentYear-years and returns exactly the removed items.
func (s *service) RemoveOutdatedAsOf(ctx context.Context, years, currentYear int) []Item {
	cutoff := currentYear - years
	ctx, span := s.tracer.Start(ctx, "catalog.remove_outdated",
		trace.WithAttributes(
			attribute.Int("prune.years", years),
			attribute.Int("prune.cutoff_year", cutoff),
		),
	)
	defer span.End()

	s.mu.Lock()
	removed := make([]Item, 0)
	for id, item := range s.items {
		if item.YearPublished() < cutoff {
			delete(s.items, id)
			removed = append(removed, item)
		}
	}
	s.mu.Unlock()

	sortByID(removed)
	for _, item := range removed {
		s.logger.InfoContext(ctx, "item removed",
			"item_id", item.ID(),
			"title", item.Title(),
			"year_published", item.YearPublished(),
		)
	}
	s.metrics.itemsRemoved.Add(ctx, int64(len(removed)))
	span.SetAttributes(attribute.Int("prune.removed", len(removed)))
	return removed
}

// ListAll returns snapshots of every item, ordered by identifier.
func (s *service) ListAll(ctx context.Context) []Item {
	_, span := s.tracer.Start(ctx, "catalog.list")
	defer span.End()

	s.mu.Lock()
	items := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.snapshot())
	}
	s.mu.Unlock()

	sortByID(items)
	span.SetAttributes(attribute.Int("items.count", len(items)))
	return items
}

// Inventory renders the catalog as a human readable listing.
func (s *service) Inventory(ctx context.Context) string {
	return FormatInventory(s.ListAll(ctx))
}

// FormatInventory renders items one per line between header and footer rules.
func FormatInventory(items []Item) string {
	var b strings.Builder
	b.WriteString("--- Current Inventory ---\n")
	if len(items) == 0 {
		b.WriteString("Inventory is empty.\n")
	}
	for _, item := range items {
		b.WriteString("  - ")
		b.WriteString(item.String())
		b.WriteByte('\n')
	}
	b.WriteString("-------------------------\n")
	return b.String()
}

func sortByID(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		return strings.Compare(a.ID(), b.ID())
	})
}
