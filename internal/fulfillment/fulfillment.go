// internal/fulfillment/fulfillment.go

// Package fulfillment provides stand-in shipping and mail collaborators
// that only log what they would deliver.
package fulfillment

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookstore/internal/catalog"
)

// LogShipper implements catalog.ShippingService.
type LogShipper struct {
	logger *slog.Logger
}

func NewLogShipper(logger *slog.Logger) *LogShipper {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogShipper{logger: logger.With("component", "shipping")}
}

func (s *LogShipper) Ship(ctx context.Context, item catalog.Item, address string) {
	trace.SpanFromContext(ctx).AddEvent("fulfillment.ship", trace.WithAttributes(
		attribute.String("item.id", item.ID()),
	))
	s.logger.InfoContext(ctx, "preparing shipment",
		"item_id", item.ID(),
		"title", item.Title(),
		"address", address,
	)
}

// LogMailer implements catalog.MailService.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With("component", "mail")}
}

func (m *LogMailer) Send(ctx context.Context, item catalog.Item, recipient string) {
	trace.SpanFromContext(ctx).AddEvent("fulfillment.send", trace.WithAttributes(
		attribute.String("item.id", item.ID()),
	))
	m.logger.InfoContext(ctx, "sending download link",
		"item_id", item.ID(),
		"title", item.Title(),
		"recipient", recipient,
	)
}
