// internal/catalog/domain.go
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind names an item variant. It is used for presentation only; purchase
// handling never switches on it.
type Kind string

const (
	KindPhysical Kind = "physical"
	KindDigital  Kind = "digital"
	KindDisplay  Kind = "display"
)

// Item represents a book-like entry in the catalog. Each variant decides on
// its own whether it can be sold and how a sale is fulfilled.
type Item interface {
	ID() string
	Title() string
	Author() string
	YearPublished() int
	Price() decimal.Decimal
	Kind() Kind

	// Saleable reports whether the store may attempt a purchase at all.
	Saleable() bool

	// HandlePurchase validates the request against the item's own state,
	// applies any state change and hands the item to the matching
	// collaborator. Nothing is mutated when an error is returned.
	HandlePurchase(ctx context.Context, quantity int, pc PurchaseContext) error

	String() string

	snapshot() Item
}

// PurchaseContext carries the per-transaction inputs an item needs to
// fulfil a sale. Email and Address are optional.
type PurchaseContext struct {
	Email    *string
	Address  *string
	Shipping ShippingService
	Mail     MailService
}

type details struct {
	id            string
	title         string
	author        string
	yearPublished int
	price         decimal.Decimal
}

func newDetails(id, title, author string, year int, price decimal.Decimal) (details, error) {
	if strings.TrimSpace(id) == "" {
		return details{}, fmt.Errorf("%w: identifier is required", ErrInvalidItem)
	}
	if price.IsNegative() {
		return details{}, fmt.Errorf("%w: price %s is negative", ErrInvalidItem, price)
	}
	return details{id: id, title: title, author: author, yearPublished: year, price: price}, nil
}

func (d details) ID() string             { return d.id }
func (d details) Title() string          { return d.title }
func (d details) Author() string         { return d.author }
func (d details) YearPublished() int     { return d.yearPublished }
func (d details) Price() decimal.Decimal { return d.price }

func (d details) describe() string {
	return fmt.Sprintf("ID: %s, Title: %s, Author: %s, Year: %d", d.id, d.title, d.author, d.yearPublished)
}

// PhysicalItem is a stocked paper book that has to be shipped.
type PhysicalItem struct {
	details
	stock int
}

// NewPhysicalItem creates a physical item with the given stock.
func NewPhysicalItem(id, title, author string, year int, price decimal.Decimal, stock int) (*PhysicalItem, error) {
	d, err := newDetails(id, title, author, year, price)
	if err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock %d is negative", ErrInvalidItem, stock)
	}
	return &PhysicalItem{details: d, stock: stock}, nil
}

// Stock returns the remaining number of copies.
func (p *PhysicalItem) Stock() int { return p.stock }

func (p *PhysicalItem) Kind() Kind     { return KindPhysical }
func (p *PhysicalItem) Saleable() bool { return true }

func (p *PhysicalItem) HandlePurchase(ctx context.Context, quantity int, pc PurchaseContext) error {
	if quantity <= 0 {
		return newPurchaseError(p, quantity, ErrInvalidQuantity)
	}
	if quantity > p.stock {
		perr := newPurchaseError(p, quantity, ErrInsufficientStock)
		perr.Available = p.stock
		return perr
	}
	address, ok := present(pc.Address)
	if !ok {
		return newPurchaseError(p, quantity, ErrMissingAddress)
	}

	p.stock -= quantity
	pc.Shipping.Ship(ctx, p, address)
	return nil
}

func (p *PhysicalItem) String() string {
	return fmt.Sprintf("%s (Paper, Stock: %d)", p.describe(), p.stock)
}

func (p *PhysicalItem) snapshot() Item {
	cp := *p
	return &cp
}

// DigitalItem is an e-book delivered by mail. Its stock is not tracked.
type DigitalItem struct {
	details
	format string
}

// NewDigitalItem creates a digital item in the given file format.
func NewDigitalItem(id, title, author string, year int, price decimal.Decimal, format string) (*DigitalItem, error) {
	d, err := newDetails(id, title, author, year, price)
	if err != nil {
		return nil, err
	}
	return &DigitalItem{details: d, format: format}, nil
}

// Format returns the file format tag, e.g. "PDF".
func (e *DigitalItem) Format() string { return e.format }

func (e *DigitalItem) Kind() Kind     { return KindDigital }
func (e *DigitalItem) Saleable() bool { return true }

func (e *DigitalItem) HandlePurchase(ctx context.Context, quantity int, pc PurchaseContext) error {
	if quantity <= 0 {
		return newPurchaseError(e, quantity, ErrInvalidQuantity)
	}
	email, ok := present(pc.Email)
	if !ok {
		return newPurchaseError(e, quantity, ErrMissingEmail)
	}

	pc.Mail.Send(ctx, e, email)
	return nil
}

func (e *DigitalItem) String() string {
	return fmt.Sprintf("%s (eBook, Format: %s)", e.describe(), e.format)
}

func (e *DigitalItem) snapshot() Item {
	cp := *e
	return &cp
}

// DisplayItem is a showcase copy that is never sold.
type DisplayItem struct {
	details
}

// NewDisplayItem creates a display-only item.
func NewDisplayItem(id, title, author string, year int, price decimal.Decimal) (*DisplayItem, error) {
	d, err := newDetails(id, title, author, year, price)
	if err != nil {
		return nil, err
	}
	return &DisplayItem{details: d}, nil
}

func (s *DisplayItem) Kind() Kind     { return KindDisplay }
func (s *DisplayItem) Saleable() bool { return false }

// HandlePurchase always fails. The store rejects display items before
// getting here; this keeps the item safe when called directly.
func (s *DisplayItem) HandlePurchase(_ context.Context, quantity int, _ PurchaseContext) error {
	return newPurchaseError(s, quantity, ErrNotForSale)
}

func (s *DisplayItem) String() string {
	return s.describe() + " (Showcase Only - Not for Sale)"
}

func (s *DisplayItem) snapshot() Item {
	cp := *s
	return &cp
}

// present reports whether an optional value is set and not blank.
func present(v *string) (string, bool) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", false
	}
	return *v, true
}
