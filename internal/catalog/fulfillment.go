// internal/catalog/fulfillment.go
package catalog

import "context"

// ShippingService delivers physical items. Implementations are assumed to
// always succeed.
//
// Ship runs while the catalog holds its lock for the purchase, so it must
// not call back into the Service that invoked it.
type ShippingService interface {
	Ship(ctx context.Context, item Item, address string)
}

// MailService delivers digital items to a recipient.
//
// Send runs while the catalog holds its lock for the purchase, so it must
// not call back into the Service that invoked it.
type MailService interface {
	Send(ctx context.Context, item Item, recipient string)
}

// discardShipping and discardMail stand in for collaborators left nil.
type discardShipping struct{}

func (discardShipping) Ship(context.Context, Item, string) {}

type discardMail struct{}

func (discardMail) Send(context.Context, Item, string) {}
