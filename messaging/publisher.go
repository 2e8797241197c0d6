package messaging

import (
	"context"

	"order-taking-system/models"
)

// Publisher delivers workflow output to other bounded contexts.
type Publisher interface {
	// PublishEvents publishes events in order.
	PublishEvents(ctx context.Context, events models.PlaceOrderEvents) error
	SendAcknowledgment(ctx context.Context, ack models.OrderAcknowledgment) error
	PublishInvoice(ctx context.Context, inv models.UnpaidInvoice, status models.InvoiceStatus) error
	Close() error
}
