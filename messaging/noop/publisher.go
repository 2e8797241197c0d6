package noop

import (
	"context"

	"order-taking-system/models"
)

// Publisher is a no-op messaging.Publisher used when Kafka is not configured.
type Publisher struct{}

func (Publisher) PublishEvents(_ context.Context, _ models.PlaceOrderEvents) error { return nil }

func (Publisher) SendAcknowledgment(_ context.Context, _ models.OrderAcknowledgment) error {
	return nil
}

func (Publisher) PublishInvoice(_ context.Context, _ models.UnpaidInvoice, _ models.InvoiceStatus) error {
	return nil
}

func (Publisher) Close() error { return nil }
