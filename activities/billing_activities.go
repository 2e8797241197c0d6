package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"order-taking-system/messaging"
	"order-taking-system/metrics"
	"order-taking-system/models"
)

var invoiceNamespace = uuid.MustParse("0b6c7f5e-8d1a-4a5b-b7e2-4f9c3a2d1e60")

// BillingActivities raises invoices for billable orders.
type BillingActivities struct {
	publisher messaging.Publisher
	metrics   *metrics.PipelineMetrics
	now       func() time.Time
}

// NewBillingActivities creates a new BillingActivities instance.
func NewBillingActivities(publisher messaging.Publisher, m *metrics.PipelineMetrics) *BillingActivities {
	if m == nil {
		m = metrics.NewPipelineMetrics(nil)
	}
	return &BillingActivities{publisher: publisher, metrics: m, now: time.Now}
}

// CreateInvoice builds the invoice for a billable order. The invoice id is
// derived from the order id so retries produce the same invoice.
func (b *BillingActivities) CreateInvoice(ctx context.Context, billable models.BillableOrderPlaced) (models.UnpaidInvoice, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Creating invoice", "order_id", billable.OrderID.String(), "amount", billable.AmountToBill.String())

	if !billable.AmountToBill.IsPositive() {
		return models.UnpaidInvoice{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("invalid invoice amount: %s", billable.AmountToBill), ErrTypeInvalidAmount, nil)
	}

	invoiceID := "INV-" + uuid.NewSHA1(invoiceNamespace, []byte(billable.OrderID.String())).String()
	inv := models.UnpaidInvoice{
		InvoiceID:      invoiceID,
		OrderID:        billable.OrderID,
		BillingAddress: billable.BillingAddress,
		AmountDue:      billable.AmountToBill,
		IssuedAt:       b.now().UTC(),
	}

	logger.Info("Invoice created", "order_id", billable.OrderID.String(), "invoice_id", invoiceID)
	return inv, nil
}

// IssueInvoice publishes the invoice to the billing context.
func (b *BillingActivities) IssueInvoice(ctx context.Context, inv models.UnpaidInvoice) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Issuing invoice", "invoice_id", inv.InvoiceID)

	activity.RecordHeartbeat(ctx, "issuing invoice")

	if err := b.publisher.PublishInvoice(ctx, inv, models.InvoiceStatusIssued); err != nil {
		return fmt.Errorf("failed to issue invoice %s: %w", inv.InvoiceID, err)
	}
	b.metrics.Invoices.WithLabelValues(string(models.InvoiceStatusIssued)).Inc()
	return nil
}

// VoidInvoice withdraws an invoice that could not be issued.
func (b *BillingActivities) VoidInvoice(ctx context.Context, inv models.UnpaidInvoice) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Voiding invoice", "invoice_id", inv.InvoiceID)

	if err := b.publisher.PublishInvoice(ctx, inv, models.InvoiceStatusVoided); err != nil {
		return fmt.Errorf("failed to void invoice %s: %w", inv.InvoiceID, err)
	}
	b.metrics.Invoices.WithLabelValues(string(models.InvoiceStatusVoided)).Inc()
	logger.Info("Invoice voided", "invoice_id", inv.InvoiceID)
	return nil
}
