package activities_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"order-taking-system/catalog"
	"order-taking-system/models"
)

// recordingPublisher is a messaging.Publisher that remembers what it was
// asked to publish and fails on demand.
type recordingPublisher struct {
	mu       sync.Mutex
	events   []models.PlaceOrderEvents
	acks     []models.OrderAcknowledgment
	invoices map[models.InvoiceStatus][]models.UnpaidInvoice
	err      error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{invoices: map[models.InvoiceStatus][]models.UnpaidInvoice{}}
}

func (p *recordingPublisher) PublishEvents(_ context.Context, events models.PlaceOrderEvents) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events)
	return nil
}

func (p *recordingPublisher) SendAcknowledgment(_ context.Context, ack models.OrderAcknowledgment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.acks = append(p.acks, ack)
	return nil
}

func (p *recordingPublisher) PublishInvoice(_ context.Context, inv models.UnpaidInvoice, status models.InvoiceStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.invoices[status] = append(p.invoices[status], inv)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var errBrokerDown = errors.New("broker down")

func seededCatalog(t *testing.T) *catalog.SQLiteStore {
	t.Helper()
	store, err := catalog.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, catalog.Seed(context.Background(), store, catalog.DefaultProducts()))
	return store
}

// badPriceCatalog holds a product whose stored price is out of range.
type badPriceCatalog struct{}

func (badPriceCatalog) ProductExists(context.Context, models.ProductCode) (bool, error) {
	return true, nil
}

func (badPriceCatalog) ProductPrice(context.Context, models.ProductCode) (models.Price, error) {
	return models.NewPrice(decimal.NewFromInt(5000))
}

func (badPriceCatalog) UpsertProduct(context.Context, catalog.Product) error { return nil }

func (badPriceCatalog) Close() error { return nil }

func productCode(t *testing.T, s string) models.ProductCode {
	t.Helper()
	c, err := models.NewProductCode("productCode", s)
	require.NoError(t, err)
	return c
}

func strPtr(s string) *string { return &s }

const pricedOrderJSON = `{
  "orderId": "ORD-7",
  "customerInfo": {
    "name": {"firstName": "Jane", "lastName": "Doe"},
    "emailAddress": "jane@example.com"
  },
  "shippingAddress": {"addressLine1": "1 Main St", "addressLine2": null, "addressLine3": null, "addressLine4": null, "city": "Springfield", "zipCode": "12345"},
  "billingAddress": {"addressLine1": "1 Main St", "addressLine2": "Suite 2", "addressLine3": null, "addressLine4": null, "city": "Springfield", "zipCode": "12345"},
  "amountToBill": 25,
  "lines": [
    {"orderLineId": "L1", "productCode": "G123", "quantity": {"kind": "kilogram", "value": 2}, "linePrice": 25}
  ]
}`

func samplePricedOrder(t *testing.T) models.PricedOrder {
	t.Helper()
	var order models.PricedOrder
	require.NoError(t, json.Unmarshal([]byte(pricedOrderJSON), &order))
	return order
}
