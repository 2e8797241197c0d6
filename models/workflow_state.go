package models

import "time"

// OrderStatus represents how far an order has progressed through the
// place-order workflow.
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "PENDING"
	OrderStatusValidated    OrderStatus = "VALIDATED"
	OrderStatusPriced       OrderStatus = "PRICED"
	OrderStatusAcknowledged OrderStatus = "ACKNOWLEDGED"
	OrderStatusPlaced       OrderStatus = "PLACED"
	OrderStatusBilled       OrderStatus = "BILLED"
	OrderStatusFailed       OrderStatus = "FAILED"
)

// WorkflowState is exposed through the workflow's state query.
type WorkflowState struct {
	OrderID            string      `json:"order_id"`
	Status             OrderStatus `json:"status"`
	ValidationDone     bool        `json:"validation_done"`
	PricingDone        bool        `json:"pricing_done"`
	AcknowledgmentSent bool        `json:"acknowledgment_sent"`
	EventsPublished    bool        `json:"events_published"`
	InvoiceID          string      `json:"invoice_id,omitempty"`
	AmountToBill       string      `json:"amount_to_bill,omitempty"`
	FailureKind        ErrorKind   `json:"failure_kind,omitempty"`
	FailureMessage     string      `json:"failure_message,omitempty"`
	LastUpdated        time.Time   `json:"last_updated"`
}

// PlaceOrderResult is returned by the place-order workflow.
type PlaceOrderResult struct {
	OrderID   string           `json:"order_id"`
	Events    PlaceOrderEvents `json:"events"`
	InvoiceID string           `json:"invoice_id,omitempty"`
}
