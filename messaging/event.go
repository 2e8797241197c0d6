// Package messaging publishes place-order events and acknowledgment letters
// to Kafka.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"order-taking-system/models"
)

// Event type constants carried in the envelope.
const (
	EventAcknowledgmentSent = "order.acknowledgment_sent"
	EventOrderPlaced        = "order.placed"
	EventBillablePlaced     = "order.billable_placed"
	EventInvoiceIssued      = "invoice.issued"
	EventInvoiceVoided      = "invoice.voided"
)

var eventNamespace = uuid.MustParse("6f1c1e0a-3b1e-4c8e-9a57-0d3c2f5b7a11")

// OrderEvent is the Kafka message envelope for downstream contexts.
type OrderEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OrderID    string          `json:"order_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Notification is the message sent to the notifications topic for the mailer.
type Notification struct {
	To         string    `json:"to"`
	Letter     string    `json:"letter"`
	OccurredAt time.Time `json:"occurred_at"`
}

func envelopeType(t models.EventType) (string, error) {
	switch t {
	case models.EventOrderAcknowledgmentSent:
		return EventAcknowledgmentSent, nil
	case models.EventOrderPlaced:
		return EventOrderPlaced, nil
	case models.EventBillableOrderPlaced:
		return EventBillablePlaced, nil
	default:
		return "", fmt.Errorf("unknown event type %q", t)
	}
}

// eventID is stable for an (order, event type) pair so a retried publish
// produces the same id and consumers can deduplicate.
func eventID(orderID, eventType string) string {
	return uuid.NewSHA1(eventNamespace, []byte(orderID+"/"+eventType)).String()
}

// NewOrderEvent wraps a place-order event in the envelope.
func NewOrderEvent(e models.PlaceOrderEvent, at time.Time) (OrderEvent, error) {
	typ, err := envelopeType(e.EventType())
	if err != nil {
		return OrderEvent{}, err
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return OrderEvent{}, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	orderID := e.AggregateID().String()
	return OrderEvent{
		EventID:    eventID(orderID, typ),
		EventType:  typ,
		OrderID:    orderID,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}, nil
}

// NewInvoiceEvent wraps an invoice lifecycle change in the envelope.
func NewInvoiceEvent(inv models.UnpaidInvoice, status models.InvoiceStatus, at time.Time) (OrderEvent, error) {
	var typ string
	switch status {
	case models.InvoiceStatusIssued:
		typ = EventInvoiceIssued
	case models.InvoiceStatusVoided:
		typ = EventInvoiceVoided
	default:
		return OrderEvent{}, fmt.Errorf("unknown invoice status %q", status)
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return OrderEvent{}, fmt.Errorf("failed to marshal invoice payload: %w", err)
	}
	orderID := inv.OrderID.String()
	return OrderEvent{
		EventID:    eventID(orderID, typ+"/"+inv.InvoiceID),
		EventType:  typ,
		OrderID:    orderID,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}, nil
}
