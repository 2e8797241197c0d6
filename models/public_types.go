package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ------------------------------------
// inputs to the workflow

type UnvalidatedCustomerInfo struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
}

type UnvalidatedAddress struct {
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	AddressLine3 *string `json:"addressLine3,omitempty"`
	AddressLine4 *string `json:"addressLine4,omitempty"`
	City         string  `json:"city"`
	ZipCode      string  `json:"zipCode"`
}

// CheckedAddress is an address normalised by the address verification
// service. It is still unvalidated against the domain constraints.
type CheckedAddress UnvalidatedAddress

type UnvalidatedOrderLine struct {
	OrderLineID string  `json:"orderLineId"`
	ProductCode string  `json:"productCode"`
	Quantity    float64 `json:"quantity"`
}

type UnvalidatedOrder struct {
	OrderID         string                  `json:"orderId"`
	CustomerInfo    UnvalidatedCustomerInfo `json:"customerInfo"`
	ShippingAddress UnvalidatedAddress      `json:"shippingAddress"`
	BillingAddress  UnvalidatedAddress      `json:"billingAddress"`
	Lines           []UnvalidatedOrderLine  `json:"lines"`
}

// PlaceOrderCommand wraps an order with who submitted it and when.
type PlaceOrderCommand struct {
	Data      UnvalidatedOrder `json:"data"`
	Timestamp time.Time        `json:"timestamp"`
	UserID    string           `json:"userId"`
}

// ------------------------------------
// acknowledgment

// HTMLString is rendered HTML.
type HTMLString string

type OrderAcknowledgment struct {
	EmailAddress EmailAddress `json:"emailAddress"`
	Letter       HTMLString   `json:"letter"`
}

// SendResult is the outcome of sending an acknowledgment. Failing to send is
// a result, not an error.
type SendResult string

const (
	Sent    SendResult = "Sent"
	NotSent SendResult = "NotSent"
)

// ------------------------------------
// outputs from the workflow

type EventType string

const (
	EventOrderAcknowledgmentSent EventType = "OrderAcknowledgmentSent"
	EventOrderPlaced             EventType = "OrderPlaced"
	EventBillableOrderPlaced     EventType = "BillableOrderPlaced"
)

// PlaceOrderEvent is one of OrderAcknowledgmentSent, OrderPlaced or
// BillableOrderPlaced.
type PlaceOrderEvent interface {
	EventType() EventType
	// AggregateID is the order the event belongs to.
	AggregateID() OrderID
	isPlaceOrderEvent()
}

// OrderAcknowledgmentSent is emitted when the acknowledgment was posted.
type OrderAcknowledgmentSent struct {
	OrderID      OrderID      `json:"orderId"`
	EmailAddress EmailAddress `json:"emailAddress"`
}

func (OrderAcknowledgmentSent) EventType() EventType   { return EventOrderAcknowledgmentSent }
func (e OrderAcknowledgmentSent) AggregateID() OrderID { return e.OrderID }
func (OrderAcknowledgmentSent) isPlaceOrderEvent()     {}

// OrderPlaced is sent to the shipping context.
type OrderPlaced PricedOrder

func (OrderPlaced) EventType() EventType   { return EventOrderPlaced }
func (e OrderPlaced) AggregateID() OrderID { return e.OrderID }
func (OrderPlaced) isPlaceOrderEvent()     {}

// BillableOrderPlaced is sent to the billing context, only when there is
// something to bill.
type BillableOrderPlaced struct {
	OrderID        OrderID       `json:"orderId"`
	BillingAddress Address       `json:"billingAddress"`
	AmountToBill   BillingAmount `json:"amountToBill"`
}

func (BillableOrderPlaced) EventType() EventType   { return EventBillableOrderPlaced }
func (e BillableOrderPlaced) AggregateID() OrderID { return e.OrderID }
func (BillableOrderPlaced) isPlaceOrderEvent()     {}

// PlaceOrderEvents is the ordered output of the workflow. It encodes as a
// JSON array of {"type": ..., "data": ...} objects.
type PlaceOrderEvents []PlaceOrderEvent

// BillableOrder returns the billing event, if any.
func (events PlaceOrderEvents) BillableOrder() Option[BillableOrderPlaced] {
	for _, e := range events {
		if b, ok := e.(BillableOrderPlaced); ok {
			return Some(b)
		}
	}
	return None[BillableOrderPlaced]()
}

// Types lists the event types in order.
func (events PlaceOrderEvents) Types() []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

type eventJSON struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (events PlaceOrderEvents) MarshalJSON() ([]byte, error) {
	out := make([]eventJSON, len(events))
	for i, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s event: %w", e.EventType(), err)
		}
		out[i] = eventJSON{Type: e.EventType(), Data: data}
	}
	return json.Marshal(out)
}

func (events *PlaceOrderEvents) UnmarshalJSON(data []byte) error {
	var raw []eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*events = nil
		return nil
	}
	out := make(PlaceOrderEvents, 0, len(raw))
	for _, r := range raw {
		e, err := decodeEvent(r)
		if err != nil {
			return err
		}
		out = append(out, e)
	}
	*events = out
	return nil
}

func decodeEvent(r eventJSON) (PlaceOrderEvent, error) {
	switch r.Type {
	case EventOrderAcknowledgmentSent:
		var e OrderAcknowledgmentSent
		err := json.Unmarshal(r.Data, &e)
		return e, err
	case EventOrderPlaced:
		var e OrderPlaced
		err := json.Unmarshal(r.Data, &e)
		return e, err
	case EventBillableOrderPlaced:
		var e BillableOrderPlaced
		err := json.Unmarshal(r.Data, &e)
		return e, err
	default:
		return nil, fmt.Errorf("unknown event type %q", r.Type)
	}
}
