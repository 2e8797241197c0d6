package placeorder

import "order-taking-system/models"

// CreateEvents assembles the workflow output in a fixed order: the
// acknowledgment (if sent), the placed order, then the billing event (if
// anything is billable).
func CreateEvents(order models.PricedOrder, acknowledgment models.Option[models.OrderAcknowledgmentSent]) models.PlaceOrderEvents {
	events := make(models.PlaceOrderEvents, 0, 3)
	for _, e := range acknowledgment.ToSlice() {
		events = append(events, e)
	}
	events = append(events, createOrderPlacedEvent(order))
	for _, e := range createBillingEvent(order).ToSlice() {
		events = append(events, e)
	}
	return events
}

func createOrderPlacedEvent(order models.PricedOrder) models.OrderPlaced {
	return models.OrderPlaced(order)
}

func createBillingEvent(order models.PricedOrder) models.Option[models.BillableOrderPlaced] {
	if !order.AmountToBill.IsPositive() {
		return models.None[models.BillableOrderPlaced]()
	}
	return models.Some(models.BillableOrderPlaced{
		OrderID:        order.OrderID,
		BillingAddress: order.BillingAddress,
		AmountToBill:   order.AmountToBill,
	})
}
