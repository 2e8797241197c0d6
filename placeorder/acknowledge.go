package placeorder

import "order-taking-system/models"

// AcknowledgeOrder binds the letter renderer and sender and returns the
// acknowledgment step. It yields an event only when the letter was sent.
func AcknowledgeOrder(
	createLetter CreateOrderAcknowledgmentLetter,
	sendAcknowledgment SendOrderAcknowledgment,
) func(models.PricedOrder) models.Option[models.OrderAcknowledgmentSent] {
	return func(order models.PricedOrder) models.Option[models.OrderAcknowledgmentSent] {
		acknowledgment := models.OrderAcknowledgment{
			EmailAddress: order.CustomerInfo.EmailAddress,
			Letter:       createLetter(order),
		}

		switch sendAcknowledgment(acknowledgment) {
		case models.Sent:
			return models.Some(models.OrderAcknowledgmentSent{
				OrderID:      order.OrderID,
				EmailAddress: order.CustomerInfo.EmailAddress,
			})
		default:
			return models.None[models.OrderAcknowledgmentSent]()
		}
	}
}
