package placeorder

import (
	"errors"
	"fmt"

	"order-taking-system/models"
)

// PriceOrder binds the price lookup and returns the pricing step. Line order
// is preserved and the result depends only on the input and the lookup.
func PriceOrder(getProductPrice GetProductPrice) func(models.ValidatedOrder) (models.PricedOrder, error) {
	return func(order models.ValidatedOrder) (models.PricedOrder, error) {
		lines := make([]models.PricedOrderLine, 0, len(order.Lines))
		linePrices := make([]models.Price, 0, len(order.Lines))
		for _, line := range order.Lines {
			priced, err := toPricedOrderLine(getProductPrice, line)
			if err != nil {
				return models.PricedOrder{}, err
			}
			lines = append(lines, priced)
			linePrices = append(linePrices, priced.LinePrice)
		}

		amountToBill, err := models.SumPrices(linePrices)
		if err != nil {
			return models.PricedOrder{}, &models.PricingError{
				Msg: fmt.Sprintf("order %s: amount to bill is out of range", order.OrderID),
				Err: err,
			}
		}

		return models.PricedOrder{
			OrderID:         order.OrderID,
			CustomerInfo:    order.CustomerInfo,
			ShippingAddress: order.ShippingAddress,
			BillingAddress:  order.BillingAddress,
			AmountToBill:    amountToBill,
			Lines:           lines,
		}, nil
	}
}

func toPricedOrderLine(getProductPrice GetProductPrice, line models.ValidatedOrderLine) (models.PricedOrderLine, error) {
	price, err := getProductPrice(line.ProductCode)
	if err != nil {
		// A price the lookup could not construct is out of bounds for pricing.
		var invalid *models.ValidationError
		if errors.As(err, &invalid) {
			return models.PricedOrderLine{}, &models.PricingError{
				Msg: fmt.Sprintf("line %s: price of %s: %s", line.OrderLineID, line.ProductCode, invalid.Msg),
				Err: err,
			}
		}
		return models.PricedOrderLine{}, serviceError(ServicePriceList, err)
	}

	linePrice, err := price.Multiply(line.Quantity)
	if err != nil {
		return models.PricedOrderLine{}, &models.PricingError{
			Msg: fmt.Sprintf("line %s: %s × %s is out of range", line.OrderLineID, price, line.Quantity.Value()),
			Err: err,
		}
	}

	return models.PricedOrderLine{
		OrderLineID: line.OrderLineID,
		ProductCode: line.ProductCode,
		Quantity:    line.Quantity,
		LinePrice:   linePrice,
	}, nil
}
