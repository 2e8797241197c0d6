package placeorder

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"order-taking-system/models"
)

func sampleOrder() models.UnvalidatedOrder {
	address := models.UnvalidatedAddress{
		ZipCode:      "1234567",
		City:         "Tokyo",
		AddressLine1: "Suginami-ku",
	}
	return models.UnvalidatedOrder{
		OrderID: "1234",
		CustomerInfo: models.UnvalidatedCustomerInfo{
			FirstName:    "Test",
			LastName:     "Family",
			EmailAddress: "a@example.com",
		},
		ShippingAddress: address,
		BillingAddress:  address,
		Lines: []models.UnvalidatedOrderLine{
			{OrderLineID: "123", ProductCode: "W1234", Quantity: 1},
		},
	}
}

func productExists(models.ProductCode) (bool, error) { return true, nil }

func productMissing(models.ProductCode) (bool, error) { return false, nil }

func addressIdentity(a models.UnvalidatedAddress) (models.CheckedAddress, error) {
	return models.CheckedAddress(a), nil
}

func fixedPrice(amount string) GetProductPrice {
	p := models.MustPrice(decimal.RequireFromString(amount))
	return func(models.ProductCode) (models.Price, error) { return p, nil }
}

func staticLetter(models.PricedOrder) models.HTMLString { return "<p>thanks</p>" }

func sendResult(r models.SendResult) SendOrderAcknowledgment {
	return func(models.OrderAcknowledgment) models.SendResult { return r }
}

func testDependencies() Dependencies {
	return Dependencies{
		CheckProductCodeExists: productExists,
		CheckAddressExists:     addressIdentity,
		GetProductPrice:        fixedPrice("120"),
		CreateLetter:           staticLetter,
		SendAcknowledgment:     sendResult(models.Sent),
	}
}

func validated(t *testing.T, order models.UnvalidatedOrder) models.ValidatedOrder {
	t.Helper()
	v, err := ValidateOrder(productExists, addressIdentity)(order)
	require.NoError(t, err)
	return v
}

var errUnavailable = errors.New("service unavailable")
