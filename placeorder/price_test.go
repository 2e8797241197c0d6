package placeorder

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-taking-system/models"
)

func TestPriceOrder(t *testing.T) {
	order := sampleOrder()
	order.Lines = []models.UnvalidatedOrderLine{
		{OrderLineID: "1", ProductCode: "W1234", Quantity: 3},
		{OrderLineID: "2", ProductCode: "G123", Quantity: 2.5},
	}
	v := validated(t, order)

	prices := map[string]string{"W1234": "10", "G123": "4.20"}
	lookup := func(code models.ProductCode) (models.Price, error) {
		return models.MustPrice(decimal.RequireFromString(prices[code.String()])), nil
	}

	priced, err := PriceOrder(lookup)(v)
	require.NoError(t, err)
	require.Len(t, priced.Lines, 2)

	assert.Equal(t, "1", priced.Lines[0].OrderLineID.String())
	assert.True(t, priced.Lines[0].LinePrice.Value().Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "2", priced.Lines[1].OrderLineID.String())
	assert.True(t, priced.Lines[1].LinePrice.Value().Equal(decimal.RequireFromString("10.5")))
	assert.True(t, priced.AmountToBill.Value().Equal(decimal.RequireFromString("40.5")))

	assert.Equal(t, v.OrderID, priced.OrderID)
	assert.Equal(t, v.CustomerInfo, priced.CustomerInfo)
	assert.Equal(t, v.BillingAddress, priced.BillingAddress)
}

func TestPriceOrderIsIdempotent(t *testing.T) {
	v := validated(t, sampleOrder())
	price := PriceOrder(fixedPrice("19.99"))

	first, err := price(v)
	require.NoError(t, err)
	second, err := price(v)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPriceOrderAmountIsSumOfLines(t *testing.T) {
	base := sampleOrder()
	base.Lines = []models.UnvalidatedOrderLine{
		{OrderLineID: "1", ProductCode: "W1111", Quantity: 2},
		{OrderLineID: "2", ProductCode: "W2222", Quantity: 5},
	}
	price := PriceOrder(fixedPrice("7.25"))

	before, err := price(validated(t, base))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, line := range before.Lines {
		sum = sum.Add(line.LinePrice.Value())
	}
	assert.True(t, before.AmountToBill.Value().Equal(sum))

	changed := sampleOrder()
	changed.Lines = []models.UnvalidatedOrderLine{
		{OrderLineID: "1", ProductCode: "W1111", Quantity: 2},
		{OrderLineID: "2", ProductCode: "W2222", Quantity: 9},
	}
	after, err := price(validated(t, changed))
	require.NoError(t, err)

	delta := after.AmountToBill.Value().Sub(before.AmountToBill.Value())
	assert.True(t, delta.Equal(decimal.RequireFromString("7.25").Mul(decimal.NewFromInt(4))), "delta was %s", delta)
}

func TestPriceOrderBounds(t *testing.T) {
	t.Run("line price too large", func(t *testing.T) {
		order := sampleOrder()
		order.Lines[0].Quantity = 2
		_, err := PriceOrder(fixedPrice("600"))(validated(t, order))
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindPricing))
		assert.ErrorIs(t, err, models.ErrOutOfRange)
		assert.Contains(t, err.Error(), "line 123")
	})

	t.Run("order total too large", func(t *testing.T) {
		order := sampleOrder()
		order.Lines = nil
		for i := 0; i < 11; i++ {
			order.Lines = append(order.Lines, models.UnvalidatedOrderLine{OrderLineID: "l", ProductCode: "W1234", Quantity: 1})
		}
		_, err := PriceOrder(fixedPrice("1000"))(validated(t, order))
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindPricing))
		assert.Contains(t, err.Error(), "amount to bill")
	})

	t.Run("stored price out of range", func(t *testing.T) {
		outOfRange := func(models.ProductCode) (models.Price, error) {
			return models.NewPrice(decimal.NewFromInt(5000))
		}
		_, err := PriceOrder(outOfRange)(validated(t, sampleOrder()))
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindPricing))
		assert.False(t, models.IsKind(err, models.KindValidation))
		assert.ErrorIs(t, err, models.ErrOutOfRange)
		assert.Contains(t, err.Error(), "W1234")
	})

	t.Run("price list down", func(t *testing.T) {
		failing := func(models.ProductCode) (models.Price, error) { return models.Price{}, errUnavailable }
		_, err := PriceOrder(failing)(validated(t, sampleOrder()))
		require.Error(t, err)
		assert.True(t, models.IsKind(err, models.KindRemoteService))
		assert.Contains(t, err.Error(), ServicePriceList)
	})
}
