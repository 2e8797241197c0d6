package placeorder

import (
	"fmt"
	"strings"

	"order-taking-system/models"
)

// ValidateOrder binds the lookups and returns the validation step. The first
// invalid field aborts validation.
func ValidateOrder(
	checkProductCodeExists CheckProductCodeExists,
	checkAddressExists CheckAddressExists,
) func(models.UnvalidatedOrder) (models.ValidatedOrder, error) {
	return func(order models.UnvalidatedOrder) (models.ValidatedOrder, error) {
		orderID, err := models.NewOrderID("orderId", order.OrderID)
		if err != nil {
			return models.ValidatedOrder{}, err
		}

		customerInfo, err := toCustomerInfo(order.CustomerInfo)
		if err != nil {
			return models.ValidatedOrder{}, err
		}

		shippingAddress, err := toAddress(checkAddressExists, "shippingAddress", order.ShippingAddress)
		if err != nil {
			return models.ValidatedOrder{}, err
		}

		billingAddress, err := toAddress(checkAddressExists, "billingAddress", order.BillingAddress)
		if err != nil {
			return models.ValidatedOrder{}, err
		}

		lines := make([]models.ValidatedOrderLine, 0, len(order.Lines))
		for i, line := range order.Lines {
			validated, err := toValidatedOrderLine(checkProductCodeExists, fmt.Sprintf("lines[%d]", i), line)
			if err != nil {
				return models.ValidatedOrder{}, err
			}
			lines = append(lines, validated)
		}

		return models.ValidatedOrder{
			OrderID:         orderID,
			CustomerInfo:    customerInfo,
			ShippingAddress: shippingAddress,
			BillingAddress:  billingAddress,
			Lines:           lines,
		}, nil
	}
}

func toCustomerInfo(customer models.UnvalidatedCustomerInfo) (models.CustomerInfo, error) {
	firstName, err := models.NewString50("customerInfo.firstName", customer.FirstName)
	if err != nil {
		return models.CustomerInfo{}, err
	}
	lastName, err := models.NewString50("customerInfo.lastName", customer.LastName)
	if err != nil {
		return models.CustomerInfo{}, err
	}
	emailAddress, err := models.NewEmailAddress("customerInfo.emailAddress", customer.EmailAddress)
	if err != nil {
		return models.CustomerInfo{}, err
	}

	return models.CustomerInfo{
		Name:         models.PersonalName{FirstName: firstName, LastName: lastName},
		EmailAddress: emailAddress,
	}, nil
}

func toAddress(checkAddressExists CheckAddressExists, field string, address models.UnvalidatedAddress) (models.Address, error) {
	checked, err := checkAddressExists(address)
	if err != nil {
		return models.Address{}, serviceError(ServiceAddressVerification, err)
	}

	line1, err := models.NewString50(field+".addressLine1", checked.AddressLine1)
	if err != nil {
		return models.Address{}, err
	}
	line2, err := toOptionalString50(field+".addressLine2", checked.AddressLine2)
	if err != nil {
		return models.Address{}, err
	}
	line3, err := toOptionalString50(field+".addressLine3", checked.AddressLine3)
	if err != nil {
		return models.Address{}, err
	}
	line4, err := toOptionalString50(field+".addressLine4", checked.AddressLine4)
	if err != nil {
		return models.Address{}, err
	}
	city, err := models.NewString50(field+".city", checked.City)
	if err != nil {
		return models.Address{}, err
	}
	zipCode, err := models.NewZipCode(field+".zipCode", checked.ZipCode)
	if err != nil {
		return models.Address{}, err
	}

	return models.Address{
		AddressLine1: line1,
		AddressLine2: line2,
		AddressLine3: line3,
		AddressLine4: line4,
		City:         city,
		ZipCode:      zipCode,
	}, nil
}

// toOptionalString50 treats a missing or blank line as absent.
func toOptionalString50(field string, s *string) (models.Option[models.String50], error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return models.None[models.String50](), nil
	}
	v, err := models.NewString50(field, *s)
	if err != nil {
		return models.None[models.String50](), err
	}
	return models.Some(v), nil
}

func toProductCode(checkProductCodeExists CheckProductCodeExists, field, raw string) (models.ProductCode, error) {
	code, err := models.NewProductCode(field, raw)
	if err != nil {
		return models.ProductCode{}, err
	}

	exists, err := checkProductCodeExists(code)
	if err != nil {
		return models.ProductCode{}, serviceError(ServiceProductCatalog, err)
	}
	if !exists {
		return models.ProductCode{}, &models.ValidationError{
			Field: field,
			Msg:   fmt.Sprintf("Invalid: %s", code),
			Err:   models.ErrProductNotFound,
		}
	}
	return code, nil
}

func toValidatedOrderLine(checkProductCodeExists CheckProductCodeExists, field string, line models.UnvalidatedOrderLine) (models.ValidatedOrderLine, error) {
	orderLineID, err := models.NewOrderLineID(field+".orderLineId", line.OrderLineID)
	if err != nil {
		return models.ValidatedOrderLine{}, err
	}
	productCode, err := toProductCode(checkProductCodeExists, field+".productCode", line.ProductCode)
	if err != nil {
		return models.ValidatedOrderLine{}, err
	}
	quantity, err := models.NewOrderQuantity(field+".quantity", productCode, line.Quantity)
	if err != nil {
		return models.ValidatedOrderLine{}, err
	}

	return models.ValidatedOrderLine{
		OrderLineID: orderLineID,
		ProductCode: productCode,
		Quantity:    quantity,
	}, nil
}
