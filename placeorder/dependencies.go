package placeorder

import (
	"errors"

	"order-taking-system/models"
)

// Collaborator names used in RemoteServiceError.
const (
	ServiceProductCatalog      = "product-catalog"
	ServiceAddressVerification = "address-verification"
	ServicePriceList           = "price-list"
)

// CheckProductCodeExists reports whether the catalog knows the product.
type CheckProductCodeExists func(models.ProductCode) (bool, error)

// CheckAddressExists normalises an address or fails when it does not exist.
type CheckAddressExists func(models.UnvalidatedAddress) (models.CheckedAddress, error)

// GetProductPrice looks up the unit price of a product.
type GetProductPrice func(models.ProductCode) (models.Price, error)

// CreateOrderAcknowledgmentLetter renders the letter sent to the customer.
type CreateOrderAcknowledgmentLetter func(models.PricedOrder) models.HTMLString

// SendOrderAcknowledgment posts the letter. It reports failure as NotSent.
type SendOrderAcknowledgment func(models.OrderAcknowledgment) models.SendResult

// serviceError keeps domain errors returned by a collaborator as they are and
// wraps anything else as a RemoteServiceError of the named service.
func serviceError(service string, err error) error {
	var pe models.PlaceOrderError
	if errors.As(err, &pe) {
		return pe
	}
	return &models.RemoteServiceError{
		Service: models.ServiceInfo{Name: service},
		Err:     err,
	}
}
