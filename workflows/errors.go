package workflows

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"order-taking-system/activities"
	"order-taking-system/models"
)

// addressError turns an AddressNotFound activity failure back into a
// validation error. Other failures are returned unchanged and end up as
// remote service errors.
func addressError(err error, address models.UnvalidatedAddress) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() == activities.ErrTypeAddressNotFound {
		return &models.ValidationError{
			Msg: fmt.Sprintf("address not found: %s, %s %s", address.AddressLine1, address.City, address.ZipCode),
			Err: models.ErrAddressNotFound,
		}
	}
	return err
}

// priceError turns ProductNotFound and InvalidPrice activity failures into
// pricing errors.
func priceError(err error, code models.ProductCode) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case activities.ErrTypeProductNotFound:
		return &models.PricingError{
			Msg: fmt.Sprintf("no price for product %s", code),
			Err: models.ErrProductNotFound,
		}
	case activities.ErrTypeInvalidPrice:
		return &models.PricingError{
			Msg: fmt.Sprintf("price of product %s is out of range", code),
			Err: models.ErrOutOfRange,
		}
	}
	return err
}

// failure is the non-retryable workflow error for a place-order failure. Its
// type is the error kind.
func failure(err error) (models.ErrorKind, error) {
	kind := models.KindRemoteService
	var pe models.PlaceOrderError
	if errors.As(err, &pe) {
		kind = pe.Kind()
	}
	return kind, temporal.NewNonRetryableApplicationError(err.Error(), string(kind), nil)
}
