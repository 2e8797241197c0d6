package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification of constraint violations.
var (
	ErrEmpty             = errors.New("must not be empty")
	ErrTooLong           = errors.New("too long")
	ErrOutOfRange        = errors.New("out of range")
	ErrPattern           = errors.New("does not match pattern")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrNotInteger        = errors.New("not an integer")
	ErrProductCodeShape  = errors.New("unrecognized product code")
	ErrProductNotFound   = errors.New("product not found")
	ErrAddressNotFound   = errors.New("address not found")
	ErrMissingDependency = errors.New("missing dependency")
)

// ErrorKind is the coarse category of a PlaceOrderError.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindPricing       ErrorKind = "pricing"
	KindRemoteService ErrorKind = "remote_service"
)

// PlaceOrderError is implemented by ValidationError, PricingError and
// RemoteServiceError only.
type PlaceOrderError interface {
	error
	Kind() ErrorKind
	placeOrderError()
}

// ValidationError reports the first field of an order that failed its
// constraint.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field == "" {
		return "validation error: " + e.Msg
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ValidationError) Kind() ErrorKind { return KindValidation }
func (e *ValidationError) placeOrderError() {}

// PricingError reports a line price or order total outside its bounds.
type PricingError struct {
	Msg string
	Err error
}

func (e *PricingError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "pricing error: " + e.Msg
}

func (e *PricingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *PricingError) Kind() ErrorKind { return KindPricing }
func (e *PricingError) placeOrderError() {}

// ServiceInfo names the remote collaborator behind a RemoteServiceError.
type ServiceInfo struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint,omitempty"`
}

func (s ServiceInfo) String() string {
	if s.Endpoint == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.Endpoint)
}

// RemoteServiceError wraps a transport failure of a collaborator.
type RemoteServiceError struct {
	Service ServiceInfo
	Err     error
}

func (e *RemoteServiceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := "remote service error: " + e.Service.String()
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *RemoteServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RemoteServiceError) Kind() ErrorKind { return KindRemoteService }
func (e *RemoteServiceError) placeOrderError() {}

// IsKind reports whether err is a PlaceOrderError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe PlaceOrderError
	if errors.As(err, &pe) {
		return pe.Kind() == kind
	}
	return false
}

func newValidationError(field string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field: field,
		Msg:   fmt.Sprintf(format, args...),
		Err:   err,
	}
}
