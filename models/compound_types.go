package models

// Compound records built only from validated primitives. None of them is
// mutated once built; each pipeline stage produces a new record.

type PersonalName struct {
	FirstName String50 `json:"firstName"`
	LastName  String50 `json:"lastName"`
}

type CustomerInfo struct {
	Name         PersonalName `json:"name"`
	EmailAddress EmailAddress `json:"emailAddress"`
}

// Address has one required line and up to three optional ones.
type Address struct {
	AddressLine1 String50         `json:"addressLine1"`
	AddressLine2 Option[String50] `json:"addressLine2"`
	AddressLine3 Option[String50] `json:"addressLine3"`
	AddressLine4 Option[String50] `json:"addressLine4"`
	City         String50         `json:"city"`
	ZipCode      ZipCode          `json:"zipCode"`
}

// Lines returns the populated address lines in order.
func (a Address) Lines() []String50 {
	lines := []String50{a.AddressLine1}
	lines = append(lines, a.AddressLine2.ToSlice()...)
	lines = append(lines, a.AddressLine3.ToSlice()...)
	lines = append(lines, a.AddressLine4.ToSlice()...)
	return lines
}

type ValidatedOrderLine struct {
	OrderLineID OrderLineID   `json:"orderLineId"`
	ProductCode ProductCode   `json:"productCode"`
	Quantity    OrderQuantity `json:"quantity"`
}

type ValidatedOrder struct {
	OrderID         OrderID              `json:"orderId"`
	CustomerInfo    CustomerInfo         `json:"customerInfo"`
	ShippingAddress Address              `json:"shippingAddress"`
	BillingAddress  Address              `json:"billingAddress"`
	Lines           []ValidatedOrderLine `json:"lines"`
}

type PricedOrderLine struct {
	OrderLineID OrderLineID   `json:"orderLineId"`
	ProductCode ProductCode   `json:"productCode"`
	Quantity    OrderQuantity `json:"quantity"`
	LinePrice   Price         `json:"linePrice"`
}

type PricedOrder struct {
	OrderID         OrderID           `json:"orderId"`
	CustomerInfo    CustomerInfo      `json:"customerInfo"`
	ShippingAddress Address           `json:"shippingAddress"`
	BillingAddress  Address           `json:"billingAddress"`
	AmountToBill    BillingAmount     `json:"amountToBill"`
	Lines           []PricedOrderLine `json:"lines"`
}
