package models

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Constrained primitive types of the order-taking domain.
//
// Each type wraps an unexported value, so outside this package the only way
// to obtain one is its constructor. JSON decoding goes through the same
// constructor. The zero value of every type is invalid.

const (
	// MaxString50Length is the upper bound of a String50, in characters.
	MaxString50Length = 50
	// MaxIDLength bounds OrderID and OrderLineID.
	MaxIDLength = 50
)

var (
	widgetCodePattern = regexp.MustCompile(`^W\d{4}$`)
	gizmoCodePattern  = regexp.MustCompile(`^G\d{3}$`)

	minUnitQuantity     = 1
	maxUnitQuantity     = 1000
	minKilogramQuantity = decimal.RequireFromString("0.05")
	maxKilogramQuantity = decimal.RequireFromString("100.00")
	maxPrice            = decimal.NewFromInt(1000)
	maxBillingAmount    = decimal.NewFromInt(10000)
)

func checkBoundedString(field, s string, maxLen int) error {
	if s == "" {
		return newValidationError(field, ErrEmpty, "must not be empty")
	}
	if n := utf8.RuneCountInString(s); n > maxLen {
		return newValidationError(field, ErrTooLong, "must be at most %d characters, got %d", maxLen, n)
	}
	return nil
}

func unmarshalString[T any](data []byte, parse func(string) (T, error), dst *T) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := parse(raw)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// String50 is a non-empty string of at most 50 characters.
type String50 struct{ value string }

// NewString50 builds a non-empty string of at most 50 characters. field
// names the input in the error.
func NewString50(field, s string) (String50, error) {
	if err := checkBoundedString(field, s, MaxString50Length); err != nil {
		return String50{}, err
	}
	return String50{value: s}, nil
}

func (s String50) String() string { return s.value }

func (s String50) MarshalJSON() ([]byte, error) { return json.Marshal(s.value) }

func (s *String50) UnmarshalJSON(data []byte) error {
	return unmarshalString(data, func(v string) (String50, error) { return NewString50("", v) }, s)
}

// EmailAddress is a bare RFC 5322 addr-spec such as "a@example.com".
type EmailAddress struct{ value string }

// NewEmailAddress builds an email address from a bare addr-spec.
func NewEmailAddress(field, s string) (EmailAddress, error) {
	if s == "" {
		return EmailAddress{}, newValidationError(field, ErrEmpty, "must not be empty")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s, "@") {
		return EmailAddress{}, newValidationError(field, ErrInvalidEmail, "%q is not a valid email address", s)
	}
	return EmailAddress{value: s}, nil
}

func (e EmailAddress) String() string { return e.value }

func (e EmailAddress) MarshalJSON() ([]byte, error) { return json.Marshal(e.value) }

func (e *EmailAddress) UnmarshalJSON(data []byte) error {
	return unmarshalString(data, func(v string) (EmailAddress, error) { return NewEmailAddress("", v) }, e)
}

// ZipCode carries no constraint beyond being a string.
type ZipCode struct{ value string }

// NewZipCode accepts any string.
func NewZipCode(_ string, s string) (ZipCode, error) {
	return ZipCode{value: s}, nil
}

func (z ZipCode) String() string { return z.value }

func (z ZipCode) MarshalJSON() ([]byte, error) { return json.Marshal(z.value) }

func (z *ZipCode) UnmarshalJSON(data []byte) error {
	return unmarshalString(data, func(v string) (ZipCode, error) { return NewZipCode("", v) }, z)
}

// OrderID identifies an order.
type OrderID struct{ value string }

// NewOrderID builds a non-empty order id of at most 50 characters.
func NewOrderID(field, s string) (OrderID, error) {
	if err := checkBoundedString(field, s, MaxIDLength); err != nil {
		return OrderID{}, err
	}
	return OrderID{value: s}, nil
}

func (id OrderID) String() string { return id.value }

func (id OrderID) MarshalJSON() ([]byte, error) { return json.Marshal(id.value) }

func (id *OrderID) UnmarshalJSON(data []byte) error {
	return unmarshalString(data, func(v string) (OrderID, error) { return NewOrderID("", v) }, id)
}

// OrderLineID identifies a line within an order.
type OrderLineID struct{ value string }

// NewOrderLineID builds a non-empty order line id of at most 50 characters.
func NewOrderLineID(field, s string) (OrderLineID, error) {
	if err := checkBoundedString(field, s, MaxIDLength); err != nil {
		return OrderLineID{}, err
	}
	return OrderLineID{value: s}, nil
}

func (id OrderLineID) String() string { return id.value }

func (id OrderLineID) MarshalJSON() ([]byte, error) { return json.Marshal(id.value) }

func (id *OrderLineID) UnmarshalJSON(data []byte) error {
	return unmarshalString(data, func(v string) (OrderLineID, error) { return NewOrderLineID("", v) }, id)
}

// WidgetCode is "W" followed by four digits.
type WidgetCode struct{ value string }

// NewWidgetCode builds a widget code of the form "W" plus four digits.
func NewWidgetCode(field, s string) (WidgetCode, error) {
	if !widgetCodePattern.MatchString(s) {
		return WidgetCode{}, newValidationError(field, ErrPattern, "%q does not match %s", s, widgetCodePattern)
	}
	return WidgetCode{value: s}, nil
}

func (w WidgetCode) String() string { return w.value }

// GizmoCode is "G" followed by three digits.
type GizmoCode struct{ value string }

// NewGizmoCode builds a gizmo code of the form "G" plus three digits.
func NewGizmoCode(field, s string) (GizmoCode, error) {
	if !gizmoCodePattern.MatchString(s) {
		return GizmoCode{}, newValidationError(field, ErrPattern, "%q does not match %s", s, gizmoCodePattern)
	}
	return GizmoCode{value: s}, nil
}

func (g GizmoCode) String() string { return g.value }

// ProductKind tells which case of ProductCode is populated.
type ProductKind string

const (
	ProductWidget ProductKind = "Widget"
	ProductGizmo  ProductKind = "Gizmo"
)

// ProductCode is either a WidgetCode or a GizmoCode.
type ProductCode struct {
	kind   ProductKind
	widget WidgetCode
	gizmo  GizmoCode
}

// NewProductCode matches s against the widget and gizmo shapes. A string
// matching neither fails with ErrProductCodeShape.
func NewProductCode(field, s string) (ProductCode, error) {
	if w, err := NewWidgetCode(field, s); err == nil {
		return ProductCodeFromWidget(w), nil
	}
	if g, err := NewGizmoCode(field, s); err == nil {
		return ProductCodeFromGizmo(g), nil
	}
	return ProductCode{}, newValidationError(field, ErrProductCodeShape, "%q is neither a widget code nor a gizmo code", s)
}

// ProductCodeFromWidget wraps a widget code as a product code.
func ProductCodeFromWidget(w WidgetCode) ProductCode {
	return ProductCode{kind: ProductWidget, widget: w}
}

// ProductCodeFromGizmo wraps a gizmo code as a product code.
func ProductCodeFromGizmo(g GizmoCode) ProductCode {
	return ProductCode{kind: ProductGizmo, gizmo: g}
}

// Kind reports whether the code is a widget or a gizmo.
func (p ProductCode) Kind() ProductKind { return p.kind }

// Widget returns the widget code, if the product is a widget.
func (p ProductCode) Widget() (WidgetCode, bool) { return p.widget, p.kind == ProductWidget }

// Gizmo returns the gizmo code, if the product is a gizmo.
func (p ProductCode) Gizmo() (GizmoCode, bool) { return p.gizmo, p.kind == ProductGizmo }

func (p ProductCode) String() string {
	switch p.kind {
	case ProductWidget:
		return p.widget.String()
	case ProductGizmo:
		return p.gizmo.String()
	default:
		return ""
	}
}

func (p ProductCode) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *ProductCode) UnmarshalJSON(data []byte) error {
	return unmarshalString(data, func(v string) (ProductCode, error) { return NewProductCode("", v) }, p)
}

// UnitQuantity is a whole number of units in [1, 1000].
type UnitQuantity struct{ value int }

// NewUnitQuantity builds a whole-unit quantity between 1 and 1000.
func NewUnitQuantity(field string, q int) (UnitQuantity, error) {
	if q < minUnitQuantity || q > maxUnitQuantity {
		return UnitQuantity{}, newValidationError(field, ErrOutOfRange, "unit quantity %d must be between %d and %d", q, minUnitQuantity, maxUnitQuantity)
	}
	return UnitQuantity{value: q}, nil
}

// Value returns the number of units.
func (u UnitQuantity) Value() int { return u.value }

// KilogramQuantity is a weight in [0.05, 100.00] kg.
type KilogramQuantity struct{ value decimal.Decimal }

// NewKilogramQuantity builds a weight between 0.05 and 100 kg.
func NewKilogramQuantity(field string, q decimal.Decimal) (KilogramQuantity, error) {
	if q.LessThan(minKilogramQuantity) || q.GreaterThan(maxKilogramQuantity) {
		return KilogramQuantity{}, newValidationError(field, ErrOutOfRange, "kilogram quantity %s must be between %s and %s", q, minKilogramQuantity.StringFixed(2), maxKilogramQuantity.StringFixed(2))
	}
	return KilogramQuantity{value: q}, nil
}

// Value returns the weight in kilograms.
func (k KilogramQuantity) Value() decimal.Decimal { return k.value }

// QuantityKind tells which case of OrderQuantity is populated.
type QuantityKind string

const (
	QuantityUnit     QuantityKind = "unit"
	QuantityKilogram QuantityKind = "kilogram"
)

// OrderQuantity is either a UnitQuantity or a KilogramQuantity.
type OrderQuantity struct {
	kind     QuantityKind
	unit     UnitQuantity
	kilogram KilogramQuantity
}

// NewOrderQuantity parses q into the quantity kind that matches the product:
// widgets are counted in units, gizmos are weighed in kilograms.
func NewOrderQuantity(field string, code ProductCode, q float64) (OrderQuantity, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return OrderQuantity{}, newValidationError(field, ErrOutOfRange, "quantity must be a finite number")
	}
	switch code.Kind() {
	case ProductWidget:
		if q != math.Trunc(q) {
			return OrderQuantity{}, newValidationError(field, ErrNotInteger, "unit quantity %v must be a whole number", q)
		}
		if q < float64(minUnitQuantity) || q > float64(maxUnitQuantity) {
			return OrderQuantity{}, newValidationError(field, ErrOutOfRange, "unit quantity %v must be between %d and %d", q, minUnitQuantity, maxUnitQuantity)
		}
		u, err := NewUnitQuantity(field, int(q))
		if err != nil {
			return OrderQuantity{}, err
		}
		return UnitOrderQuantity(u), nil
	case ProductGizmo:
		k, err := NewKilogramQuantity(field, decimal.NewFromFloat(q))
		if err != nil {
			return OrderQuantity{}, err
		}
		return KilogramOrderQuantity(k), nil
	default:
		return OrderQuantity{}, newValidationError(field, ErrProductCodeShape, "no quantity kind for product %q", code.String())
	}
}

// UnitOrderQuantity wraps a unit quantity as an order quantity.
func UnitOrderQuantity(u UnitQuantity) OrderQuantity {
	return OrderQuantity{kind: QuantityUnit, unit: u}
}

// KilogramOrderQuantity wraps a kilogram quantity as an order quantity.
func KilogramOrderQuantity(k KilogramQuantity) OrderQuantity {
	return OrderQuantity{kind: QuantityKilogram, kilogram: k}
}

// Kind reports whether the quantity is counted in units or kilograms.
func (q OrderQuantity) Kind() QuantityKind { return q.kind }

// Unit returns the unit quantity, if the quantity is in units.
func (q OrderQuantity) Unit() (UnitQuantity, bool) { return q.unit, q.kind == QuantityUnit }

// Kilogram returns the kilogram quantity, if the quantity is a weight.
func (q OrderQuantity) Kilogram() (KilogramQuantity, bool) { return q.kilogram, q.kind == QuantityKilogram }

// Value is the numeric quantity regardless of representation.
func (q OrderQuantity) Value() decimal.Decimal {
	switch q.kind {
	case QuantityUnit:
		return decimal.NewFromInt(int64(q.unit.value))
	case QuantityKilogram:
		return q.kilogram.value
	default:
		return decimal.Zero
	}
}

func (q OrderQuantity) String() string {
	switch q.kind {
	case QuantityUnit:
		return fmt.Sprintf("%d units", q.unit.value)
	case QuantityKilogram:
		return fmt.Sprintf("%s kg", q.kilogram.value)
	default:
		return ""
	}
}

type orderQuantityJSON struct {
	Kind  QuantityKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

func (q OrderQuantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderQuantityJSON{Kind: q.kind, Value: q.Value()})
}

func (q *OrderQuantity) UnmarshalJSON(data []byte) error {
	var raw orderQuantityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case QuantityUnit:
		if !raw.Value.IsInteger() {
			return newValidationError("quantity", ErrNotInteger, "unit quantity %s must be a whole number", raw.Value)
		}
		if raw.Value.LessThan(decimal.NewFromInt(int64(minUnitQuantity))) || raw.Value.GreaterThan(decimal.NewFromInt(int64(maxUnitQuantity))) {
			return newValidationError("quantity", ErrOutOfRange, "unit quantity %s must be between %d and %d", raw.Value, minUnitQuantity, maxUnitQuantity)
		}
		u, err := NewUnitQuantity("quantity", int(raw.Value.IntPart()))
		if err != nil {
			return err
		}
		*q = UnitOrderQuantity(u)
	case QuantityKilogram:
		k, err := NewKilogramQuantity("quantity", raw.Value)
		if err != nil {
			return err
		}
		*q = KilogramOrderQuantity(k)
	default:
		return newValidationError("quantity", ErrOutOfRange, "unknown quantity kind %q", raw.Kind)
	}
	return nil
}

// Price is a decimal in [0, 1000].
type Price struct{ value decimal.Decimal }

// NewPrice builds a price between 0 and 1000.
func NewPrice(d decimal.Decimal) (Price, error) {
	if d.IsNegative() || d.GreaterThan(maxPrice) {
		return Price{}, newValidationError("price", ErrOutOfRange, "price %s must be between 0 and %s", d, maxPrice)
	}
	return Price{value: d}, nil
}

// MustPrice is NewPrice for constants known to be in range; it panics
// otherwise.
func MustPrice(d decimal.Decimal) Price {
	p, err := NewPrice(d)
	if err != nil {
		panic(err)
	}
	return p
}

// Multiply returns price × quantity, still bounded as a Price.
func (p Price) Multiply(q OrderQuantity) (Price, error) {
	return NewPrice(p.value.Mul(q.Value()))
}

// Value returns the price as a decimal.
func (p Price) Value() decimal.Decimal { return p.value }

func (p Price) String() string { return p.value.String() }

func (p Price) MarshalJSON() ([]byte, error) { return []byte(p.value.String()), nil }

func (p *Price) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := NewPrice(d)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// BillingAmount is a decimal in [0, 10000].
type BillingAmount struct{ value decimal.Decimal }

// NewBillingAmount builds an order total between 0 and 10000.
func NewBillingAmount(d decimal.Decimal) (BillingAmount, error) {
	if d.IsNegative() || d.GreaterThan(maxBillingAmount) {
		return BillingAmount{}, newValidationError("amountToBill", ErrOutOfRange, "billing amount %s must be between 0 and %s", d, maxBillingAmount)
	}
	return BillingAmount{value: d}, nil
}

// SumPrices adds prices together as a BillingAmount.
func SumPrices(prices []Price) (BillingAmount, error) {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p.value)
	}
	return NewBillingAmount(total)
}

// Value returns the amount as a decimal.
func (b BillingAmount) Value() decimal.Decimal { return b.value }

// IsPositive reports whether there is anything to bill.
func (b BillingAmount) IsPositive() bool { return b.value.IsPositive() }

func (b BillingAmount) String() string { return b.value.String() }

func (b BillingAmount) MarshalJSON() ([]byte, error) { return []byte(b.value.String()), nil }

func (b *BillingAmount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := NewBillingAmount(d)
	if err != nil {
		return err
	}
	*b = v
	return nil
}
