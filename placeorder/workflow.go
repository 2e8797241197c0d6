package placeorder

import (
	"fmt"

	"order-taking-system/models"
)

// Dependencies are the collaborators of the workflow, bound once.
type Dependencies struct {
	CheckProductCodeExists CheckProductCodeExists
	CheckAddressExists     CheckAddressExists
	GetProductPrice        GetProductPrice
	CreateLetter           CreateOrderAcknowledgmentLetter
	SendAcknowledgment     SendOrderAcknowledgment
}

func (d Dependencies) validate() error {
	missing := []struct {
		name  string
		isNil bool
	}{
		{"CheckProductCodeExists", d.CheckProductCodeExists == nil},
		{"CheckAddressExists", d.CheckAddressExists == nil},
		{"GetProductPrice", d.GetProductPrice == nil},
		{"CreateLetter", d.CreateLetter == nil},
		{"SendAcknowledgment", d.SendAcknowledgment == nil},
	}
	for _, m := range missing {
		if m.isNil {
			return fmt.Errorf("%w: %s", models.ErrMissingDependency, m.name)
		}
	}
	return nil
}

// Workflow is the place-order workflow with its collaborators bound.
type Workflow struct {
	validate    func(models.UnvalidatedOrder) (models.ValidatedOrder, error)
	price       func(models.ValidatedOrder) (models.PricedOrder, error)
	acknowledge func(models.PricedOrder) models.Option[models.OrderAcknowledgmentSent]
}

// New binds deps into a Workflow. Every collaborator is required.
func New(deps Dependencies) (*Workflow, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Workflow{
		validate:    ValidateOrder(deps.CheckProductCodeExists, deps.CheckAddressExists),
		price:       PriceOrder(deps.GetProductPrice),
		acknowledge: AcknowledgeOrder(deps.CreateLetter, deps.SendAcknowledgment),
	}, nil
}

// Validate runs the validation step alone.
func (w *Workflow) Validate(order models.UnvalidatedOrder) (models.ValidatedOrder, error) {
	return w.validate(order)
}

// Price runs the pricing step alone.
func (w *Workflow) Price(order models.ValidatedOrder) (models.PricedOrder, error) {
	return w.price(order)
}

// Acknowledge runs the acknowledgment step alone.
func (w *Workflow) Acknowledge(order models.PricedOrder) models.Option[models.OrderAcknowledgmentSent] {
	return w.acknowledge(order)
}

// PlaceOrder runs validate, price, acknowledge and create events in order.
func (w *Workflow) PlaceOrder(order models.UnvalidatedOrder) (models.PlaceOrderEvents, error) {
	validated, err := w.validate(order)
	if err != nil {
		return nil, err
	}
	priced, err := w.price(validated)
	if err != nil {
		return nil, err
	}
	acknowledgment := w.acknowledge(priced)
	return CreateEvents(priced, acknowledgment), nil
}

// PlaceOrder binds the five collaborators and returns the workflow as a
// single function.
func PlaceOrder(
	checkProductCodeExists CheckProductCodeExists,
	checkAddressExists CheckAddressExists,
	getProductPrice GetProductPrice,
	createLetter CreateOrderAcknowledgmentLetter,
	sendAcknowledgment SendOrderAcknowledgment,
) func(models.UnvalidatedOrder) (models.PlaceOrderEvents, error) {
	w, err := New(Dependencies{
		CheckProductCodeExists: checkProductCodeExists,
		CheckAddressExists:     checkAddressExists,
		GetProductPrice:        getProductPrice,
		CreateLetter:           createLetter,
		SendAcknowledgment:     sendAcknowledgment,
	})
	if err != nil {
		return func(models.UnvalidatedOrder) (models.PlaceOrderEvents, error) { return nil, err }
	}
	return w.PlaceOrder
}
