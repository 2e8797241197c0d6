// Package placeorder implements the place-order workflow as a pipeline of
// pure stages: validation, pricing, acknowledgment and event creation.
//
// Every side effect is a collaborator function supplied by the caller:
//
//	w, err := placeorder.New(placeorder.Dependencies{
//	    CheckProductCodeExists: catalog.Exists,
//	    CheckAddressExists:     addresses.Check,
//	    GetProductPrice:        catalog.Price,
//	    CreateLetter:           letters.CreateLetter,
//	    SendAcknowledgment:     mailer.Send,
//	})
//	events, err := w.PlaceOrder(unvalidatedOrder)
//
// Validation and pricing fail fast with a models.PlaceOrderError. A failed
// acknowledgment only omits the OrderAcknowledgmentSent event.
//
// The package holds no state between calls, so a Workflow may be shared
// between goroutines as long as its collaborators allow it.
package placeorder
