package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"order-taking-system/activities"
	"order-taking-system/letter"
	"order-taking-system/models"
	"order-taking-system/placeorder"
)

const (
	QueryState = "state"

	// ServiceEventBus names the event publisher in remote service errors.
	ServiceEventBus = "event-bus"
)

// PlaceOrderWorkflow validates, prices and acknowledges an order, publishes
// the resulting events and bills the order through a child workflow.
func PlaceOrderWorkflow(ctx workflow.Context, cmd models.PlaceOrderCommand) (models.PlaceOrderResult, error) {
	logger := workflow.GetLogger(ctx)
	order := cmd.Data
	logger.Info("PlaceOrderWorkflow started", "order_id", order.OrderID, "user_id", cmd.UserID)

	state := models.WorkflowState{
		OrderID:     order.OrderID,
		Status:      models.OrderStatusPending,
		LastUpdated: workflow.Now(ctx),
	}

	err := workflow.SetQueryHandler(ctx, QueryState, func() (models.WorkflowState, error) {
		return state, nil
	})
	if err != nil {
		return models.PlaceOrderResult{}, fmt.Errorf("failed to set query handler: %w", err)
	}

	// Version handling for backward compatibility
	v := workflow.GetVersion(ctx, "add-billing-workflow", workflow.DefaultVersion, 1)

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var act *activities.Activities

	fail := func(err error) (models.PlaceOrderResult, error) {
		kind, wfErr := failure(err)
		logger.Error("Order failed", "order_id", order.OrderID, "kind", kind, "error", err)
		state.Status = models.OrderStatusFailed
		state.FailureKind = kind
		state.FailureMessage = err.Error()
		state.LastUpdated = workflow.Now(ctx)
		return models.PlaceOrderResult{}, wfErr
	}

	pipeline, err := placeorder.New(placeorder.Dependencies{
		CheckProductCodeExists: func(code models.ProductCode) (bool, error) {
			var exists bool
			err := workflow.ExecuteActivity(ctx, act.CheckProductCodeExists, code).Get(ctx, &exists)
			return exists, err
		},
		CheckAddressExists: func(address models.UnvalidatedAddress) (models.CheckedAddress, error) {
			var checked models.CheckedAddress
			err := workflow.ExecuteActivity(ctx, act.CheckAddressExists, address).Get(ctx, &checked)
			if err != nil {
				return models.CheckedAddress{}, addressError(err, address)
			}
			return checked, nil
		},
		GetProductPrice: func(code models.ProductCode) (models.Price, error) {
			var price models.Price
			err := workflow.ExecuteActivity(ctx, act.GetProductPrice, code).Get(ctx, &price)
			if err != nil {
				return models.Price{}, priceError(err, code)
			}
			return price, nil
		},
		CreateLetter: func(priced models.PricedOrder) models.HTMLString {
			var html models.HTMLString
			if err := workflow.ExecuteActivity(ctx, act.CreateAcknowledgmentLetter, priced).Get(ctx, &html); err != nil {
				logger.Warn("Letter rendering failed, using fallback", "order_id", order.OrderID, "error", err)
				return letter.Fallback(priced)
			}
			return html
		},
		SendAcknowledgment: func(ack models.OrderAcknowledgment) models.SendResult {
			var result models.SendResult
			if err := workflow.ExecuteActivity(ctx, act.SendAcknowledgment, ack).Get(ctx, &result); err != nil {
				logger.Warn("Failed to send acknowledgment", "order_id", order.OrderID, "error", err)
				return models.NotSent
			}
			if result != models.Sent {
				return models.NotSent
			}
			return result
		},
	})
	if err != nil {
		return fail(err)
	}

	// Step 1: Validate
	validated, err := pipeline.Validate(order)
	if err != nil {
		return fail(err)
	}
	state.ValidationDone = true
	state.Status = models.OrderStatusValidated
	state.LastUpdated = workflow.Now(ctx)
	logger.Info("Order validated", "order_id", order.OrderID, "lines", len(validated.Lines))

	// Step 2: Price
	priced, err := pipeline.Price(validated)
	if err != nil {
		return fail(err)
	}
	state.PricingDone = true
	state.Status = models.OrderStatusPriced
	state.AmountToBill = priced.AmountToBill.String()
	state.LastUpdated = workflow.Now(ctx)
	logger.Info("Order priced", "order_id", order.OrderID, "amount_to_bill", state.AmountToBill)

	// Step 3: Acknowledge. A failed send does not fail the order.
	acknowledgment := pipeline.Acknowledge(priced)
	if acknowledgment.IsSome() {
		state.AcknowledgmentSent = true
		state.Status = models.OrderStatusAcknowledged
		state.LastUpdated = workflow.Now(ctx)
	}

	// Step 4: Create and publish events
	events := placeorder.CreateEvents(priced, acknowledgment)
	if err := workflow.ExecuteActivity(ctx, act.PublishEvents, events).Get(ctx, nil); err != nil {
		return fail(&models.RemoteServiceError{
			Service: models.ServiceInfo{Name: ServiceEventBus},
			Err:     err,
		})
	}
	state.EventsPublished = true
	state.Status = models.OrderStatusPlaced
	state.LastUpdated = workflow.Now(ctx)

	result := models.PlaceOrderResult{OrderID: order.OrderID, Events: events}

	// Step 5: Bill (child workflow). The order is already placed, so a billing
	// failure is logged and left to the billing context.
	billable, ok := events.BillableOrder().Get()
	if v >= 1 && ok {
		childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
			WorkflowID:               fmt.Sprintf("billing-%s", order.OrderID),
			WorkflowExecutionTimeout: 2 * time.Minute,
		})

		var invoice models.UnpaidInvoice
		err = workflow.ExecuteChildWorkflow(childCtx, BillingWorkflow, billable).Get(ctx, &invoice)
		if err != nil {
			logger.Error("Billing failed", "order_id", order.OrderID, "error", err)
		} else {
			result.InvoiceID = invoice.InvoiceID
			state.InvoiceID = invoice.InvoiceID
			state.Status = models.OrderStatusBilled
			state.LastUpdated = workflow.Now(ctx)
		}
	}

	logger.Info("PlaceOrderWorkflow completed", "order_id", order.OrderID, "events", len(events))
	return result, nil
}
