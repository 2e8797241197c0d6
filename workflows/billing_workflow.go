package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"order-taking-system/activities"
	"order-taking-system/models"
)

// BillingWorkflow is a child workflow that raises and issues the invoice for
// a billable order.
func BillingWorkflow(ctx workflow.Context, billable models.BillableOrderPlaced) (models.UnpaidInvoice, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("BillingWorkflow started", "order_id", billable.OrderID.String(), "amount", billable.AmountToBill.String())

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 20 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var billingAct *activities.BillingActivities

	// Step 1: Create the invoice
	var invoice models.UnpaidInvoice
	err := workflow.ExecuteActivity(ctx, billingAct.CreateInvoice, billable).Get(ctx, &invoice)
	if err != nil {
		logger.Error("Invoice creation failed", "order_id", billable.OrderID.String(), "error", err)
		return models.UnpaidInvoice{}, fmt.Errorf("invoice creation failed: %w", err)
	}

	// Step 2: Issue it
	err = workflow.ExecuteActivity(ctx, billingAct.IssueInvoice, invoice).Get(ctx, nil)
	if err != nil {
		logger.Error("Invoice issue failed", "invoice_id", invoice.InvoiceID, "error", err)

		voidCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 10 * time.Second,
		})
		_ = workflow.ExecuteActivity(voidCtx, billingAct.VoidInvoice, invoice).Get(ctx, nil)

		return models.UnpaidInvoice{}, fmt.Errorf("invoice issue failed: %w", err)
	}

	logger.Info("Invoice issued", "order_id", billable.OrderID.String(), "invoice_id", invoice.InvoiceID)
	return invoice, nil
}
