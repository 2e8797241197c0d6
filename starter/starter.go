package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"order-taking-system/api"
	"order-taking-system/config"
	"order-taking-system/logging"
	"order-taking-system/models"
	"order-taking-system/temporalclient"
	"order-taking-system/workflows"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "starter",
		Short:        "Start and inspect place-order workflows",
		SilenceUsage: true,
	}
	cmd.AddCommand(placeCmd(), queryCmd())
	return cmd
}

// session loads config and dials Temporal for a subcommand.
func session() (config.Config, *slog.Logger, client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger := logging.New(os.Stderr, level, "starter")
	c, err := temporalclient.Dial(cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, c, nil
}

func placeCmd() *cobra.Command {
	var file, orderID, userID string
	var wait bool

	c := &cobra.Command{
		Use:   "place",
		Short: "Submit an order (a sample order when --file is omitted)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := loadOrder(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if orderID != "" {
				order.OrderID = orderID
			}

			cfg, logger, tc, err := session()
			if err != nil {
				return err
			}
			defer tc.Close()

			return startWorkflow(cmd.Context(), tc, cfg.TaskQueue, logger, cmd.OutOrStdout(), models.PlaceOrderCommand{
				Data:      order,
				Timestamp: time.Now().UTC(),
				UserID:    userID,
			}, wait)
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "Order JSON file (\"-\" for stdin)")
	c.Flags().StringVar(&orderID, "order-id", "", "Override the order id")
	c.Flags().StringVar(&userID, "user-id", "starter", "User submitting the order")
	c.Flags().BoolVar(&wait, "wait", true, "Wait for the workflow to complete")
	return c
}

func queryCmd() *cobra.Command {
	var orderID string

	c := &cobra.Command{
		Use:   "query",
		Short: "Print the state of an order's workflow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logger, tc, err := session()
			if err != nil {
				return err
			}
			defer tc.Close()

			workflowID := api.WorkflowID(orderID)
			logger.Info("Querying workflow state", "workflow_id", workflowID)

			resp, err := tc.QueryWorkflow(cmd.Context(), workflowID, "", workflows.QueryState)
			if err != nil {
				return fmt.Errorf("failed to query workflow: %w", err)
			}
			var state models.WorkflowState
			if err := resp.Get(&state); err != nil {
				return fmt.Errorf("failed to decode query result: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), state)
		},
	}

	c.Flags().StringVar(&orderID, "order-id", "", "Order id (required)")
	_ = c.MarkFlagRequired("order-id")
	return c
}

func startWorkflow(ctx context.Context, c client.Client, taskQueue string, logger *slog.Logger, out io.Writer, cmd models.PlaceOrderCommand, wait bool) error {
	workflowOptions := client.StartWorkflowOptions{
		ID:                    api.WorkflowID(cmd.Data.OrderID),
		TaskQueue:             taskQueue,
		WorkflowIDReusePolicy: api.WorkflowIDReusePolicy,
	}

	logger.Info("Starting workflow", "order_id", cmd.Data.OrderID, "workflow_id", workflowOptions.ID)

	we, err := c.ExecuteWorkflow(ctx, workflowOptions, workflows.PlaceOrderWorkflow, cmd)
	if err != nil {
		return fmt.Errorf("unable to execute workflow: %w", err)
	}
	logger.Info("Started workflow", "workflow_id", we.GetID(), "run_id", we.GetRunID())

	if !wait {
		return nil
	}

	var result models.PlaceOrderResult
	if err := we.Get(ctx, &result); err != nil {
		return fmt.Errorf("workflow completed with error: %w", err)
	}
	return printJSON(out, result)
}

// loadOrder reads an order from path, or from stdin for "-". An empty path
// yields the sample order.
func loadOrder(path string, stdin io.Reader) (models.UnvalidatedOrder, error) {
	var r io.Reader
	switch path {
	case "":
		return sampleOrder(uuid.New().String()), nil
	case "-":
		r = stdin
	default:
		f, err := os.Open(path)
		if err != nil {
			return models.UnvalidatedOrder{}, err
		}
		defer f.Close()
		r = f
	}

	var order models.UnvalidatedOrder
	if err := json.NewDecoder(r).Decode(&order); err != nil {
		return models.UnvalidatedOrder{}, fmt.Errorf("failed to decode order: %w", err)
	}
	return order, nil
}

func sampleOrder(orderID string) models.UnvalidatedOrder {
	address := models.UnvalidatedAddress{
		AddressLine1: "1-2-3 Suginami",
		City:         "Tokyo",
		ZipCode:      "1660001",
	}
	return models.UnvalidatedOrder{
		OrderID: orderID,
		CustomerInfo: models.UnvalidatedCustomerInfo{
			FirstName:    "Sample",
			LastName:     "Customer",
			EmailAddress: "sample.customer@example.com",
		},
		ShippingAddress: address,
		BillingAddress:  address,
		Lines: []models.UnvalidatedOrderLine{
			{OrderLineID: "1", ProductCode: "W1234", Quantity: 2},
			{OrderLineID: "2", ProductCode: "G123", Quantity: 1.5},
		},
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
