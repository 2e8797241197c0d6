// Package api is the HTTP front door of the order-taking system. It starts
// place-order workflows and answers status queries.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/temporal"

	"order-taking-system/metrics"
	"order-taking-system/models"
	"order-taking-system/workflows"
)

// UserIDHeader carries the id of the user submitting an order.
const UserIDHeader = "X-User-ID"

// WorkflowClient is the part of client.Client the gateway uses.
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error)
}

type Server struct {
	client    WorkflowClient
	taskQueue string
	metrics   *metrics.ServerMetrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewServer(c WorkflowClient, taskQueue string, m *metrics.ServerMetrics, logger *slog.Logger) *Server {
	if m == nil {
		m = metrics.NewServerMetrics(nil)
	}
	return &Server{client: c, taskQueue: taskQueue, metrics: m, logger: logger, now: time.Now}
}

// WorkflowIDReusePolicy lets an order whose workflow failed be submitted
// again under the same id. Running and completed orders are rejected.
const WorkflowIDReusePolicy = enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY

// WorkflowID is the place-order workflow id for an order. At most one
// workflow runs per order id.
func WorkflowID(orderID string) string {
	return "place-order-" + orderID
}

// Routes mounts the handlers. metricsHandler may be nil.
func (s *Server) Routes(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", s.placeOrder)
		r.Get("/{orderID}", s.orderState)
	})
	return r
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.Requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		s.metrics.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

type placeOrderResponse struct {
	WorkflowID string                   `json:"workflow_id"`
	RunID      string                   `json:"run_id"`
	Result     *models.PlaceOrderResult `json:"result,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// placeOrder starts the workflow for the posted order. With ?wait=true it
// also waits for the outcome.
func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var order models.UnvalidatedOrder
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid order body: %w", err), "")
		return
	}
	if order.OrderID == "" {
		writeError(w, http.StatusBadRequest, errors.New("orderId is required"), string(models.KindValidation))
		return
	}

	cmd := models.PlaceOrderCommand{
		Data:      order,
		Timestamp: s.now().UTC(),
		UserID:    r.Header.Get(UserIDHeader),
	}
	opts := client.StartWorkflowOptions{
		ID:                                       WorkflowID(order.OrderID),
		TaskQueue:                                s.taskQueue,
		WorkflowIDReusePolicy:                    WorkflowIDReusePolicy,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}

	run, err := s.client.ExecuteWorkflow(r.Context(), opts, workflows.PlaceOrderWorkflow, cmd)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			writeError(w, http.StatusConflict, fmt.Errorf("order %s already submitted", order.OrderID), "")
			return
		}
		s.logger.Error("Unable to start workflow", "order_id", order.OrderID, "error", err)
		writeError(w, http.StatusBadGateway, errors.New("unable to start workflow"), string(models.KindRemoteService))
		return
	}
	s.logger.Info("Started place-order workflow", "order_id", order.OrderID, "workflow_id", run.GetID(), "run_id", run.GetRunID())

	resp := placeOrderResponse{WorkflowID: run.GetID(), RunID: run.GetRunID()}
	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, resp)
		return
	}

	var result models.PlaceOrderResult
	if err := run.Get(r.Context(), &result); err != nil {
		status, kind := failureStatus(err)
		writeError(w, status, err, kind)
		return
	}
	resp.Result = &result
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) orderState(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	value, err := s.client.QueryWorkflow(r.Context(), WorkflowID(orderID), "", workflows.QueryState)
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("order %s not found", orderID), "")
			return
		}
		s.logger.Error("Failed to query workflow", "order_id", orderID, "error", err)
		writeError(w, http.StatusBadGateway, errors.New("failed to query order state"), string(models.KindRemoteService))
		return
	}

	var state models.WorkflowState
	if err := value.Get(&state); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to decode order state: %w", err), "")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// failureStatus maps a workflow failure to an HTTP status and error kind.
func failureStatus(err error) (int, string) {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, ""
	}
	switch models.ErrorKind(appErr.Type()) {
	case models.KindValidation, models.KindPricing:
		return http.StatusUnprocessableEntity, appErr.Type()
	case models.KindRemoteService:
		return http.StatusBadGateway, appErr.Type()
	default:
		return http.StatusInternalServerError, appErr.Type()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, kind string) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}
