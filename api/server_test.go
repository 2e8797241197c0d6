package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	"order-taking-system/metrics"
	"order-taking-system/models"
	"order-taking-system/workflows"
)

type fakeClient struct {
	startOpts []client.StartWorkflowOptions
	commands  []models.PlaceOrderCommand
	run       client.WorkflowRun
	startErr  error

	queried  []string
	state    models.WorkflowState
	queryErr error
}

func (c *fakeClient) ExecuteWorkflow(_ context.Context, options client.StartWorkflowOptions, _ interface{}, args ...interface{}) (client.WorkflowRun, error) {
	if c.startErr != nil {
		return nil, c.startErr
	}
	c.startOpts = append(c.startOpts, options)
	c.commands = append(c.commands, args[0].(models.PlaceOrderCommand))
	return c.run, nil
}

func (c *fakeClient) QueryWorkflow(_ context.Context, workflowID string, _ string, queryType string, _ ...interface{}) (converter.EncodedValue, error) {
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	c.queried = append(c.queried, workflowID+"/"+queryType)
	return stateValue{state: c.state}, nil
}

type stateValue struct{ state models.WorkflowState }

func (v stateValue) HasValue() bool { return true }

func (v stateValue) Get(valuePtr interface{}) error {
	*valuePtr.(*models.WorkflowState) = v.state
	return nil
}

func newRun() *mocks.WorkflowRun {
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return("place-order-ORD-1")
	run.On("GetRunID").Return("run-1")
	return run
}

func newTestServer(c *fakeClient) (*Server, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	s := NewServer(c, "orders", metrics.NewServerMetrics(reg), slog.New(slog.NewJSONHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC) }
	return s, reg
}

const orderBody = `{
  "orderId": "ORD-1",
  "customerInfo": {"firstName": "Jane", "lastName": "Doe", "emailAddress": "jane@example.com"},
  "shippingAddress": {"addressLine1": "1 Main St", "city": "Springfield", "zipCode": "12345"},
  "billingAddress": {"addressLine1": "1 Main St", "city": "Springfield", "zipCode": "12345"},
  "lines": [{"orderLineId": "L1", "productCode": "W1234", "quantity": 2}]
}`

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPlaceOrder_Accepted(t *testing.T) {
	c := &fakeClient{run: newRun()}
	s, _ := newTestServer(c)

	rec := do(t, s.Routes(nil), http.MethodPost, "/orders", orderBody, map[string]string{UserIDHeader: "user-9"})

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var resp placeOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "place-order-ORD-1", resp.WorkflowID)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Nil(t, resp.Result)

	require.Len(t, c.startOpts, 1)
	opts := c.startOpts[0]
	assert.Equal(t, "place-order-ORD-1", opts.ID)
	assert.Equal(t, "orders", opts.TaskQueue)
	assert.Equal(t, enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY, opts.WorkflowIDReusePolicy)
	assert.True(t, opts.WorkflowExecutionErrorWhenAlreadyStarted)

	cmd := c.commands[0]
	assert.Equal(t, "user-9", cmd.UserID)
	assert.Equal(t, "ORD-1", cmd.Data.OrderID)
	assert.Equal(t, 2.0, cmd.Data.Lines[0].Quantity)
	assert.False(t, cmd.Timestamp.IsZero())
}

func TestPlaceOrder_Wait(t *testing.T) {
	run := newRun()
	run.On("Get", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		*args.Get(1).(*models.PlaceOrderResult) = models.PlaceOrderResult{OrderID: "ORD-1", InvoiceID: "INV-1"}
	})
	s, _ := newTestServer(&fakeClient{run: run})

	rec := do(t, s.Routes(nil), http.MethodPost, "/orders?wait=true", orderBody, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp placeOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, "INV-1", resp.Result.InvoiceID)
}

func TestPlaceOrder_WaitFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "validation",
			err:        temporal.NewNonRetryableApplicationError("validation error: orderId: must not be empty", string(models.KindValidation), nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "validation",
		},
		{
			name:       "pricing",
			err:        temporal.NewNonRetryableApplicationError("pricing error", string(models.KindPricing), nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "pricing",
		},
		{
			name:       "remote service",
			err:        temporal.NewNonRetryableApplicationError("remote service error", string(models.KindRemoteService), nil),
			wantStatus: http.StatusBadGateway,
			wantKind:   "remote_service",
		},
		{
			name:       "other",
			err:        errors.New("workflow timed out"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := newRun()
			run.On("Get", mock.Anything, mock.Anything).Return(tt.err)
			s, _ := newTestServer(&fakeClient{run: run})

			rec := do(t, s.Routes(nil), http.MethodPost, "/orders?wait=true", orderBody, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestPlaceOrder_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"orderId":`},
		{"missing order id", `{"lines": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeClient{run: newRun()}
			s, _ := newTestServer(c)

			rec := do(t, s.Routes(nil), http.MethodPost, "/orders", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, c.startOpts)
		})
	}
}

func TestPlaceOrder_Duplicate(t *testing.T) {
	c := &fakeClient{startErr: serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", "run-0")}
	s, _ := newTestServer(c)

	rec := do(t, s.Routes(nil), http.MethodPost, "/orders", orderBody, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ORD-1 already submitted")
}

func TestPlaceOrder_TemporalUnavailable(t *testing.T) {
	s, _ := newTestServer(&fakeClient{startErr: serviceerror.NewUnavailable("frontend down")})

	rec := do(t, s.Routes(nil), http.MethodPost, "/orders", orderBody, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestOrderState(t *testing.T) {
	c := &fakeClient{state: models.WorkflowState{OrderID: "ORD-1", Status: models.OrderStatusPriced, PricingDone: true}}
	s, _ := newTestServer(c)

	rec := do(t, s.Routes(nil), http.MethodGet, "/orders/ORD-1", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var state models.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, models.OrderStatusPriced, state.Status)
	assert.Equal(t, []string{"place-order-ORD-1/" + workflows.QueryState}, c.queried)
}

func TestOrderState_NotFound(t *testing.T) {
	s, _ := newTestServer(&fakeClient{queryErr: serviceerror.NewNotFound("workflow not found")})

	rec := do(t, s.Routes(nil), http.MethodGet, "/orders/ORD-404", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	s, reg := newTestServer(&fakeClient{run: newRun()})
	h := s.Routes(metrics.Handler(reg))

	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, h, http.MethodPost, "/orders", orderBody, nil)

	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `order_taking_gateway_http_requests_total{handler="/orders`)
	assert.Contains(t, body, `status="202"} 1`)
	assert.Contains(t, body, `order_taking_gateway_http_requests_total{handler="/healthz",status="200"} 1`)
}
