package activities_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"order-taking-system/activities"
	"order-taking-system/letter"
	"order-taking-system/models"
)

func TestCheckAddressExists(t *testing.T) {
	address := models.UnvalidatedAddress{
		AddressLine1: "123 Main St",
		AddressLine2: strPtr("Apt 4"),
		City:         "Springfield",
		ZipCode:      "12345",
	}

	tests := []struct {
		name          string
		mockHandler   func(w http.ResponseWriter, r *http.Request)
		wantErr       bool
		errorContains string
		nonRetryable  bool
		verifyRequest bool
		wantCity      string
	}{
		{
			name: "Success - Address Normalised",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				checked := models.CheckedAddress(address)
				checked.City = "SPRINGFIELD"
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(checked)
			},
			verifyRequest: true,
			wantCity:      "SPRINGFIELD",
		},
		{
			name: "Failure - Address Not Found",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("no such street"))
			},
			wantErr:       true,
			errorContains: "address not found",
			nonRetryable:  true,
		},
		{
			name: "Failure - Unprocessable Address",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			wantErr:       true,
			errorContains: "address not found",
			nonRetryable:  true,
		},
		{
			name: "Failure - Server Error",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Internal Server Error"))
			},
			wantErr:       true,
			errorContains: "status 500",
		},
		{
			name: "Failure - Malformed Response",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			},
			wantErr:       true,
			errorContains: "failed to decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()

			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.verifyRequest {
					assert.Equal(t, "/addresses/verify", r.URL.Path)
					assert.Equal(t, http.MethodPost, r.Method)
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

					var req models.UnvalidatedAddress
					require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
					assert.Equal(t, address.AddressLine1, req.AddressLine1)
					require.NotNil(t, req.AddressLine2)
					assert.Equal(t, "Apt 4", *req.AddressLine2)
				}
				tt.mockHandler(w, r)
			}))
			defer mockServer.Close()

			act := activities.NewActivities(mockServer.URL, nil, nil, nil, nil)
			env.RegisterActivity(act.CheckAddressExists)

			val, err := env.ExecuteActivity(act.CheckAddressExists, address)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				var appErr *temporal.ApplicationError
				if tt.nonRetryable {
					require.True(t, errors.As(err, &appErr))
					assert.True(t, appErr.NonRetryable())
					assert.Equal(t, activities.ErrTypeAddressNotFound, appErr.Type())
				}
				return
			}

			require.NoError(t, err)
			var checked models.CheckedAddress
			require.NoError(t, val.Get(&checked))
			assert.Equal(t, tt.wantCity, checked.City)
		})
	}
}

func TestCheckAddressExists_ServiceDown(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	mockServer := httptest.NewServer(http.NotFoundHandler())
	url := mockServer.URL
	mockServer.Close()

	act := activities.NewActivities(url, nil, nil, nil, nil)
	env.RegisterActivity(act.CheckAddressExists)

	_, err := env.ExecuteActivity(act.CheckAddressExists, models.UnvalidatedAddress{AddressLine1: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call address service")
}

func TestCheckProductCodeExists(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"Known Widget", "W1234", true},
		{"Known Gizmo", "G123", true},
		{"Unknown Widget", "W9999", false},
		{"Unknown Gizmo", "G999", false},
	}

	store := seededCatalog(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()

			act := activities.NewActivities("", store, nil, nil, nil)
			env.RegisterActivity(act.CheckProductCodeExists)

			val, err := env.ExecuteActivity(act.CheckProductCodeExists, productCode(t, tt.code))
			require.NoError(t, err)

			var exists bool
			require.NoError(t, val.Get(&exists))
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestGetProductPrice(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	act := activities.NewActivities("", seededCatalog(t), nil, nil, nil)
	env.RegisterActivity(act.GetProductPrice)

	val, err := env.ExecuteActivity(act.GetProductPrice, productCode(t, "G123"))
	require.NoError(t, err)

	var price models.Price
	require.NoError(t, val.Get(&price))
	assert.True(t, price.Value().Equal(decimal.RequireFromString("12.50")))
}

func TestGetProductPrice_UnknownProduct(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	act := activities.NewActivities("", seededCatalog(t), nil, nil, nil)
	env.RegisterActivity(act.GetProductPrice)

	_, err := env.ExecuteActivity(act.GetProductPrice, productCode(t, "W9999"))
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, activities.ErrTypeProductNotFound, appErr.Type())
	assert.True(t, appErr.NonRetryable())
}

func TestGetProductPrice_StoredPriceOutOfRange(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()

	act := activities.NewActivities("", badPriceCatalog{}, nil, nil, nil)
	env.RegisterActivity(act.GetProductPrice)

	_, err := env.ExecuteActivity(act.GetProductPrice, productCode(t, "W1234"))
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, activities.ErrTypeInvalidPrice, appErr.Type())
	assert.True(t, appErr.NonRetryable())
}

func TestSendAcknowledgment(t *testing.T) {
	email, err := models.NewEmailAddress("emailAddress", "jane@example.com")
	require.NoError(t, err)
	ack := models.OrderAcknowledgment{EmailAddress: email, Letter: "<p>hi</p>"}

	tests := []struct {
		name       string
		publishErr error
		want       models.SendResult
	}{
		{"Sent", nil, models.Sent},
		{"Broker Down Reports NotSent", errBrokerDown, models.NotSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()

			pub := newRecordingPublisher()
			pub.err = tt.publishErr
			act := activities.NewActivities("", nil, pub, nil, nil)
			env.RegisterActivity(act.SendAcknowledgment)

			val, err := env.ExecuteActivity(act.SendAcknowledgment, ack)
			require.NoError(t, err)

			var result models.SendResult
			require.NoError(t, val.Get(&result))
			assert.Equal(t, tt.want, result)
			if tt.want == models.Sent {
				require.Len(t, pub.acks, 1)
				assert.Equal(t, "jane@example.com", pub.acks[0].EmailAddress.String())
			}
		})
	}
}

func TestCreateAcknowledgmentLetter(t *testing.T) {
	order := samplePricedOrder(t)

	tests := []struct {
		name     string
		renderer *letter.Renderer
		contains string
	}{
		{"Template", letter.NewRenderer("The Order Team"), "The Order Team"},
		{"No Renderer Falls Back", nil, "Thank you for your order ORD-7."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestActivityEnvironment()

			act := activities.NewActivities("", nil, nil, tt.renderer, nil)
			env.RegisterActivity(act.CreateAcknowledgmentLetter)

			val, err := env.ExecuteActivity(act.CreateAcknowledgmentLetter, order)
			require.NoError(t, err)

			var html models.HTMLString
			require.NoError(t, val.Get(&html))
			assert.Contains(t, string(html), tt.contains)
		})
	}
}

func TestPublishEvents(t *testing.T) {
	events := models.PlaceOrderEvents{models.OrderPlaced(samplePricedOrder(t))}

	t.Run("Success", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestActivityEnvironment()

		pub := newRecordingPublisher()
		act := activities.NewActivities("", nil, pub, nil, nil)
		env.RegisterActivity(act.PublishEvents)

		_, err := env.ExecuteActivity(act.PublishEvents, events)
		require.NoError(t, err)
		require.Len(t, pub.events, 1)
		assert.Equal(t, []models.EventType{models.EventOrderPlaced}, pub.events[0].Types())
	})

	t.Run("Broker Down", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestActivityEnvironment()

		pub := newRecordingPublisher()
		pub.err = errBrokerDown
		act := activities.NewActivities("", nil, pub, nil, nil)
		env.RegisterActivity(act.PublishEvents)

		_, err := env.ExecuteActivity(act.PublishEvents, events)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
	})
}
