package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"order-taking-system/catalog"
	"order-taking-system/letter"
	"order-taking-system/messaging"
	"order-taking-system/metrics"
	"order-taking-system/models"
)

// Application error types returned by activities. Workflows translate them
// back into domain errors.
const (
	ErrTypeAddressNotFound = "AddressNotFound"
	ErrTypeProductNotFound = "ProductNotFound"
	ErrTypeInvalidPrice    = "InvalidPrice"
	ErrTypeInvalidAmount   = "InvalidAmount"
)

// Activities contains the place-order collaborators that touch the outside
// world.
type Activities struct {
	httpClient        *http.Client
	addressServiceURL string
	catalog           catalog.Store
	publisher         messaging.Publisher
	letters           *letter.Renderer
	metrics           *metrics.PipelineMetrics
}

// NewActivities creates a new Activities instance. A nil m records into
// unregistered collectors.
func NewActivities(
	addressServiceURL string,
	store catalog.Store,
	publisher messaging.Publisher,
	letters *letter.Renderer,
	m *metrics.PipelineMetrics,
) *Activities {
	if m == nil {
		m = metrics.NewPipelineMetrics(nil)
	}
	return &Activities{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		addressServiceURL: addressServiceURL,
		catalog:           store,
		publisher:         publisher,
		letters:           letters,
		metrics:           m,
	}
}

// CheckAddressExists asks the address verification service to normalise
// address. Unknown addresses fail without retry.
func (a *Activities) CheckAddressExists(ctx context.Context, address models.UnvalidatedAddress) (models.CheckedAddress, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Checking address", "city", address.City, "zip_code", address.ZipCode)

	jsonData, err := json.Marshal(address)
	if err != nil {
		return models.CheckedAddress{}, fmt.Errorf("failed to marshal address: %w", err)
	}

	url := fmt.Sprintf("%s/addresses/verify", a.addressServiceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.CheckedAddress{}, fmt.Errorf("failed to create address request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	activity.RecordHeartbeat(ctx, "calling address service")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.metrics.AddressChecks.WithLabelValues("error").Inc()
		return models.CheckedAddress{}, fmt.Errorf("failed to call address service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		a.metrics.AddressChecks.WithLabelValues("not_found").Inc()
		body, _ := io.ReadAll(resp.Body)
		return models.CheckedAddress{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("address not found: %s", bytes.TrimSpace(body)), ErrTypeAddressNotFound, nil)
	default:
		a.metrics.AddressChecks.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return models.CheckedAddress{}, fmt.Errorf("address service returned status %d: %s", resp.StatusCode, string(body))
	}

	var checked models.CheckedAddress
	if err := json.NewDecoder(resp.Body).Decode(&checked); err != nil {
		a.metrics.AddressChecks.WithLabelValues("error").Inc()
		return models.CheckedAddress{}, fmt.Errorf("failed to decode address response: %w", err)
	}

	a.metrics.AddressChecks.WithLabelValues("ok").Inc()
	logger.Info("Address checked", "city", checked.City)
	return checked, nil
}

func (a *Activities) CheckProductCodeExists(ctx context.Context, code models.ProductCode) (bool, error) {
	exists, err := a.catalog.ProductExists(ctx, code)
	if err != nil {
		a.metrics.CatalogLookups.WithLabelValues("exists", "error").Inc()
		return false, fmt.Errorf("failed to check product %s: %w", code, err)
	}
	a.metrics.CatalogLookups.WithLabelValues("exists", outcome(exists)).Inc()
	activity.GetLogger(ctx).Debug("Product checked", "product_code", code.String(), "exists", exists)
	return exists, nil
}

// GetProductPrice returns the catalog price. An unknown product fails
// without retry.
func (a *Activities) GetProductPrice(ctx context.Context, code models.ProductCode) (models.Price, error) {
	price, err := a.catalog.ProductPrice(ctx, code)
	if errors.Is(err, catalog.ErrNotFound) {
		a.metrics.CatalogLookups.WithLabelValues("price", "missing").Inc()
		return models.Price{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("product %s has no price", code), ErrTypeProductNotFound, err)
	}
	var invalid *models.ValidationError
	if errors.As(err, &invalid) {
		a.metrics.CatalogLookups.WithLabelValues("price", "invalid").Inc()
		return models.Price{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("product %s: %s", code, invalid.Msg), ErrTypeInvalidPrice, err)
	}
	if err != nil {
		a.metrics.CatalogLookups.WithLabelValues("price", "error").Inc()
		return models.Price{}, fmt.Errorf("failed to get price of %s: %w", code, err)
	}
	a.metrics.CatalogLookups.WithLabelValues("price", "found").Inc()
	return price, nil
}

// CreateAcknowledgmentLetter renders the letter with the configured template.
func (a *Activities) CreateAcknowledgmentLetter(ctx context.Context, order models.PricedOrder) (models.HTMLString, error) {
	if a.letters == nil {
		return letter.Fallback(order), nil
	}
	return a.letters.CreateLetter(order), nil
}

// SendAcknowledgment posts the letter to the notifications topic. A failed
// send is reported as NotSent, never as an error.
func (a *Activities) SendAcknowledgment(ctx context.Context, ack models.OrderAcknowledgment) (models.SendResult, error) {
	logger := activity.GetLogger(ctx)

	if err := a.publisher.SendAcknowledgment(ctx, ack); err != nil {
		logger.Warn("Failed to send acknowledgment", "email", ack.EmailAddress.String(), "error", err)
		a.metrics.Acknowledgments.WithLabelValues(string(models.NotSent)).Inc()
		return models.NotSent, nil
	}

	a.metrics.Acknowledgments.WithLabelValues(string(models.Sent)).Inc()
	logger.Info("Acknowledgment sent", "email", ack.EmailAddress.String())
	return models.Sent, nil
}

// PublishEvents hands the workflow output to downstream contexts.
func (a *Activities) PublishEvents(ctx context.Context, events models.PlaceOrderEvents) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Publishing events", "count", len(events))

	activity.RecordHeartbeat(ctx, "publishing events")

	if err := a.publisher.PublishEvents(ctx, events); err != nil {
		return fmt.Errorf("failed to publish events: %w", err)
	}
	for _, t := range events.Types() {
		a.metrics.EventsPublished.WithLabelValues(string(t)).Inc()
	}
	return nil
}

func outcome(found bool) string {
	if found {
		return "found"
	}
	return "missing"
}
