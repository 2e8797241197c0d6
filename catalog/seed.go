package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"order-taking-system/models"
)

// DefaultProducts is the starter catalog loaded into an empty database.
func DefaultProducts() []Product {
	entries := []struct {
		code, description, price string
	}{
		{"W1234", "Standard widget", "120"},
		{"W5678", "Deluxe widget", "249.99"},
		{"W0001", "Sample widget", "0"},
		{"G123", "Gizmo powder (per kg)", "12.50"},
		{"G456", "Gizmo pellets (per kg)", "7.80"},
	}

	products := make([]Product, 0, len(entries))
	for _, e := range entries {
		code, err := models.NewProductCode("code", e.code)
		if err != nil {
			panic(err)
		}
		products = append(products, Product{
			Code:        code,
			Description: e.description,
			UnitPrice:   models.MustPrice(decimal.RequireFromString(e.price)),
		})
	}
	return products
}

// Seed upserts products into store.
func Seed(ctx context.Context, store Store, products []Product) error {
	for _, p := range products {
		if err := store.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}
	return nil
}
