package catalog

import (
	"context"
	"errors"
	"time"

	"order-taking-system/models"
)

// ErrNotFound is returned when a product is not in the catalog.
var ErrNotFound = errors.New("not found")

// Product is a catalog entry.
type Product struct {
	Code        models.ProductCode
	Description string
	UnitPrice   models.Price
	UpdatedAt   time.Time
}

// Store is the product catalog.
type Store interface {
	ProductExists(ctx context.Context, code models.ProductCode) (bool, error)
	// ProductPrice returns ErrNotFound for unknown products.
	ProductPrice(ctx context.Context, code models.ProductCode) (models.Price, error)
	UpsertProduct(ctx context.Context, p Product) error
	Close() error
}
