package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"order-taking-system/models"
)

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// A single connection also keeps ":memory:" databases alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStore opens the catalog at dbPath and applies migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ProductExists(ctx context.Context, code models.ProductCode) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE code = ?)`, code.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product %s: %w", code, err)
	}
	return exists, nil
}

func (s *SQLiteStore) ProductPrice(ctx context.Context, code models.ProductCode) (models.Price, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT unit_price FROM products WHERE code = ?`, code.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Price{}, fmt.Errorf("product %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return models.Price{}, fmt.Errorf("failed to read price of %s: %w", code, err)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return models.Price{}, fmt.Errorf("corrupt price %q for %s: %w", raw, code, err)
	}
	return models.NewPrice(d)
}

func (s *SQLiteStore) UpsertProduct(ctx context.Context, p Product) error {
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (code, kind, description, unit_price, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			description = excluded.description,
			unit_price = excluded.unit_price,
			updated_at = excluded.updated_at
	`, p.Code.String(), string(p.Code.Kind()), p.Description, p.UnitPrice.String(), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.Code, err)
	}
	return nil
}

// CountProducts returns the number of products in the catalog.
func (s *SQLiteStore) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
