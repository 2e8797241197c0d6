package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"order-taking-system/models"
)

// DefaultPriceTTL is how long a cached price is trusted.
const DefaultPriceTTL = 5 * time.Minute

// CachedStore is a read-through Redis cache for prices in front of another
// Store. Cache failures fall back to the underlying store.
type CachedStore struct {
	next Store
	rdb  redis.Cmdable
	ttl  time.Duration
}

func NewCachedStore(next Store, rdb redis.Cmdable, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultPriceTTL
	}
	return &CachedStore{next: next, rdb: rdb, ttl: ttl}
}

func priceKey(code models.ProductCode) string {
	return "catalog:price:" + code.String()
}

func (c *CachedStore) cachedPrice(ctx context.Context, code models.ProductCode) (models.Price, bool) {
	raw, err := c.rdb.Get(ctx, priceKey(code)).Result()
	if err != nil {
		return models.Price{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return models.Price{}, false
	}
	p, err := models.NewPrice(d)
	if err != nil {
		return models.Price{}, false
	}
	return p, true
}

// ProductExists answers from the cache when a price is cached for code.
func (c *CachedStore) ProductExists(ctx context.Context, code models.ProductCode) (bool, error) {
	if _, ok := c.cachedPrice(ctx, code); ok {
		return true, nil
	}
	return c.next.ProductExists(ctx, code)
}

func (c *CachedStore) ProductPrice(ctx context.Context, code models.ProductCode) (models.Price, error) {
	if p, ok := c.cachedPrice(ctx, code); ok {
		return p, nil
	}

	p, err := c.next.ProductPrice(ctx, code)
	if err != nil {
		return models.Price{}, err
	}
	_ = c.rdb.Set(ctx, priceKey(code), p.String(), c.ttl).Err()
	return p, nil
}

// UpsertProduct writes through and drops the cached price.
func (c *CachedStore) UpsertProduct(ctx context.Context, p Product) error {
	if err := c.next.UpsertProduct(ctx, p); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, priceKey(p.Code)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Close closes the underlying store. The Redis client is owned by the caller.
func (c *CachedStore) Close() error {
	return c.next.Close()
}
