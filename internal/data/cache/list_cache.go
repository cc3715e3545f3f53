// Package cache keeps per-owner lists in Redis. Keys are "<kind>:<owner_id>" and live
// until a write invalidates them or the configured TTL passes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/product"
	"github.com/jar-backoffice/internal/platform/metrics"
	"github.com/redis/go-redis/v9"
)

// Kind names a cached list
type Kind string

const (
	KindCustomers Kind = "customers"
	KindProducts  Kind = "products"
)

// Key returns the Redis key for an owner's list
func Key(kind Kind, ownerID int64) string {
	return fmt.Sprintf("%s:%d", kind, ownerID)
}

// ListCache stores JSON-encoded lists. A zero ttl keeps keys until invalidated.
type ListCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Registry
	logger  *slog.Logger
}

func NewListCache(logger *slog.Logger, client redis.Cmdable, ttl time.Duration, m *metrics.Registry) *ListCache {
	return &ListCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

// get decodes the cached list into dest and reports whether it was there
func (c *ListCache) get(ctx context.Context, kind Kind, ownerID int64, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, Key(kind, ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.CacheMiss(string(kind))
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s cache: %w", kind, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// A corrupt value is treated as a miss and overwritten by the next fill
		c.logger.Warn("Discarding undecodable cache value", "key", Key(kind, ownerID), "error", err)
		c.metrics.CacheMiss(string(kind))
		return false, nil
	}

	c.metrics.CacheHit(string(kind))
	return true, nil
}

func (c *ListCache) set(ctx context.Context, kind Kind, ownerID int64, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s cache: %w", kind, err)
	}
	if err := c.client.Set(ctx, Key(kind, ownerID), string(payload), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s cache: %w", kind, err)
	}
	return nil
}

func (c *ListCache) GetCustomers(ctx context.Context, ownerID int64) ([]*customer.Customer, bool, error) {
	var customers []*customer.Customer
	found, err := c.get(ctx, KindCustomers, ownerID, &customers)
	return customers, found, err
}

func (c *ListCache) SetCustomers(ctx context.Context, ownerID int64, customers []*customer.Customer) error {
	return c.set(ctx, KindCustomers, ownerID, customers)
}

func (c *ListCache) GetProducts(ctx context.Context, ownerID int64) ([]*product.Product, bool, error) {
	var products []*product.Product
	found, err := c.get(ctx, KindProducts, ownerID, &products)
	return products, found, err
}

func (c *ListCache) SetProducts(ctx context.Context, ownerID int64, products []*product.Product) error {
	return c.set(ctx, KindProducts, ownerID, products)
}

// Invalidate drops an owner's list so the next read refills it from Postgres
func (c *ListCache) Invalidate(ctx context.Context, kind Kind, ownerID int64) error {
	if err := c.client.Del(ctx, Key(kind, ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s cache: %w", kind, err)
	}
	return nil
}
