package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wareline/warehouse-receiving/internal/product/domain"
	"github.com/wareline/warehouse-receiving/pkg/logger"
)

const (
	cacheKeyPrefix = "product:supplier_code:"
	cacheTTL       = 10 * time.Minute
)

// CachedProductRegistry is a redis read-through cache in front of the
// product registry. Only the supplier-code mapping is cached; occupancy and
// anything else transactional never goes through here. Cache failures
// degrade to the database path.
type CachedProductRegistry struct {
	inner domain.Registry
	redis *redis.Client
}

// NewCachedProductRegistry wraps a registry with a redis cache. A nil
// client disables caching.
func NewCachedProductRegistry(inner domain.Registry, redisClient *redis.Client) *CachedProductRegistry {
	return &CachedProductRegistry{inner: inner, redis: redisClient}
}

func (r *CachedProductRegistry) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	return r.inner.FindByID(ctx, id)
}

func (r *CachedProductRegistry) FindBySupplierCode(ctx context.Context, supplierCode string) (*domain.Product, error) {
	if product := r.cacheGet(ctx, supplierCode); product != nil {
		return product, nil
	}

	product, err := r.inner.FindBySupplierCode(ctx, supplierCode)
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, product)
	return product, nil
}

func (r *CachedProductRegistry) ResolveOrCreate(ctx context.Context, supplierCode, name string) (*domain.Product, bool, error) {
	if product := r.cacheGet(ctx, supplierCode); product != nil {
		return product, false, nil
	}

	product, created, err := r.inner.ResolveOrCreate(ctx, supplierCode, name)
	if err != nil {
		return nil, false, err
	}

	r.cacheSet(ctx, product)
	return product, created, nil
}

func (r *CachedProductRegistry) cacheGet(ctx context.Context, supplierCode string) *domain.Product {
	if r.redis == nil {
		return nil
	}

	payload, err := r.redis.Get(ctx, cacheKeyPrefix+supplierCode).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx).Err(err).Str("supplier_code", supplierCode).Msg("Product cache read failed")
		}
		return nil
	}

	var product domain.Product
	if err := json.Unmarshal(payload, &product); err != nil {
		return nil
	}
	return &product
}

func (r *CachedProductRegistry) cacheSet(ctx context.Context, product *domain.Product) {
	if r.redis == nil {
		return
	}

	payload, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, cacheKeyPrefix+product.SupplierCode, payload, cacheTTL).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("supplier_code", product.SupplierCode).Msg("Product cache write failed")
	}
}
