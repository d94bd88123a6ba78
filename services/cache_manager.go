package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bakery-service/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productListCachePrefix = "bakery:products:v:"
	cacheVersionKey        = "bakery:products:version"
)

// CacheManager caches product listings. Writes bump a version counter so every
// cached page becomes unreachable at once and expires on its own.
type CacheManager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCacheManager(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheManager {
	return &CacheManager{redis: client, ttl: ttl, logger: logger}
}

// GetProductList returns a cached page, if any.
func (cm *CacheManager) GetProductList(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, bool) {
	version, err := cm.version(ctx)
	if err != nil {
		return nil, false
	}
	data, err := cm.redis.Get(ctx, listKey(version, filter)).Bytes()
	if err != nil {
		return nil, false
	}
	var page models.ProductPage
	if err := json.Unmarshal(data, &page); err != nil {
		cm.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return &page, true
}

// SetProductList stores a page under the current version. Failures are logged only.
func (cm *CacheManager) SetProductList(ctx context.Context, filter models.ProductFilter, page *models.ProductPage) {
	version, err := cm.version(ctx)
	if err != nil {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		cm.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
		return
	}
	if err := cm.redis.Set(ctx, listKey(version, filter), data, cm.ttl).Err(); err != nil {
		cm.logger.Warn("Failed to cache product list", zap.Error(err))
	}
}

// Invalidate drops every cached listing by bumping the version.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	v, err := cm.redis.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		cm.logger.Error("Failed to invalidate product cache", zap.Error(err))
		return
	}
	cm.logger.Debug("Product cache invalidated", zap.Int64("version", v))
}

func (cm *CacheManager) version(ctx context.Context) (int64, error) {
	v, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		// SETNX so a concurrent Invalidate is not overwritten.
		if err := cm.redis.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return cm.redis.Get(ctx, cacheVersionKey).Int64()
	}
	return v, err
}

func listKey(version int64, f models.ProductFilter) string {
	category := ""
	if f.CategoryID != nil {
		category = f.CategoryID.String()
	}
	return fmt.Sprintf("%s%d:p:%d:l:%d:c:%s:sc:%s:q:%s:f:%t:s:%t:o:%s",
		productListCachePrefix, version, f.Page, f.Limit, category,
		f.Subcategory, f.Search, f.Featured, f.InStock, f.Sort)
}
