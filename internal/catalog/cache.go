package catalog

import (
	"context"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// CachedCatalog keeps pricing info in memory for a short TTL.
// Misses (ErrNotFound) are not cached.
type CachedCatalog struct {
	next  Catalog
	cache *ccache.Cache[*PricingInfo]
	ttl   time.Duration
}

func NewCachedCatalog(next Catalog, ttl time.Duration, maxSize int64) *CachedCatalog {
	if maxSize <= 0 {
		maxSize = 5000
	}
	return &CachedCatalog{
		next:  next,
		cache: ccache.New(ccache.Configure[*PricingInfo]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

func (c *CachedCatalog) GetPricingInfo(ctx context.Context, propertyID string) (*PricingInfo, error) {
	if item := c.cache.Get(propertyID); item != nil && !item.Expired() {
		info := *item.Value()
		return &info, nil
	}

	info, err := c.next.GetPricingInfo(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	stored := *info
	c.cache.Set(propertyID, &stored, c.ttl)
	return info, nil
}

// Stop releases the cache's background worker.
func (c *CachedCatalog) Stop() {
	c.cache.Stop()
}
