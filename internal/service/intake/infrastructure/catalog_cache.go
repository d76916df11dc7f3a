// internal/service/intake/infrastructure/catalog_cache.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"boost/internal/service/intake/domain"
)

// CachedCatalog 在任意 domain.Catalog 之上加一层短 TTL 缓存。
// 目录是只读参考数据，所有会话共享；singleflight 把并发的相同查询
// 合并为一次落库，避免热点菜单把数据库打穿。
type CachedCatalog struct {
	inner domain.Catalog
	ttl   time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	val interface{}
	exp time.Time
}

func NewCachedCatalog(inner domain.Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		inner: inner,
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}
}

var _ domain.Catalog = (*CachedCatalog)(nil)

func (c *CachedCatalog) ListPlatforms(ctx context.Context) ([]domain.Platform, error) {
	v, err := c.lookup(ctx, "platforms", func() (interface{}, error) {
		return c.inner.ListPlatforms(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Platform), nil
}

func (c *CachedCatalog) ListServices(ctx context.Context, platform string) ([]domain.Service, error) {
	v, err := c.lookup(ctx, "services:"+platform, func() (interface{}, error) {
		return c.inner.ListServices(ctx, platform)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Service), nil
}

func (c *CachedCatalog) GetService(ctx context.Context, id string) (*domain.Service, error) {
	v, err := c.lookup(ctx, "service:"+id, func() (interface{}, error) {
		return c.inner.GetService(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Service), nil
}

func (c *CachedCatalog) GetPricingRules(ctx context.Context, serviceID string) ([]domain.PricingRule, error) {
	v, err := c.lookup(ctx, "rules:"+serviceID, func() (interface{}, error) {
		return c.inner.GetPricingRules(ctx, serviceID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.PricingRule), nil
}

func (c *CachedCatalog) lookup(_ context.Context, key string, load func() (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.exp) {
		return entry.val, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		val, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[key] = cacheEntry{val: val, exp: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return val, nil
	})
	return v, err
}
