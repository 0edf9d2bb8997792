package pricing

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache holds live prices keyed by provider and wire region for a bounded TTL.
// A nil *Cache is valid and caches nothing.
type Cache struct {
	c   *ristretto.Cache[string, float64]
	ttl time.Duration
}

// NewCache creates a price cache. A non-positive ttl disables caching and
// returns nil.
func NewCache(ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		return nil, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, float64]{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

// Get returns a cached price.
func (c *Cache) Get(key string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	return c.c.Get(key)
}

// Set stores a price and waits until it is visible to Get.
func (c *Cache) Set(key string, price float64) {
	if c == nil {
		return
	}
	c.c.SetWithTTL(key, price, 1, c.ttl)
	c.c.Wait()
}

// Close releases cache resources.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.c.Close()
}
