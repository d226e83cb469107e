package router

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Dedup is a bounded cache of recently emitted idempotency keys. A key stays
// resident for the configured TTL (or until evicted by size pressure), which
// covers the window in which a crashed cycle can be re-fetched and re-diffed
// before the snapshot commit landed.
type Dedup struct {
	cache *expirable.LRU[string, struct{}]
}

func NewDedup(size int, ttl time.Duration) *Dedup {
	return &Dedup{
		cache: expirable.NewLRU[string, struct{}](size, nil, ttl),
	}
}

func (d *Dedup) Seen(key string) bool {
	_, ok := d.cache.Get(key)
	return ok
}

func (d *Dedup) Remember(key string) {
	d.cache.Add(key, struct{}{})
}
