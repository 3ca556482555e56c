package peerhosts

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Loader is anything that can produce the peer host list.
type Loader interface {
	Load() ([]string, error)
}

// cacheKey is the single key the cache stores the list under.
const cacheKey = "peers"

// CachedSource keeps the last successfully loaded list for ttl.
// Failed loads are returned as is and never cached.
type CachedSource struct {
	inner  Loader
	lru    *expirable.LRU[string, []string]
	hits   uint64
	misses uint64
}

// NewCachedSource wraps inner with a time bounded cache. ttl must be positive;
// expirable treats zero as never expire.
func NewCachedSource(inner Loader, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		lru:   expirable.NewLRU[string, []string](1, nil, ttl),
	}
}

// Load returns the cached list while it is fresh, otherwise reloads it.
func (c *CachedSource) Load() ([]string, error) {
	if hosts, ok := c.lru.Get(cacheKey); ok {
		atomic.AddUint64(&c.hits, 1)
		return append([]string(nil), hosts...), nil
	}
	atomic.AddUint64(&c.misses, 1)

	hosts, err := c.inner.Load()
	if err != nil {
		return hosts, err
	}
	c.lru.Add(cacheKey, append([]string(nil), hosts...))
	return hosts, nil
}

// Purge drops the cached list so the next Load reads the source.
func (c *CachedSource) Purge() {
	c.lru.Purge()
}

// Stats returns the cache hit and miss counts.
func (c *CachedSource) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}
