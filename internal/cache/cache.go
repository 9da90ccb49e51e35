package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a size-bounded in-memory cache whose entries expire after a fixed TTL.
type Cache[V any] struct {
	lru    *expirable.LRU[string, V]
	hits   atomic.Int64
	misses atomic.Int64
}

func New[V any](size int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		lru: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

func (c *Cache[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

func (c *Cache[V]) GetStats() map[string]any {
	hits, misses := c.hits.Load(), c.misses.Load()
	rate := 0.0
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return map[string]any{
		"entries":  c.lru.Len(),
		"hits":     hits,
		"misses":   misses,
		"hit_rate": rate,
	}
}

// GenerateKey hashes the parts into a fixed-length key. Parts are
// separated so ("ab", "c") and ("a", "bc") differ.
func GenerateKey(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
