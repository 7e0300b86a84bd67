package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"llmgateway/internal/monitoring"
)

// Entry is one cached artifact with its freshness window.
type Entry struct {
	Artifact   []byte
	InsertedAt time.Time
	ExpiresAt  time.Time
}

// Cache is the fingerprint-keyed response cache. Structural operations
// ride on the LRU's own lock; concurrent identical computes are
// coalesced per fingerprint by a singleflight group.
type Cache struct {
	enabled bool
	ttl     time.Duration
	entries *lru.Cache[string, Entry]
	group   singleflight.Group
	now     func() time.Time

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New builds a Cache holding at most maxSize entries, each live for
// ttl. A disabled cache passes every compute straight through.
func New(maxSize int, ttl time.Duration, enabled bool) (*Cache, error) {
	entries, err := lru.New[string, Entry](maxSize)
	if err != nil {
		return nil, err
	}
	return &Cache{
		enabled: enabled,
		ttl:     ttl,
		entries: entries,
		now:     time.Now,
	}, nil
}

// lookup returns a live entry, expiring it on the spot if the TTL has
// lapsed.
func (c *Cache) lookup(fingerprint string) ([]byte, bool) {
	entry, ok := c.entries.Get(fingerprint)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.ExpiresAt) {
		c.entries.Remove(fingerprint)
		return nil, false
	}
	return entry.Artifact, true
}

// GetOrCompute returns the cached artifact for fingerprint, or invokes
// compute under a fingerprint-scoped single-flight guard. Concurrent
// callers with the same fingerprint share one compute: the upstream is
// called at most once for them. A failed compute caches nothing;
// waiters all receive the same error and are free to retry. The second
// return reports whether the artifact came from cache.
func (c *Cache) GetOrCompute(fingerprint string, compute func() ([]byte, error)) ([]byte, bool, error) {
	if !c.enabled {
		artifact, err := compute()
		return artifact, false, err
	}

	if artifact, ok := c.lookup(fingerprint); ok {
		c.hits.Add(1)
		monitoring.CacheHitsTotal.Inc()
		return artifact, true, nil
	}

	shared := false
	v, err, _ := c.group.Do(fingerprint, func() (any, error) {
		// A racing caller may have populated the entry between our miss
		// and the flight lock.
		if artifact, ok := c.lookup(fingerprint); ok {
			shared = true
			return artifact, nil
		}
		artifact, err := compute()
		if err != nil {
			return nil, err
		}
		now := c.now()
		c.entries.Add(fingerprint, Entry{
			Artifact:   artifact,
			InsertedAt: now,
			ExpiresAt:  now.Add(c.ttl),
		})
		return artifact, nil
	})
	if err != nil {
		c.misses.Add(1)
		monitoring.CacheMissesTotal.Inc()
		return nil, false, err
	}
	if shared {
		c.hits.Add(1)
		monitoring.CacheHitsTotal.Inc()
	} else {
		c.misses.Add(1)
		monitoring.CacheMissesTotal.Inc()
	}
	return v.([]byte), shared, nil
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.entries.Purge()
}

// Stats is the observability view of the cache.
type Stats struct {
	Enabled bool   `json:"enabled"`
	Size    int    `json:"size"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// Snapshot returns current counters and occupancy.
func (c *Cache) Snapshot() Stats {
	return Stats{
		Enabled: c.enabled,
		Size:    c.entries.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
