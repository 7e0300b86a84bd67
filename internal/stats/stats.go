// Package stats assembles the observability snapshot served at /stats:
// per-credential pool state, cache counters, and process uptime.
package stats

import (
	"time"

	"llmgateway/internal/cache"
	"llmgateway/internal/credential"
)

// Collector aggregates the live components the snapshot reads from.
type Collector struct {
	pool      *credential.Pool
	cache     *cache.Cache
	startedAt time.Time
}

// NewCollector builds a Collector anchored at the current time.
func NewCollector(pool *credential.Pool, c *cache.Cache) *Collector {
	return &Collector{pool: pool, cache: c, startedAt: time.Now()}
}

// Snapshot is the JSON document /stats returns.
type Snapshot struct {
	UptimeSeconds int64                 `json:"uptime_seconds"`
	Credentials   []credential.Snapshot `json:"credentials"`
	Cache         cache.Stats           `json:"cache"`
}

// Collect produces a point-in-time snapshot.
func (c *Collector) Collect() Snapshot {
	return Snapshot{
		UptimeSeconds: int64(time.Since(c.startedAt).Seconds()),
		Credentials:   c.pool.Snapshot(),
		Cache:         c.cache.Snapshot(),
	}
}
