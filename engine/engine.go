package engine

import (
	"time"

	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/refresh"
	"github.com/krisalay/memo-cache/types"
)

/*
CacheEngine is the "brain" of the cache system.
It is responsible for the "behavior" of the stores, NOT storage.
This acts as the policy layer.

It decides:
- When an entry is expired
- What a read does with an expired entry (strict or lazy)
- Which refresh hook runs when an expired entry is read
- How metrics are recorded

It does NOT:
- Store data
- Handle sharding
- Handle locking
- Run producers
*/
type CacheEngine struct {

	// Expiration controls when a cache entry should be considered “too old”.
	Expiration expiration.Strategy

	// Staleness decides whether an expired entry may still be served.
	Staleness expiration.Staleness

	// Refresh is an optional hook that runs when a read finds an expired entry.
	// Strict auto stores use it to sweep every other stale key.
	// If nil, no refresh logic is executed.
	Refresh refresh.Hook

	// Metrics is how we keep track of what the cache is doing.
	Metrics types.Metrics
}

/*
NewCacheEngine creates a CacheEngine. A nil strategy means FixedTTL and nil
metrics means NoopMetrics, so the stores never check either for nil.
*/
func NewCacheEngine(
	exp expiration.Strategy,
	staleness expiration.Staleness,
	metrics types.Metrics,
) *CacheEngine {
	if exp == nil {
		exp = expiration.FixedTTL{}
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	return &CacheEngine{
		Expiration: exp,
		Staleness:  staleness,
		Metrics:    metrics,
	}
}

// IsExpired checks whether a cache entry is expired against wall-clock time.
func (e *CacheEngine) IsExpired(ent *types.CacheEntry) bool {
	return e.Expiration.IsExpired(ent, time.Now())
}

// Strict reports whether expired entries must not be served.
func (e *CacheEngine) Strict() bool {
	return e.Staleness == expiration.Strict
}

// OnWrite stamps an entry whose value was just written or regenerated.
func (e *CacheEngine) OnWrite(ent *types.CacheEntry) {
	e.Expiration.OnWrite(ent, time.Now())
}

/*
OnExpired is called every time a read finds its entry expired.
Refresh is optional and best-effort; it never slows down the read.
*/
func (e *CacheEngine) OnExpired(key string) {
	e.Metrics.Expire()
	if e.Refresh != nil {
		e.Refresh.OnExpired(key)
	}
}
