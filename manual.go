package cache

import (
	"context"
	"time"

	"github.com/krisalay/memo-cache/engine"
	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/types"
)

/*
ManualStore is a TTL cache populated by its callers. It has no producer and
never regenerates anything: once an entry expires the caller must Set it again.

With Strict staleness an expired entry reads as ErrNotFound. With Lazy
staleness the expired value is still returned.
*/
type ManualStore struct {
	c *shardedCache
}

// NewManualStore creates an empty ManualStore.
func NewManualStore(staleness expiration.Staleness, opts ...Option) *ManualStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	eng := engine.NewCacheEngine(o.expiration, staleness, o.metrics)
	return &ManualStore{c: newShardedCache(o.shards, eng)}
}

// Set unconditionally overwrites the entry for key.
func (m *ManualStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return types.ErrInvalidDuration
	}
	m.c.update(key, func(*types.CacheEntry) *types.CacheEntry {
		ent := &types.CacheEntry{Key: key, Value: value, Duration: ttl}
		m.c.engine.OnWrite(ent)
		return ent
	})
	return nil
}

// Get returns the value stored for key.
func (m *ManualStore) Get(_ context.Context, key string) (any, error) {
	ent, expired, err := m.c.lookup(key)
	if err != nil {
		return nil, err
	}
	if !expired {
		return ent.Value, nil
	}

	m.c.engine.OnExpired(key)
	if m.c.engine.Strict() {
		m.c.engine.Metrics.Miss()
		return nil, types.NotFound(key)
	}
	m.c.engine.Metrics.Stale()
	return ent.Value, nil
}

// Keys returns every key that was ever set, expired or not.
func (m *ManualStore) Keys() []string {
	return m.c.Keys()
}

// Len returns the number of keys held.
func (m *ManualStore) Len() int {
	return m.c.Len()
}
