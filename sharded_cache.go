package cache

import (
	"github.com/krisalay/memo-cache/engine"
	"github.com/krisalay/memo-cache/shard"
	"github.com/krisalay/memo-cache/types"
)

/*
shardedCache is the entry map shared by ManualStore and AutoStore.
It connects:
- shards (where entries live)
- the engine (TTL, staleness, refresh hook, metrics)

The stores on top of it decide how entries are populated.
*/
type shardedCache struct {
	// shards are the actual storage units.
	shards []*shard.Shard

	// engine contains the "rules" of the cache.
	engine *engine.CacheEngine

	// selector decides which shard a key should go to.
	selector shard.Selector
}

func newShardedCache(shards int, engine *engine.CacheEngine) *shardedCache {
	if shards < 1 {
		shards = 1
	}
	s := make([]*shard.Shard, shards)
	for i := range s {
		s[i] = shard.NewShard()
	}

	return &shardedCache{
		shards:   s,
		engine:   engine,
		selector: shard.HashSelector{},
	}
}

func (c *shardedCache) shardFor(key string) *shard.Shard {
	return c.selector.Select(key, c.shards)
}

// load returns the published entry for key without taking a lock.
func (c *shardedCache) load(key string) (*types.CacheEntry, bool) {
	return c.shardFor(key).Store.Get(key)
}

// update runs fn under the write lock of key's shard. See shard.Shard.Update.
func (c *shardedCache) update(key string, fn func(old *types.CacheEntry) *types.CacheEntry) *types.CacheEntry {
	return c.shardFor(key).Update(key, fn)
}

/*
lookup is the read path common to every store.

It returns the entry and whether it is expired. A missing key is recorded as
a miss and reported as ErrNotFound; a fresh entry is recorded as a hit. What
to do with an expired entry is left to the caller.
*/
func (c *shardedCache) lookup(key string) (*types.CacheEntry, bool, error) {
	ent, ok := c.load(key)
	if !ok {
		c.engine.Metrics.Miss()
		return nil, false, types.NotFound(key)
	}
	if !c.engine.IsExpired(ent) {
		c.engine.Metrics.Hit()
		return ent, false, nil
	}
	return ent, true, nil
}

// Keys returns every key held by the cache, in no particular order.
func (c *shardedCache) Keys() []string {
	var keys []string
	for _, sh := range c.shards {
		keys = append(keys, sh.Store.Keys()...)
	}
	return keys
}

// Len returns the number of keys held.
func (c *shardedCache) Len() int {
	var n int64
	for _, sh := range c.shards {
		n += sh.Store.Size()
	}
	return int(n)
}
