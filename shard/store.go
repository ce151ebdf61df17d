package shard

import (
	"sync/atomic"

	"github.com/krisalay/memo-cache/types"
)

/*
This file defines how entries are actually stored inside a shard. This is NOT a normal map.
- Reads should be very fast
- Reads should NOT require locks
- Writes are less frequent and can afford extra work

To achieve this, we use a technique called: "Copy-On-Write" (COW)
*/

// ShardStore is the interface used by a shard to store and retrieve cache entries.
// Entries are never removed: a key lives until the process exits.
type ShardStore interface {

	// Get retrieves an entry by key.
	Get(string) (*types.CacheEntry, bool)

	// Put inserts or replaces an entry.
	Put(string, *types.CacheEntry)

	// Keys returns a snapshot of the stored keys.
	Keys() []string

	// Size returns how many entries are stored.
	Size() int64
}

/*
cowStore is a Copy-On-Write implementation of ShardStore.

- Readers always see an immutable snapshot of the map
- Writers create a NEW copy of the map
- The new map replaces the old one atomically

Callers must serialize Put; Shard does that with its write lock.
*/
type cowStore struct {

	// data holds the current map[string]*CacheEntry snapshot.
	data atomic.Pointer[map[string]*types.CacheEntry]

	// size tracks the number of entries so Size does not need the map.
	size atomic.Int64
}

func NewCOWStore() *cowStore {
	s := &cowStore{}
	m := make(map[string]*types.CacheEntry)
	s.data.Store(&m)
	return s
}

// Get retrieves an entry from the store.
func (s *cowStore) Get(key string) (*types.CacheEntry, bool) {
	ent, ok := (*s.data.Load())[key]
	return ent, ok
}

/*
Put inserts or updates an entry in the store. This is where copy-on-write happens.

1. Load the current map
2. Create a NEW map with all existing entries
3. Add the new entry
4. Atomically replace the old map
*/
func (s *cowStore) Put(key string, ent *types.CacheEntry) {
	old := *s.data.Load()

	n := make(map[string]*types.CacheEntry, len(old)+1)
	for k, v := range old {
		n[k] = v
	}
	n[key] = ent

	s.data.Store(&n)
	s.size.Store(int64(len(n)))
}

// Keys returns the keys of the current snapshot.
func (s *cowStore) Keys() []string {
	m := *s.data.Load()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Size returns how many entries are in the store.
func (s *cowStore) Size() int64 {
	return s.size.Load()
}
