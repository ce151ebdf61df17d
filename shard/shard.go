package shard

import (
	"sync"

	"github.com/krisalay/memo-cache/types"
)

/*
This file defines what a "Shard" is. A shard is a small, independent piece of the entry map.
Instead of having: One big map and one big lock
We split the keys over many shards. Each shard:
- Holds some portion of the entries
- Has its own lock for writes

Reads never take a lock.
*/
type Shard struct {

	// Store holds the key → entry data for this shard.
	// It is a copy-on-write store that allows lock-free reads.
	Store ShardStore

	// mu serializes writers of this shard.
	mu sync.Mutex
}

func NewShard() *Shard {
	return &Shard{Store: NewCOWStore()}
}

/*
Update applies fn to the current entry for key (nil if absent) while holding
the shard write lock, and publishes what fn returns. If fn returns nil nothing
is written.

fn must not modify the entry it is given: clone it first. Update returns the
entry that is current once it is done.
*/
func (s *Shard) Update(key string, fn func(old *types.CacheEntry) *types.CacheEntry) *types.CacheEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, _ := s.Store.Get(key)
	ent := fn(old)
	if ent == nil {
		return old
	}
	s.Store.Put(key, ent)
	return ent
}
