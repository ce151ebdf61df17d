package shard

import "hash/fnv"

/*
This file decides HOW a cache key is assigned to a shard.
If every request went to the same shard, that shard's write lock would become a bottleneck.
*/

/*
Selector is the interface that decides which shard should handle a given key.
The stores do not care HOW this decision is made. Different strategies can be plugged in.
A selector must always return the same shard for the same key.
*/
type Selector interface {
	Select(string, []*Shard) *Shard
}

// HashSelector spreads keys over shards by FNV-32a hash.
type HashSelector struct{}

// hash converts a string key into a number. FNV is a fast, non-cryptographic hash commonly used in systems like this.
func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Select chooses the shard for a given key.
func (HashSelector) Select(key string, shards []*Shard) *Shard {
	if len(shards) == 1 {
		return shards[0]
	}
	return shards[hash(key)%uint32(len(shards))]
}
