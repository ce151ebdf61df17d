package types

import "time"

/*
CacheEntry is one memoized value plus its freshness metadata.

Once an entry is published to a shard it is never mutated. Writers Clone it,
change the copy and publish the copy, so a reader always sees Value, SetAt and
Refreshing that belong together.
*/
type CacheEntry struct {
	Key   string
	Value any

	// SetAt is when Value was last (re)computed. It only moves forward.
	SetAt time.Time

	// Duration is the TTL. Always > 0.
	Duration time.Duration

	// Producer regenerates Value. Nil for manually populated entries.
	Producer Producer

	// Args are passed to Producer on every invocation.
	Args Args

	// Refreshing is true while a regeneration for this key is in flight.
	Refreshing bool
}

// Clone returns a shallow copy. Args is shared; it is never modified in place.
func (e *CacheEntry) Clone() *CacheEntry {
	c := *e
	return &c
}

// Auto reports whether the entry can regenerate itself.
func (e *CacheEntry) Auto() bool {
	return e.Producer != nil
}
