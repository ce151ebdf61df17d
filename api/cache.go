package api

import (
	"context"
	"time"

	cache "github.com/krisalay/memo-cache"
	"github.com/krisalay/memo-cache/types"
)

/*
This file defines the PUBLIC contracts of the memo cache.
Consumers such as the dispatcher depend on these interfaces, not on the
concrete stores, so a store can be swapped or faked without touching them.
*/

// Reader is the read side shared by every store.
type Reader interface {

	/*
		Get retrieves the value associated with the given key.

		BEHAVIOR:
		-------------------
		1. Key never set: fails with types.ErrNotFound.
		2. Entry fresh: returns the value immediately.
		3. Entry expired: depends on the store's staleness policy.
		   - Strict manual: fails with types.ErrNotFound.
		   - Strict auto: waits for the single in-flight regeneration.
		   - Lazy: returns the expired value; auto stores refresh it in the background.
	*/
	Get(ctx context.Context, key string) (any, error)

	// Keys returns every key held, expired or not.
	Keys() []string
}

// ManualCache is a store its callers populate directly.
type ManualCache interface {
	Reader

	// Set overwrites the value for key and restarts its TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// AutoCache is a store that owns a producer per key.
type AutoCache interface {
	Reader

	/*
		Set registers producer for key.

		- With cache.WithValue the entry is seeded without calling producer.
		- Otherwise producer is called and awaited.
		- cache.WithArgs merges into the arguments already stored for key.
	*/
	Set(ctx context.Context, key string, ttl time.Duration, producer types.Producer, opts ...cache.SetOption) error
}

var (
	_ ManualCache = (*cache.ManualStore)(nil)
	_ AutoCache   = (*cache.AutoStore)(nil)
)
