package cache

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/singleflight"

	"github.com/krisalay/memo-cache/engine"
	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/refresh"
	"github.com/krisalay/memo-cache/types"
)

/*
AutoStore is a TTL cache that owns a producer per key and regenerates values
itself when they expire.

Regeneration is single-flight: however many readers find a key expired at the
same time, its producer runs once and they all share the outcome.

  - Strict: an expired read waits for the regeneration and returns its result
    (or its *types.ProducerError). The same read also sweeps every other
    expired key in the background.
  - Lazy: an expired read returns the cached value immediately and the
    regeneration runs in the background. A failed background regeneration
    leaves the previous value in place; it is logged and counted, never
    returned.

A Set that has to run its producer never overlaps a regeneration of the same
key: it waits for one in flight, and a regeneration started meanwhile waits
for the Set and then finds the entry fresh. Sets of one key may run alongside
each other; the one whose producer finishes last is stored.
*/
type AutoStore struct {
	c           *shardedCache
	defaultArgs types.Args
	sweepLimit  int

	// sf prevents several goroutines from running the same key's producer at once.
	sf singleflight.Group

	// gates holds a *sync.RWMutex per key. Set runs its producer under the
	// read lock, a regeneration under the write lock.
	gates sync.Map

	// sweep is nil for lazy stores and when WithoutSweep is given.
	sweep *refresh.Sweep

	// mu guards busy and closed; idle is signalled when busy drops to zero.
	mu     sync.Mutex
	idle   *sync.Cond
	busy   int
	closed bool
}

// NewAutoStore creates an empty AutoStore.
func NewAutoStore(staleness expiration.Staleness, opts ...Option) *AutoStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	eng := engine.NewCacheEngine(o.expiration, staleness, o.metrics)

	a := &AutoStore{
		c:           newShardedCache(o.shards, eng),
		defaultArgs: o.defaultArgs,
		sweepLimit:  o.sweepLimit,
	}
	a.idle = sync.NewCond(&a.mu)
	if eng.Strict() && o.sweep {
		a.sweep = refresh.NewSweep(a, o.sweepLimit)
		eng.Refresh = a.sweep
	}
	return a
}

/*
Set registers producer for key with the given TTL.

The first Set of a key starts from the store's default args; later calls
merge the given args into the ones already stored, so arguments are only ever
overridden, never dropped. Duration and producer are replaced.

If WithValue is given the entry is seeded with that value. Otherwise producer
is invoked and awaited, and its failure is returned as a *types.ProducerError
without touching the entry.
*/
func (a *AutoStore) Set(
	ctx context.Context,
	key string,
	ttl time.Duration,
	producer types.Producer,
	opts ...SetOption,
) error {
	if ttl <= 0 {
		return types.ErrInvalidDuration
	}
	if producer == nil {
		return types.ErrNilProducer
	}

	var so setOptions
	for _, opt := range opts {
		opt(&so)
	}

	value := so.value
	if !so.hasValue {
		g := a.gate(key)
		g.RLock()
		defer g.RUnlock()

		v, err := a.invoke(ctx, key, producer, a.argsFor(key, so.args))
		if err != nil {
			return err
		}
		value = v
	}

	a.c.update(key, func(old *types.CacheEntry) *types.CacheEntry {
		ent := &types.CacheEntry{
			Key:      key,
			Value:    value,
			Duration: ttl,
			Producer: producer,
		}
		if old != nil {
			ent.Args = old.Args.Merge(so.args)
			ent.SetAt = old.SetAt
			ent.Refreshing = old.Refreshing
		} else {
			ent.Args = a.defaultArgs.Merge(so.args)
		}
		a.c.engine.OnWrite(ent)
		return ent
	})
	return nil
}

// Get returns the value for key, regenerating it if it has expired. See
// AutoStore for how Strict and Lazy stores differ.
func (a *AutoStore) Get(ctx context.Context, key string) (any, error) {
	ent, expired, err := a.c.lookup(key)
	if err != nil {
		return nil, err
	}
	if !expired {
		return ent.Value, nil
	}

	a.c.engine.OnExpired(key)

	if !a.c.engine.Strict() {
		a.c.engine.Metrics.Stale()
		if !ent.Refreshing {
			a.background(ctx, key)
		}
		return ent.Value, nil
	}

	return a.await(ctx, key)
}

// RefreshIfExpired regenerates key if it has expired, sharing any
// regeneration already in flight. It reports whether one was awaited.
func (a *AutoStore) RefreshIfExpired(ctx context.Context, key string) (bool, error) {
	ent, ok := a.c.load(key)
	if !ok {
		return false, types.NotFound(key)
	}
	if !a.c.engine.IsExpired(ent) {
		return false, nil
	}
	_, err := a.await(ctx, key)
	return true, err
}

// RefreshAll regenerates every expired key and returns how many were
// regenerated.
func (a *AutoStore) RefreshAll(ctx context.Context) (int, error) {
	return refresh.Expired(ctx, a, a.sweepLimit)
}

// Keys returns every key that was ever set.
func (a *AutoStore) Keys() []string {
	return a.c.Keys()
}

// Len returns the number of keys held.
func (a *AutoStore) Len() int {
	return a.c.Len()
}

// Contains reports whether key has been set, expired or not.
func (a *AutoStore) Contains(key string) bool {
	_, ok := a.c.load(key)
	return ok
}

// Entry returns a copy of the entry stored for key.
func (a *AutoStore) Entry(key string) (types.CacheEntry, bool) {
	ent, ok := a.c.load(key)
	if !ok {
		return types.CacheEntry{}, false
	}
	return *ent, true
}

// Wait blocks until the background regenerations and the sweep running at
// the time of the call have finished. It may be called while reads go on.
func (a *AutoStore) Wait() {
	a.mu.Lock()
	for a.busy > 0 {
		a.idle.Wait()
	}
	a.mu.Unlock()

	if a.sweep != nil {
		a.sweep.Wait()
	}
}

/*
Close stops the store from starting background work and waits for the work
already started.

The store stays readable: lazy reads of expired keys keep returning the
cached value but no longer regenerate it, and strict reads still regenerate
the key they ask for without sweeping the others.
*/
func (a *AutoStore) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	if a.sweep != nil {
		a.sweep.Stop()
	}
	a.Wait()
}

func (a *AutoStore) argsFor(key string, extra types.Args) types.Args {
	if old, ok := a.c.load(key); ok {
		return old.Args.Merge(extra)
	}
	return a.defaultArgs.Merge(extra)
}

func (a *AutoStore) invoke(ctx context.Context, key string, producer types.Producer, args types.Args) (any, error) {
	v, err := producer(ctx, args)
	if err != nil {
		return nil, &types.ProducerError{Key: key, Err: err}
	}
	return v, nil
}

// await joins the regeneration of key. The caller may stop waiting when ctx
// is done; the regeneration itself carries on.
func (a *AutoStore) await(ctx context.Context, key string) (any, error) {
	select {
	case res := <-a.regenerate(ctx, key):
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *AutoStore) gate(key string) *sync.RWMutex {
	if g, ok := a.gates.Load(key); ok {
		return g.(*sync.RWMutex)
	}
	g, _ := a.gates.LoadOrStore(key, new(sync.RWMutex))
	return g.(*sync.RWMutex)
}

func (a *AutoStore) background(ctx context.Context, key string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.busy++
	a.mu.Unlock()

	ch := a.regenerate(ctx, key)
	go func() {
		defer a.done()
		if res := <-ch; res.Err != nil {
			glog.Warningf("cache: background regeneration of %q: %v", key, res.Err)
		}
	}()
}

func (a *AutoStore) done() {
	a.mu.Lock()
	a.busy--
	if a.busy == 0 {
		a.idle.Broadcast()
	}
	a.mu.Unlock()
}

/*
regenerate returns the outcome of the single in-flight regeneration of key,
starting one if none is running.

The entry is re-checked under the shard lock first: a reader that saw it
expired may arrive just after another regeneration finished, in which case the
fresh value is returned and the producer is not called again.

The producer runs detached from ctx's cancellation because every waiter
shares it. The key's gate is held exclusively for the whole regeneration, so a
Set running its producer finishes first and one arriving later waits.
*/
func (a *AutoStore) regenerate(ctx context.Context, key string) <-chan singleflight.Result {
	return a.sf.DoChan(key, func() (any, error) {
		g := a.gate(key)
		g.Lock()
		defer g.Unlock()

		var (
			cur   *types.CacheEntry
			stale bool
		)
		a.c.update(key, func(old *types.CacheEntry) *types.CacheEntry {
			cur = old
			if old == nil || !a.c.engine.IsExpired(old) {
				return nil
			}
			stale = true
			cur = old.Clone()
			cur.Refreshing = true
			return cur
		})
		if cur == nil {
			return nil, types.NotFound(key)
		}
		if !stale {
			return cur.Value, nil
		}

		a.c.engine.Metrics.Refresh()
		v, err := a.invoke(context.WithoutCancel(ctx), key, cur.Producer, cur.Args)

		a.c.update(key, func(old *types.CacheEntry) *types.CacheEntry {
			n := old.Clone()
			n.Refreshing = false
			if err == nil {
				n.Value = v
				a.c.engine.OnWrite(n)
			}
			return n
		})
		if err != nil {
			a.c.engine.Metrics.RefreshError()
			return nil, err
		}
		return v, nil
	})
}
