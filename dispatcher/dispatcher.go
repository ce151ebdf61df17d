/*
Package dispatcher keeps a table of named producers in front of an auto store
and seeds the store from it on first use.

Producers are registered ahead of time. The first Get seeds every other
registered key in one concurrent pass (awaited when Eager, in the background
otherwise) and seeds the requested key itself before answering. After that a
Get is a plain read of the store.
*/
package dispatcher

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	cache "github.com/krisalay/memo-cache"
	"github.com/krisalay/memo-cache/api"
	"github.com/krisalay/memo-cache/types"
)

// Dispatcher routes reads to an auto store and bootstraps it from its
// registrations. It is safe for concurrent use.
type Dispatcher struct {
	store api.AutoCache
	cfg   config

	mu     sync.RWMutex
	regs   []Registration
	index  map[string]int // key → position of the registration that wins
	seeded map[string]bool

	boot          sync.Once
	bootstrapping atomic.Bool
	started       atomic.Bool

	// seeding makes the bulk pass and a direct Get share one producer call per key.
	seeding singleflight.Group
	wg      sync.WaitGroup
}

// New creates a Dispatcher in front of store.
func New(store api.AutoCache, opts ...Option) *Dispatcher {
	cfg := config{allowShadowing: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{
		store:  store,
		cfg:    cfg,
		index:  make(map[string]int),
		seeded: make(map[string]bool),
	}
}

/*
Register appends a producer for key to the table. args, if given, are merged
in order and passed to producer on every invocation.

Registering a key again replaces the earlier registration (unless
DisallowShadowing was given). If the key was already seeded, the next Get of it
seeds it again with the new producer.
*/
func (d *Dispatcher) Register(key string, ttl time.Duration, producer types.Producer, args ...types.Args) error {
	reg := Registration{Key: key, TTL: ttl, Producer: producer}
	for _, a := range args {
		reg.Args = reg.Args.Merge(a)
	}
	if err := reg.validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[key]; ok {
		if !d.cfg.allowShadowing {
			return types.ErrDuplicateKey
		}
		delete(d.seeded, key)
	}
	reg.pos = len(d.regs)
	d.regs = append(d.regs, reg)
	d.index[key] = reg.pos
	return nil
}

/*
Get returns the value for a registered key.

BEHAVIOR:
---------
1. Unregistered key: fails with types.ErrNotFound.
2. First call: starts the bootstrap of every other key (once per Dispatcher).
3. Key not seeded yet: runs its producer now and stores the result.
4. Reads the key from the store.

A key whose bootstrap seeding failed is simply seeded again by its own Get.
*/
func (d *Dispatcher) Get(ctx context.Context, key string) (any, error) {
	reg, ok := d.lookup(key)
	if !ok {
		return nil, types.NotFound(key)
	}

	if d.started.Load() && d.isSeeded(key) {
		return d.store.Get(ctx, key)
	}

	d.boot.Do(func() { d.bootstrap(ctx, key) })

	if !d.isSeeded(key) {
		if err := d.seed(ctx, reg); err != nil {
			return nil, err
		}
	}

	d.started.Store(true)
	return d.store.Get(ctx, key)
}

// Started reports whether a Get has completed its bootstrap step.
func (d *Dispatcher) Started() bool {
	return d.started.Load()
}

// Bootstrapping reports whether the bulk seeding pass is still running.
func (d *Dispatcher) Bootstrapping() bool {
	return d.bootstrapping.Load()
}

// Keys returns the registered keys in registration order, once each.
func (d *Dispatcher) Keys() []string {
	regs := d.winners()
	keys := make([]string, len(regs))
	for i, r := range regs {
		keys[i] = r.Key
	}
	return keys
}

// Wait blocks until a background bootstrap, if any, has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// bootstrap seeds every registration except the one for key. Eager
// dispatchers run it inline; the others hand it to a goroutine that outlives
// ctx's cancellation.
func (d *Dispatcher) bootstrap(ctx context.Context, key string) {
	d.bootstrapping.Store(true)

	var regs []Registration
	for _, r := range d.winners() {
		if r.Key != key {
			regs = append(regs, r)
		}
	}

	if d.cfg.eager {
		d.seedAll(ctx, regs)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.seedAll(context.WithoutCancel(ctx), regs)
	}()
}

func (d *Dispatcher) seedAll(ctx context.Context, regs []Registration) {
	defer d.bootstrapping.Store(false)

	start := time.Now()
	var g errgroup.Group
	if d.cfg.concurrency > 0 {
		g.SetLimit(d.cfg.concurrency)
	}
	for _, r := range regs {
		g.Go(func() error {
			if err := d.seed(ctx, r); err != nil {
				glog.Warningf("dispatcher: seeding %q: %v", r.Key, err)
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		glog.Errorf("dispatcher: bootstrap finished with errors: %v", err)
	}
	if glog.V(2) {
		glog.Infof("dispatcher: bootstrapped %d keys in %s", len(regs), time.Since(start))
	}
}

// seed stores the value of reg's producer. Concurrent seeds of one key share
// a single producer call.
func (d *Dispatcher) seed(ctx context.Context, reg Registration) error {
	_, err, _ := d.seeding.Do(reg.Key+"\x00"+strconv.Itoa(reg.pos), func() (any, error) {
		if d.isSeeded(reg.Key) {
			return nil, nil
		}
		err := d.store.Set(ctx, reg.Key, reg.TTL, reg.Producer, cache.WithArgs(reg.Args))
		if err != nil {
			return nil, err
		}
		d.markSeeded(reg)
		return nil, nil
	})
	return err
}

func (d *Dispatcher) lookup(key string) (Registration, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[key]
	if !ok {
		return Registration{}, false
	}
	return d.regs[i], true
}

func (d *Dispatcher) isSeeded(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.seeded[key]
}

// markSeeded records reg as seeded unless it was shadowed while its producer ran.
func (d *Dispatcher) markSeeded(reg Registration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index[reg.Key] == reg.pos {
		d.seeded[reg.Key] = true
	}
}

// winners returns, in registration order, the registration that wins for
// each key.
func (d *Dispatcher) winners() []Registration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Registration, 0, len(d.index))
	for i, r := range d.regs {
		if d.index[r.Key] == i {
			out = append(out, r)
		}
	}
	return out
}
