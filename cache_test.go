package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/krisalay/memo-cache/types"
)

//
// ================= TEST PRODUCERS =================
//

const (
	someStrKey   = "some_key"
	someStrValue = "some_value"
	someIntValue = 321
)

// counter is a producer that records how often it ran.
type counter struct {
	calls atomic.Int64
	delay time.Duration
	value any
	err   error
}

func (c *counter) produce(ctx context.Context, _ types.Args) (any, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.value, nil
}

func (c *counter) count() int64 { return c.calls.Load() }

func newCounter(delay time.Duration, value any) *counter {
	return &counter{delay: delay, value: value}
}

// overlap is a producer that records how many of its calls ran at once.
// Each call returns the number of calls running when it started.
type overlap struct {
	delay   time.Duration
	calls   atomic.Int64
	running atomic.Int64
	peak    atomic.Int64
}

func (o *overlap) produce(ctx context.Context, _ types.Args) (any, error) {
	o.calls.Add(1)
	n := o.running.Add(1)
	defer o.running.Add(-1)
	for {
		p := o.peak.Load()
		if n <= p || o.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(o.delay)
	return n, nil
}

// argEcho returns the named argument it was called with.
func argEcho(name string) types.Producer {
	return func(_ context.Context, args types.Args) (any, error) {
		v, _ := args.Get(name)
		return v, nil
	}
}

//
// ================= TEST METRICS =================
//

type metricCounts struct {
	hits, misses, stale, expired, refreshes, errs int
}

type testMetrics struct {
	mu sync.Mutex
	c  metricCounts
}

func (m *testMetrics) Hit()          { m.mu.Lock(); m.c.hits++; m.mu.Unlock() }
func (m *testMetrics) Miss()         { m.mu.Lock(); m.c.misses++; m.mu.Unlock() }
func (m *testMetrics) Stale()        { m.mu.Lock(); m.c.stale++; m.mu.Unlock() }
func (m *testMetrics) Expire()       { m.mu.Lock(); m.c.expired++; m.mu.Unlock() }
func (m *testMetrics) Refresh()      { m.mu.Lock(); m.c.refreshes++; m.mu.Unlock() }
func (m *testMetrics) RefreshError() { m.mu.Lock(); m.c.errs++; m.mu.Unlock() }

func (m *testMetrics) snapshot() metricCounts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c
}
