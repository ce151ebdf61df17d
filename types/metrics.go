package types

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the cache lifecycle. The cache will call these methods whenever something happens.
Implementations must be safe for concurrent use.
*/
type Metrics interface {

	// Hit is called when a fresh value is returned.
	Hit()

	// Miss is called when a read fails with ErrNotFound.
	Miss()

	// Stale is called when a lazy read returns an expired value.
	Stale()

	// Expire is called when a read finds its entry past its TTL.
	Expire()

	// Refresh is called when a producer regeneration starts.
	Refresh()

	// RefreshError is called when a regeneration fails.
	RefreshError()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

It lets the stores call metrics unconditionally instead of
checking for nil on every read.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()          {}
func (NoopMetrics) Miss()         {}
func (NoopMetrics) Stale()        {}
func (NoopMetrics) Expire()       {}
func (NoopMetrics) Refresh()      {}
func (NoopMetrics) RefreshError() {}
