package cache

import (
	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/types"
)

// DefaultShards is the number of shards used when WithShards is not given.
const DefaultShards = 8

type options struct {
	shards      int
	metrics     types.Metrics
	expiration  expiration.Strategy
	defaultArgs types.Args
	sweep       bool
	sweepLimit  int
}

func defaultOptions() options {
	return options{
		shards: DefaultShards,
		sweep:  true,
	}
}

// Option configures a ManualStore or AutoStore.
type Option func(*options)

// WithShards sets how many shards the key space is split over.
func WithShards(n int) Option { return func(o *options) { o.shards = n } }

// WithMetrics sets the sink for cache events.
func WithMetrics(m types.Metrics) Option { return func(o *options) { o.metrics = m } }

// WithExpiration replaces the default FixedTTL strategy.
func WithExpiration(s expiration.Strategy) Option { return func(o *options) { o.expiration = s } }

// WithDefaultArgs sets producer arguments every auto entry starts from. Args
// given to Set override them per key. Ignored by ManualStore.
func WithDefaultArgs(args types.Args) Option {
	return func(o *options) { o.defaultArgs = args }
}

// WithoutSweep stops a strict AutoStore from refreshing every other stale key
// when one expired key is read.
func WithoutSweep() Option { return func(o *options) { o.sweep = false } }

// WithSweepConcurrency bounds how many producers a sweep runs at once.
// n <= 0 means no bound.
func WithSweepConcurrency(n int) Option { return func(o *options) { o.sweepLimit = n } }

type setOptions struct {
	value    any
	hasValue bool
	args     types.Args
}

// SetOption configures a single AutoStore.Set call.
type SetOption func(*setOptions)

// WithValue seeds the entry with v instead of invoking the producer.
func WithValue(v any) SetOption {
	return func(o *setOptions) { o.value, o.hasValue = v, true }
}

// WithArgs merges args into the producer arguments stored for the key.
func WithArgs(args types.Args) SetOption {
	return func(o *setOptions) { o.args = o.args.Merge(args) }
}
