package types

import "context"

/*
Producer is the contract between the cache and whatever computes values.

It is called when an auto entry is first set without a value, and again every
time the entry has to be regenerated. The same Args captured at registration
are passed on every call. Producers are expected to be I/O bound; the cache
never runs two of them for the same key at once.
*/
type Producer func(ctx context.Context, args Args) (any, error)

// Args are named arguments forwarded verbatim to a Producer.
type Args map[string]any

// Merge returns a new Args holding a's entries overridden by o's.
// Neither a nor o is modified.
func (a Args) Merge(o Args) Args {
	out := make(Args, len(a)+len(o))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Get returns the named argument.
func (a Args) Get(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}
