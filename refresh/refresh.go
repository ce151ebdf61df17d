// This file defines the idea of a "refresh hook".
// A hook lets the cache do something extra WHEN a read finds an expired entry.
// The goal of refresh is: "Keep every entry fresh, not just the one being read".

package refresh

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

/*
Hook is the interface for refresh behavior.
If a refresh hook is configured, it is called every time a read finds its entry expired.

The store does NOT care what the hook does.
It just calls OnExpired and moves on, so OnExpired MUST NOT block.
*/
type Hook interface {
	OnExpired(key string)
}

// Target is a store whose entries can be regenerated one key at a time.
type Target interface {

	// Keys returns every key currently held.
	Keys() []string

	// RefreshIfExpired regenerates key if it is expired, reporting whether a
	// regeneration result was awaited.
	RefreshIfExpired(ctx context.Context, key string) (bool, error)
}

/*
Expired regenerates every expired key of target except the ones listed,
running at most limit regenerations at a time (limit <= 0 means no limit).

Every key is attempted even if some fail. It returns how many keys were
regenerated and the first failure.
*/
func Expired(ctx context.Context, target Target, limit int, except ...string) (int, error) {
	skip := make(map[string]struct{}, len(except))
	for _, k := range except {
		skip[k] = struct{}{}
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	var count atomic.Int64
	for _, key := range target.Keys() {
		if _, ok := skip[key]; ok {
			continue
		}
		g.Go(func() error {
			refreshed, err := target.RefreshIfExpired(ctx, key)
			if err != nil {
				glog.Warningf("refresh: regenerate %q: %v", key, err)
				return fmt.Errorf("refresh %q: %w", key, err)
			}
			if refreshed {
				count.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	return int(count.Load()), err
}
