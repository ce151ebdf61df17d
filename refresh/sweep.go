package refresh

import (
	"context"
	"sync"

	"github.com/golang/glog"
)

/*
Sweep is a Hook that piggybacks a full refresh on any expired read.

When one key is found expired, the others have usually gone stale too. Sweep
regenerates all of them in the background so later reads of those keys hit a
fresh entry instead of paying producer latency.

Only one sweep runs at a time. An expired read that arrives while a sweep is
running is not dropped: once the running pass ends, another pass is made over
the keys as they are then, so keys that expired after the first pass looked
at them are picked up too.
*/
type Sweep struct {
	target Target
	limit  int

	// mu guards the fields below; idle is signalled when running turns false.
	mu      sync.Mutex
	idle    *sync.Cond
	running bool
	pending bool
	next    string
	stopped bool
}

// NewSweep creates a sweep over target running at most limit regenerations
// concurrently (limit <= 0 means no limit).
func NewSweep(target Target, limit int) *Sweep {
	s := &Sweep{target: target, limit: limit}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// OnExpired starts a background sweep of every key except key, which the
// caller regenerates itself. If a sweep is already running, another pass is
// queued behind it.
func (s *Sweep) OnExpired(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.stopped:
		return
	case s.running:
		s.pending, s.next = true, key
		return
	}
	s.running = true
	go s.run(key)
}

func (s *Sweep) run(key string) {
	for {
		n, err := Expired(context.Background(), s.target, s.limit, key)
		if err != nil {
			glog.Warningf("refresh: sweep triggered by %q: %v", key, err)
		}
		if glog.V(2) {
			glog.Infof("refresh: sweep triggered by %q regenerated %d keys", key, n)
		}

		s.mu.Lock()
		if !s.pending || s.stopped {
			s.running, s.pending = false, false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		key = s.next
		s.pending = false
		s.mu.Unlock()
	}
}

// Running reports whether a sweep is in progress.
func (s *Sweep) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until the current sweep, including any pass queued behind it,
// has finished.
func (s *Sweep) Wait() {
	s.mu.Lock()
	for s.running {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// Stop makes later expired reads a no-op, drops any queued pass and waits for
// the running one.
func (s *Sweep) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.pending = false
	s.mu.Unlock()
	s.Wait()
}
