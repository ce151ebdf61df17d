package expiration

import (
	"time"

	"github.com/krisalay/memo-cache/types"
)

/*
FixedTTL expires an entry Duration after its value was computed. Reads do not
extend the lifetime; only a write or a regeneration does.
*/
type FixedTTL struct{}

// IsExpired reports whether now - SetAt >= Duration.
func (FixedTTL) IsExpired(ent *types.CacheEntry, now time.Time) bool {
	return now.Sub(ent.SetAt) >= ent.Duration
}

// OnWrite stamps the entry with now. SetAt never moves backward, so a slow
// writer finishing with an older clock reading cannot rewind an entry.
func (FixedTTL) OnWrite(ent *types.CacheEntry, now time.Time) {
	if now.After(ent.SetAt) {
		ent.SetAt = now
	}
}
