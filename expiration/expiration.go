// This file defines how cache entries expire over time, and what a read does
// with an entry once it has.

package expiration

import (
	"fmt"
	"strings"
	"time"

	"github.com/krisalay/memo-cache/types"
)

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
expiration logic into the stores, we define a strategy so expiration behavior can be swapped easily.
*/
type Strategy interface {

	// IsExpired checks if the entry is expired at now.
	IsExpired(*types.CacheEntry, time.Time) bool

	// OnWrite is called whenever an entry's value is written or regenerated.
	OnWrite(*types.CacheEntry, time.Time)
}

// Staleness decides what a read does with an expired entry.
type Staleness uint8

const (
	// Strict treats an expired entry as absent. Auto stores regenerate it
	// before answering; manual stores report ErrNotFound.
	Strict Staleness = iota

	// Lazy returns the expired value as is. Auto stores regenerate it in the
	// background.
	Lazy
)

func (s Staleness) String() string {
	switch s {
	case Strict:
		return "strict"
	case Lazy:
		return "lazy"
	default:
		return fmt.Sprintf("Staleness(%d)", uint8(s))
	}
}

// ParseStaleness parses "strict" or "lazy", ignoring case.
func ParseStaleness(s string) (Staleness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return Strict, nil
	case "lazy":
		return Lazy, nil
	}
	return 0, fmt.Errorf("expiration: unknown staleness %q", s)
}
