package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/types"
)

type countingMetrics struct {
	types.NoopMetrics
	expired int
}

func (m *countingMetrics) Expire() { m.expired++ }

type recordingHook struct{ keys []string }

func (h *recordingHook) OnExpired(key string) { h.keys = append(h.keys, key) }

func TestNewCacheEngine_Defaults(t *testing.T) {
	e := NewCacheEngine(nil, expiration.Lazy, nil)

	assert.IsType(t, expiration.FixedTTL{}, e.Expiration)
	assert.IsType(t, types.NoopMetrics{}, e.Metrics)
	assert.False(t, e.Strict())
}

func TestCacheEngine_IsExpired(t *testing.T) {
	e := NewCacheEngine(nil, expiration.Strict, nil)

	ent := &types.CacheEntry{Duration: time.Hour}
	e.OnWrite(ent)
	assert.False(t, e.IsExpired(ent))

	ent.SetAt = time.Now().Add(-2 * time.Hour)
	assert.True(t, e.IsExpired(ent))
}

func TestCacheEngine_OnExpired(t *testing.T) {
	m := &countingMetrics{}
	h := &recordingHook{}

	e := NewCacheEngine(nil, expiration.Strict, m)
	e.OnExpired("a")
	assert.Equal(t, 1, m.expired)

	e.Refresh = h
	e.OnExpired("b")
	assert.Equal(t, 2, m.expired)
	assert.Equal(t, []string{"b"}, h.keys)
}
