package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "github.com/krisalay/memo-cache"
	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/types"
)

type someStruct struct {
	Str string
	Int int
}

func TestManualStore_SetAndGet(t *testing.T) {
	ctx := context.Background()

	for _, staleness := range []expiration.Staleness{expiration.Strict, expiration.Lazy} {
		t.Run(staleness.String(), func(t *testing.T) {
			s := cache.NewManualStore(staleness)

			require.NoError(t, s.Set(ctx, someStrKey, someStrValue, time.Second))
			require.NoError(t, s.Set(ctx, "int", someIntValue, 1111*time.Millisecond))
			require.NoError(t, s.Set(ctx, "struct", someStruct{someStrValue, someIntValue}, time.Second))

			v, err := s.Get(ctx, someStrKey)
			require.NoError(t, err)
			assert.Equal(t, someStrValue, v)

			v, err = s.Get(ctx, "int")
			require.NoError(t, err)
			assert.Equal(t, someIntValue, v)

			v, err = s.Get(ctx, "struct")
			require.NoError(t, err)
			assert.Equal(t, someStruct{someStrValue, someIntValue}, v)

			assert.ElementsMatch(t, []string{someStrKey, "int", "struct"}, s.Keys())
			assert.Equal(t, 3, s.Len())
		})
	}
}

func TestManualStore_GetNeverSet(t *testing.T) {
	s := cache.NewManualStore(expiration.Lazy)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestManualStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := cache.NewManualStore(expiration.Strict)

	require.NoError(t, s.Set(ctx, "k", "v1", time.Second))
	require.NoError(t, s.Set(ctx, "k", "v2", 2*time.Second))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 1, s.Len())
}

func TestManualStore_RejectsNonPositiveTTL(t *testing.T) {
	s := cache.NewManualStore(expiration.Strict)

	assert.ErrorIs(t, s.Set(context.Background(), "k", "v", 0), types.ErrInvalidDuration)
	assert.ErrorIs(t, s.Set(context.Background(), "k", "v", -time.Second), types.ErrInvalidDuration)
}

func TestManualStore_StrictExpiry(t *testing.T) {
	ctx := context.Background()
	m := &testMetrics{}
	s := cache.NewManualStore(expiration.Strict, cache.WithMetrics(m))

	require.NoError(t, s.Set(ctx, someStrKey, someStrValue, 100*time.Millisecond))

	time.Sleep(60 * time.Millisecond)
	v, err := s.Get(ctx, someStrKey)
	require.NoError(t, err, "not yet expired")
	assert.Equal(t, someStrValue, v)

	time.Sleep(60 * time.Millisecond)
	_, err = s.Get(ctx, someStrKey)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// expired entries are not refreshed: the caller has to set again
	_, err = s.Get(ctx, someStrKey)
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, s.Set(ctx, someStrKey, "again", time.Second))
	v, err = s.Get(ctx, someStrKey)
	require.NoError(t, err)
	assert.Equal(t, "again", v)

	snap := m.snapshot()
	assert.Equal(t, 2, snap.hits)
	assert.Equal(t, 2, snap.misses)
	assert.Equal(t, 2, snap.expired)
}

func TestManualStore_LazyServesExpired(t *testing.T) {
	ctx := context.Background()
	m := &testMetrics{}
	s := cache.NewManualStore(expiration.Lazy, cache.WithMetrics(m))

	require.NoError(t, s.Set(ctx, someStrKey, someStrValue, 50*time.Millisecond))
	time.Sleep(70 * time.Millisecond)

	v, err := s.Get(ctx, someStrKey)
	require.NoError(t, err)
	assert.Equal(t, someStrValue, v)
	assert.Equal(t, 1, m.snapshot().stale)
}

func TestManualStore_ConcurrentSetGet(t *testing.T) {
	ctx := context.Background()
	s := cache.NewManualStore(expiration.Strict, cache.WithShards(4))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, "k", i, time.Second))
			_, err := s.Get(ctx, "k")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
}
