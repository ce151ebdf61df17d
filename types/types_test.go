package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgs_Merge(t *testing.T) {
	base := Args{"a": 1, "b": 2}
	over := Args{"b": 3, "c": 4}

	got := base.Merge(over)

	assert.Equal(t, Args{"a": 1, "b": 3, "c": 4}, got)
	assert.Equal(t, Args{"a": 1, "b": 2}, base, "receiver is not modified")
	assert.Equal(t, Args{"b": 3, "c": 4}, over, "argument is not modified")

	var none Args
	assert.Equal(t, Args{"c": 4}, none.Merge(Args{"c": 4}))
	assert.Empty(t, none.Merge(nil))
}

func TestProducerError(t *testing.T) {
	cause := errors.New("db down")
	err := error(&ProducerError{Key: "k", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrProducerFailure)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"k"`)
}

func TestNotFound(t *testing.T) {
	err := NotFound("k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"k"`)
}

func TestCacheEntry_Clone(t *testing.T) {
	e := &CacheEntry{Key: "k", Value: 1}
	c := e.Clone()
	c.Value = 2

	assert.Equal(t, 1, e.Value)
	assert.False(t, e.Auto())
}
