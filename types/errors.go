package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key was never set or registered, or when
	// a strict manual entry has expired.
	ErrNotFound = errors.New("cache: key not found")

	// ErrDuplicateKey is returned by a dispatcher that does not allow a key to
	// be registered twice.
	ErrDuplicateKey = errors.New("cache: duplicate key")

	// ErrInvalidDuration is returned when a TTL is not positive.
	ErrInvalidDuration = errors.New("cache: duration must be positive")

	// ErrNilProducer is returned when an auto entry is set without a producer.
	ErrNilProducer = errors.New("cache: nil producer")

	// ErrProducerFailure matches every *ProducerError with errors.Is.
	ErrProducerFailure = errors.New("cache: producer failed")
)

// NotFound wraps ErrNotFound with the offending key.
func NotFound(key string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, key)
}

// ProducerError is returned to every caller that awaited a failed producer
// invocation.
type ProducerError struct {
	Key string
	Err error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("cache: producer for %q failed: %v", e.Key, e.Err)
}

func (e *ProducerError) Unwrap() error { return e.Err }

func (e *ProducerError) Is(target error) bool { return target == ErrProducerFailure }
