package dispatcher

import (
	"time"

	"github.com/krisalay/memo-cache/types"
)

// Registration is one row of the dispatcher's producer table.
type Registration struct {
	Key      string
	TTL      time.Duration
	Producer types.Producer
	Args     types.Args

	pos int // index in the dispatcher's table
}

func (r Registration) validate() error {
	if r.TTL <= 0 {
		return types.ErrInvalidDuration
	}
	if r.Producer == nil {
		return types.ErrNilProducer
	}
	return nil
}
