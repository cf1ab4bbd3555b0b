package store

import "time"

// Clock returns the current time.
type Clock func() time.Time

type options struct {
	clock Clock
}

// Option configures a store.
type Option func(*options)

// WithClock sets the clock used to stamp updated_at on mutations.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func newOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
