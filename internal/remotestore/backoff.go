package remotestore

import "time"

const (
	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// backoff doubles the resubscribe delay after every failed attempt, capped
// at max. A successful connect resets it.
type backoff struct {
	min time.Duration
	max time.Duration
	cur time.Duration
}

func newBackoff(min, max time.Duration) *backoff {
	if min <= 0 {
		min = defaultMinBackoff
	}
	if max < min {
		max = min
	}
	return &backoff{min: min, max: max}
}

func (b *backoff) Next() time.Duration {
	if b.cur == 0 {
		b.cur = b.min
		return b.cur
	}
	b.cur *= 2
	if b.cur > b.max {
		b.cur = b.max
	}
	return b.cur
}

func (b *backoff) Reset() {
	b.cur = 0
}
