package connection

import (
	"time"

	"github.com/jpillora/backoff"
)

// Backoff yields the wait before each reconnect attempt.
type Backoff interface {
	// Next returns the delay before the next attempt.
	Next() time.Duration
	// Reset is called after a successful connect.
	Reset()
}

// ConstantBackoff waits the same delay before every attempt.
type ConstantBackoff struct {
	Delay time.Duration
}

// Next returns Delay.
func (b ConstantBackoff) Next() time.Duration { return b.Delay }

// Reset is a no-op.
func (ConstantBackoff) Reset() {}

// ExponentialBackoff doubles the delay from Min up to Max, with jitter.
type ExponentialBackoff struct {
	b *backoff.Backoff
}

// NewExponentialBackoff creates a jittered exponential backoff.
func NewExponentialBackoff(min, max time.Duration) *ExponentialBackoff {
	return &ExponentialBackoff{
		b: &backoff.Backoff{
			Min:    min,
			Max:    max,
			Factor: 2,
			Jitter: true,
		},
	}
}

// Next returns the next delay.
func (e *ExponentialBackoff) Next() time.Duration {
	return e.b.Duration()
}

// Reset restarts from Min.
func (e *ExponentialBackoff) Reset() {
	e.b.Reset()
}

