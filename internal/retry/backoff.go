package retry

import (
	"time"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// FixedDelay waits the same configured delay before every re-attempt.
type FixedDelay struct {
	// delay is the pause before replacing a broken session
	delay time.Duration

	// maxAttempts is the number of re-attempts allowed per call (0 = none)
	maxAttempts int
}

// DelayOption is a functional option for configuring FixedDelay.
type DelayOption func(*FixedDelay)

// WithMaxAttempts overrides the number of re-attempts per call.
// Negative values are treated as 0.
func WithMaxAttempts(n int) DelayOption {
	return func(f *FixedDelay) {
		if n < 0 {
			n = 0
		}
		f.maxAttempts = n
	}
}

// NewFixedDelay creates a strategy that waits delay and allows
// simplepg.ReconnectAttempts re-attempts. A negative delay is treated as 0.
//
// Example:
//
//	strategy := retry.NewFixedDelay(3 * time.Second)
func NewFixedDelay(delay time.Duration, opts ...DelayOption) *FixedDelay {
	if delay < 0 {
		delay = 0
	}
	f := &FixedDelay{
		delay:       delay,
		maxAttempts: simplepg.ReconnectAttempts,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// NextDelay returns the configured delay regardless of attempt.
func (f *FixedDelay) NextDelay(attempt int) time.Duration {
	return f.delay
}

// MaxAttempts returns the maximum number of re-attempts.
func (f *FixedDelay) MaxAttempts() int {
	return f.maxAttempts
}

// Delay returns the configured delay for tests and debugging.
func (f *FixedDelay) Delay() time.Duration {
	return f.delay
}

var _ simplepg.DelayStrategy = (*FixedDelay)(nil)
