package simplepg

import "time"

// ErrorClassifier separates errors that mean the session itself is unusable
// from errors about the statement that was sent over it.
type ErrorClassifier interface {
	// IsConnectionBroken returns true if err indicates the underlying session
	// is broken and a fresh session may succeed where this one failed.
	IsConnectionBroken(err error) bool
}

// DelayStrategy decides how long to wait before replacing a broken session,
// and how many times a single call may do so.
type DelayStrategy interface {
	// NextDelay returns the duration to wait before the given re-attempt.
	// attempt is zero-indexed (0 = first re-attempt).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of re-attempts (0 = none).
	MaxAttempts() int
}
