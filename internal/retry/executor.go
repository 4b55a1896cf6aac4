package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// Operation is a unit of work that talks to the current session.
type Operation func(ctx context.Context) error

// Recovery replaces the broken session with a new one.
type Recovery func(ctx context.Context) error

// Executor runs an operation and, when it fails because the session broke,
// waits, replaces the session and runs the operation again.
//
// With the default strategy the protocol is:
//  1. run the operation
//  2. on a statement-level error, return it unchanged
//  3. on a broken session: report loss, wait, recover, report recovery
//  4. run the operation once more and return whatever it returns
//
// Thread Safety:
// The Executor itself is safe for concurrent use when calling Execute().
// WithOnLost() and WithOnRecovered() return NEW instances; the receiver
// remains unchanged.
type Executor struct {
	classifier  simplepg.ErrorClassifier
	strategy    simplepg.DelayStrategy
	onLost      func(attempt int, err error, delay time.Duration)
	onRecovered func(attempt int, err error)
}

// NewExecutor creates a new executor with the given configuration.
// Panics if classifier or strategy is nil.
func NewExecutor(
	classifier simplepg.ErrorClassifier,
	strategy simplepg.DelayStrategy,
) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// WithOnLost returns a new Executor that calls callback after a broken
// session is detected and before waiting.
func (e *Executor) WithOnLost(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onLost = callback
	return &clone
}

// WithOnRecovered returns a new Executor that calls callback after the
// session was replaced and before the operation runs again. err is the
// error that caused the replacement.
func (e *Executor) WithOnRecovered(callback func(attempt int, err error)) *Executor {
	clone := *e
	clone.onRecovered = callback
	return &clone
}

// Execute runs operation, recovering from broken sessions as configured.
//
// A failed recovery is returned immediately, wrapped with the error that
// triggered it; it is not retried. The error of the last attempt is
// returned unchanged.
func (e *Executor) Execute(ctx context.Context, operation Operation, recovery Recovery) error {
	if recovery == nil {
		panic("recovery cannot be nil")
	}

	lastErr := operation(ctx)
	if lastErr == nil {
		return nil
	}

	for attempt := 0; attempt < e.strategy.MaxAttempts(); attempt++ {
		if !e.classifier.IsConnectionBroken(lastErr) {
			return lastErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onLost != nil {
			e.onLost(attempt, lastErr, delay)
		}

		if err := wait(ctx, delay); err != nil {
			return err
		}

		if err := recovery(ctx); err != nil {
			return fmt.Errorf("reconnect after %v: %w", lastErr, err)
		}

		if e.onRecovered != nil {
			e.onRecovered(attempt, lastErr)
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}

// wait blocks for d, returning early with ctx.Err() if ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
