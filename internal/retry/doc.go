// Package retry implements the reconnect-and-retry-once protocol used by
// every Connection operation.
//
// # Example Usage
//
//	classifier := retry.NewConnectionClassifier()
//	strategy := retry.NewFixedDelay(3 * time.Second)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx,
//	    func(ctx context.Context) error { return runStatement(ctx, session) },
//	    func(ctx context.Context) error { return replaceSession(ctx) },
//	)
//
// # Error Classification
//
// The ErrorClassifier interface separates a broken session (dropped socket,
// server restart, SQLSTATE class 08) from statement-level errors (syntax
// errors, constraint violations). Only the former triggers a reconnect.
//
// # Delay Strategy
//
// FixedDelay waits the configured reconnect delay and allows a single
// re-attempt. There is no exponential loop: a database that stays down
// surfaces as an error on the second attempt.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. The session the operation
// and recovery close over is not; callers serialise access to it.
package retry
