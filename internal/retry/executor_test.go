package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// mockOperation tracks invocation count and fails the first failFor invocations.
type mockOperation struct {
	invocations int
	failFor     int
	err         error
}

func (m *mockOperation) execute(ctx context.Context) error {
	m.invocations++
	if m.invocations <= m.failFor {
		if m.err != nil {
			return m.err
		}
		return &pgconn.PgError{Code: "08006", Message: "connection failure"}
	}
	return nil
}

// mockRecovery counts reconnects and optionally fails.
type mockRecovery struct {
	calls int
	err   error
}

func (m *mockRecovery) recover(ctx context.Context) error {
	m.calls++
	return m.err
}

func newTestExecutor(delay time.Duration) *Executor {
	return NewExecutor(NewConnectionClassifier(), NewFixedDelay(delay))
}

func TestExecutor_Execute_SuccessOnFirstAttempt(t *testing.T) {
	executor := newTestExecutor(time.Millisecond)
	op := &mockOperation{}
	rec := &mockRecovery{}

	err := executor.Execute(context.Background(), op.execute, rec.recover)

	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
	if rec.calls != 0 {
		t.Errorf("Expected no reconnect, got %d", rec.calls)
	}
}

func TestExecutor_Execute_BrokenOnceThenSuccess(t *testing.T) {
	var lost, recovered int
	var lostDelay time.Duration
	executor := newTestExecutor(20*time.Millisecond).
		WithOnLost(func(attempt int, err error, delay time.Duration) {
			lost++
			lostDelay = delay
		}).
		WithOnRecovered(func(attempt int, err error) {
			recovered++
		})

	op := &mockOperation{failFor: 1}
	rec := &mockRecovery{}

	start := time.Now()
	err := executor.Execute(context.Background(), op.execute, rec.recover)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Expected success after reconnect, got error: %v", err)
	}
	if op.invocations != 2 {
		t.Errorf("Expected 2 invocations, got %d", op.invocations)
	}
	if rec.calls != 1 {
		t.Errorf("Expected 1 reconnect, got %d", rec.calls)
	}
	if lost != 1 || recovered != 1 {
		t.Errorf("Expected one lost and one recovered callback, got %d/%d", lost, recovered)
	}
	if lostDelay != 20*time.Millisecond {
		t.Errorf("Expected reported delay 20ms, got %v", lostDelay)
	}
	if elapsed < 20*time.Millisecond {
		t.Errorf("Expected to wait at least 20ms, waited %v", elapsed)
	}
}

func TestExecutor_Execute_BrokenTwiceNoThirdAttempt(t *testing.T) {
	executor := newTestExecutor(time.Millisecond)

	brokenErr := &pgconn.PgError{Code: "57P01", Message: "terminating connection"}
	op := &mockOperation{failFor: 999, err: brokenErr}
	rec := &mockRecovery{}

	err := executor.Execute(context.Background(), op.execute, rec.recover)

	if !errors.Is(err, brokenErr) {
		t.Fatalf("Expected the second broken error, got %v", err)
	}
	if op.invocations != 2 {
		t.Errorf("Expected 2 invocations (no third attempt), got %d", op.invocations)
	}
	if rec.calls != 1 {
		t.Errorf("Expected exactly 1 reconnect, got %d", rec.calls)
	}
}

func TestExecutor_Execute_StatementErrorNoRetry(t *testing.T) {
	lost := 0
	executor := newTestExecutor(time.Millisecond).
		WithOnLost(func(int, error, time.Duration) { lost++ })

	stmtErr := &pgconn.PgError{Code: "42P01", Message: "relation \"nope\" does not exist"}
	op := &mockOperation{failFor: 999, err: stmtErr}
	rec := &mockRecovery{}

	err := executor.Execute(context.Background(), op.execute, rec.recover)

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "42P01" {
		t.Errorf("Expected PgError with code 42P01, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
	if rec.calls != 0 || lost != 0 {
		t.Errorf("Statement errors must not reconnect (reconnects=%d, lost=%d)", rec.calls, lost)
	}
}

func TestExecutor_Execute_BrokenThenStatementError(t *testing.T) {
	executor := newTestExecutor(time.Millisecond)

	stmtErr := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	invocations := 0
	operation := func(ctx context.Context) error {
		invocations++
		if invocations == 1 {
			return errors.New("conn closed")
		}
		return stmtErr
	}
	rec := &mockRecovery{}

	err := executor.Execute(context.Background(), operation, rec.recover)

	if err != stmtErr {
		t.Errorf("Expected statement error from the retry, got %v", err)
	}
	if invocations != 2 {
		t.Errorf("Expected 2 invocations, got %d", invocations)
	}
}

func TestExecutor_Execute_RecoveryFailure(t *testing.T) {
	recovered := 0
	executor := newTestExecutor(time.Millisecond).
		WithOnRecovered(func(int, error) { recovered++ })

	connectErr := errors.New("dial tcp: connection refused")
	op := &mockOperation{failFor: 999}
	rec := &mockRecovery{err: connectErr}

	err := executor.Execute(context.Background(), op.execute, rec.recover)

	if !errors.Is(err, connectErr) {
		t.Fatalf("Expected recovery error, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected no re-attempt after failed recovery, got %d invocations", op.invocations)
	}
	if recovered != 0 {
		t.Errorf("Expected no recovered callback, got %d", recovered)
	}
}

func TestExecutor_Execute_ContextCancellationDuringDelay(t *testing.T) {
	executor := newTestExecutor(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	op := &mockOperation{failFor: 999}
	rec := &mockRecovery{}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := executor.Execute(ctx, op.execute, rec.recover)

	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", op.invocations)
	}
	if rec.calls != 0 {
		t.Errorf("Expected no reconnect after cancellation, got %d", rec.calls)
	}
}

func TestExecutor_Execute_NoAttemptsStrategy(t *testing.T) {
	executor := NewExecutor(NewConnectionClassifier(), NewFixedDelay(0, WithMaxAttempts(0)))

	op := &mockOperation{failFor: 999}
	rec := &mockRecovery{}

	err := executor.Execute(context.Background(), op.execute, rec.recover)

	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if op.invocations != 1 || rec.calls != 0 {
		t.Errorf("Expected 1 invocation and no reconnect, got %d/%d", op.invocations, rec.calls)
	}
}

func TestExecutor_WithCallbacks_DoesNotModifyReceiver(t *testing.T) {
	base := newTestExecutor(time.Millisecond)
	withLost := base.WithOnLost(func(int, error, time.Duration) {})
	withRecovered := base.WithOnRecovered(func(int, error) {})

	if base.onLost != nil || base.onRecovered != nil {
		t.Error("Expected base executor to remain without callbacks")
	}
	if withLost == base || withRecovered == base {
		t.Error("Expected new executor instances")
	}
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil classifier")
		}
	}()
	NewExecutor(nil, NewFixedDelay(0))
}
