// Package fakes provides scripted in-memory implementations of the simplepg
// session contracts for unit tests.
package fakes

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// BrokenSessionError returns the error PostgreSQL sends when an
// administrator terminates the backend.
func BrokenSessionError() error {
	return &pgconn.PgError{
		Severity: "FATAL",
		Code:     "57P01",
		Message:  "terminating connection due to administrator command",
	}
}

// StatementError returns the error for a statement against a missing table.
func StatementError() error {
	return &pgconn.PgError{
		Severity: "ERROR",
		Code:     "42P01",
		Message:  `relation "missing" does not exist`,
	}
}

// Session is a scripted simplepg.Session.
//
// Every statement (Exec, Query, CopyFrom) and every Ping consumes the next
// entry of Failures; a nil entry, or an exhausted queue, succeeds.
type Session struct {
	mu sync.Mutex

	Failures     []error
	BeginErr     error
	CommitErr    error
	CloseErr     error
	RowsAffected int64
	Columns      []string
	Rows         [][]any

	statements []string
	args       [][]any
	commits    int
	rollbacks  int
	pings      int
	closed     bool
}

var _ simplepg.Session = (*Session)(nil)

// NewSession returns a session whose queries yield columns and rows.
func NewSession(columns []string, rows ...[]any) *Session {
	return &Session{Columns: columns, Rows: rows}
}

// FailWith queues errs for the next statements and returns s.
func (s *Session) FailWith(errs ...error) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures = append(s.Failures, errs...)
	return s
}

func (s *Session) nextFailure() error {
	if len(s.Failures) == 0 {
		return nil
	}
	err := s.Failures[0]
	s.Failures = s.Failures[1:]
	return err
}

func (s *Session) statement(sql string, args []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("conn closed")
	}
	s.statements = append(s.statements, sql)
	s.args = append(s.args, args)
	return s.nextFailure()
}

func (s *Session) Begin(ctx context.Context) (simplepg.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("conn closed")
	}
	if s.BeginErr != nil {
		return nil, s.BeginErr
	}
	return &Tx{session: s}, nil
}

func (s *Session) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pings++
	if s.closed {
		return errors.New("conn closed")
	}
	return s.nextFailure()
}

func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.CloseErr
}

// Statements returns every statement attempted on this session.
func (s *Session) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statements...)
}

// Args returns the arguments of every statement attempted on this session.
func (s *Session) Args() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.args...)
}

func (s *Session) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *Session) Rollbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

func (s *Session) Pings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pings
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Tx is the transaction handed out by Session.Begin.
type Tx struct {
	session *Session
	done    bool
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := t.session.statement(sql, args); err != nil {
		return 0, err
	}
	return t.session.RowsAffected, nil
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (simplepg.Rows, error) {
	if err := t.session.statement(sql, args); err != nil {
		return nil, err
	}
	rows := make([][]any, len(t.session.Rows))
	for i, r := range t.session.Rows {
		rows[i] = append([]any(nil), r...)
	}
	return &Rows{columns: append([]string(nil), t.session.Columns...), rows: rows, pos: -1}, nil
}

func (t *Tx) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if err := t.session.statement("COPY "+table, []any{columns, rows}); err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (t *Tx) Commit(ctx context.Context) error {
	s := t.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.done {
		return errors.New("tx is closed")
	}
	t.done = true
	if s.CommitErr != nil {
		return s.CommitErr
	}
	s.commits++
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	s := t.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.done {
		return errors.New("tx is closed")
	}
	t.done = true
	s.rollbacks++
	return nil
}

// Rows iterates over a copy of the session's scripted rows.
type Rows struct {
	columns []string
	rows    [][]any
	pos     int
	closed  bool
}

func (r *Rows) Columns() []string { return r.columns }

func (r *Rows) Next() bool {
	if r.closed || r.pos+1 >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Values() ([]any, error) {
	if r.pos < 0 || r.pos >= len(r.rows) {
		return nil, errors.New("no current row")
	}
	return r.rows[r.pos], nil
}

func (r *Rows) Err() error { return nil }
func (r *Rows) Close()     { r.closed = true }
