package retry

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

func TestConnectionClassifier_PostgreSQLErrors(t *testing.T) {
	classifier := NewConnectionClassifier()

	tests := []struct {
		name   string
		err    error
		broken bool
	}{
		// Session is gone
		{
			name:   "connection_exception (08000)",
			err:    &pgconn.PgError{Code: "08000", Message: "connection exception"},
			broken: true,
		},
		{
			name:   "connection_failure (08006)",
			err:    &pgconn.PgError{Code: "08006", Message: "connection failure"},
			broken: true,
		},
		{
			name:   "connection_does_not_exist (08003)",
			err:    &pgconn.PgError{Code: "08003", Message: "connection does not exist"},
			broken: true,
		},
		{
			name:   "admin_shutdown (57P01)",
			err:    &pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"},
			broken: true,
		},
		{
			name:   "crash_shutdown (57P02)",
			err:    &pgconn.PgError{Code: "57P02", Message: "terminating connection due to crash"},
			broken: true,
		},
		{
			name:   "cannot_connect_now (57P03)",
			err:    &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"},
			broken: true,
		},
		{
			name:   "idle_session_timeout (57P05)",
			err:    &pgconn.PgError{Code: "57P05", Message: "terminating connection due to idle-session timeout"},
			broken: true,
		},

		// Statement-level: the session is still fine
		{
			name:   "syntax_error (42601)",
			err:    &pgconn.PgError{Code: "42601", Message: "syntax error at or near"},
			broken: false,
		},
		{
			name:   "undefined_table (42P01)",
			err:    &pgconn.PgError{Code: "42P01", Message: "relation does not exist"},
			broken: false,
		},
		{
			name:   "unique_violation (23505)",
			err:    &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"},
			broken: false,
		},
		{
			name:   "invalid_text_representation (22P02)",
			err:    &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type integer"},
			broken: false,
		},
		{
			name:   "serialization_failure (40001)",
			err:    &pgconn.PgError{Code: "40001", Message: "could not serialize access"},
			broken: false,
		},
		{
			name:   "query_canceled (57014)",
			err:    &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"},
			broken: false,
		},
		{
			name:   "too_many_connections (53300)",
			err:    &pgconn.PgError{Code: "53300", Message: "too many connections"},
			broken: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.IsConnectionBroken(tt.err)
			if result != tt.broken {
				t.Errorf("IsConnectionBroken(%v) = %v, want %v", tt.err, result, tt.broken)
			}
		})
	}
}

func TestConnectionClassifier_PQErrors(t *testing.T) {
	classifier := NewConnectionClassifier()

	tests := []struct {
		name   string
		err    error
		broken bool
	}{
		{"pq admin shutdown", &pq.Error{Code: "57P01", Message: "terminating connection"}, true},
		{"pq connection failure", &pq.Error{Code: "08006", Message: "connection failure"}, true},
		{"pq undefined table", &pq.Error{Code: "42P01", Message: "relation \"nope\" does not exist"}, false},
		{"pq unique violation", &pq.Error{Code: "23505", Message: "duplicate key"}, false},
		{"bad conn", driver.ErrBadConn, true},
		{"conn done", sql.ErrConnDone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.IsConnectionBroken(tt.err)
			if result != tt.broken {
				t.Errorf("IsConnectionBroken(%v) = %v, want %v", tt.err, result, tt.broken)
			}
		})
	}
}

func TestConnectionClassifier_NetworkErrors(t *testing.T) {
	classifier := NewConnectionClassifier()

	tests := []struct {
		name   string
		err    error
		broken bool
	}{
		{
			name:   "connection_reset",
			err:    &net.OpError{Op: "read", Err: syscall.ECONNRESET},
			broken: true,
		},
		{
			name:   "broken_pipe",
			err:    &net.OpError{Op: "write", Err: syscall.EPIPE},
			broken: true,
		},
		{
			name:   "wrapped_reset",
			err:    fmt.Errorf("failed to deallocate cached statement(s): %w", syscall.ECONNRESET),
			broken: true,
		},
		{
			name:   "unexpected_eof",
			err:    fmt.Errorf("receive message: %w", io.ErrUnexpectedEOF),
			broken: true,
		},
		{
			name:   "eof",
			err:    io.EOF,
			broken: true,
		},
		{
			name:   "closed_network_connection",
			err:    fmt.Errorf("read: %w", net.ErrClosed),
			broken: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.IsConnectionBroken(tt.err)
			if result != tt.broken {
				t.Errorf("IsConnectionBroken(%v) = %v, want %v", tt.err, result, tt.broken)
			}
		})
	}
}

func TestConnectionClassifier_MessageErrors(t *testing.T) {
	classifier := NewConnectionClassifier()

	tests := []struct {
		name   string
		err    error
		broken bool
	}{
		{"pgx closed conn", errors.New("conn closed"), true},
		{"connection reset", errors.New("read tcp 10.0.0.1:5432: connection reset by peer"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"server closed", errors.New("server closed the connection unexpectedly"), true},
		{"generic error", errors.New("something went wrong"), false},
		{"scan error", errors.New("can't scan into dest[0]"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.IsConnectionBroken(tt.err)
			if result != tt.broken {
				t.Errorf("IsConnectionBroken(%v) = %v, want %v", tt.err, result, tt.broken)
			}
		})
	}
}

func TestConnectionClassifier_SpecialCases(t *testing.T) {
	classifier := NewConnectionClassifier()

	if classifier.IsConnectionBroken(nil) {
		t.Error("nil error must not be broken")
	}
	if classifier.IsConnectionBroken(context.Canceled) {
		t.Error("context.Canceled must not be broken")
	}
	if classifier.IsConnectionBroken(fmt.Errorf("timeout: %w", context.DeadlineExceeded)) {
		t.Error("context.DeadlineExceeded must not be broken")
	}
	if !classifier.IsConnectionBroken(fmt.Errorf("no session: %w", simplepg.ErrConnectionBroken)) {
		t.Error("ErrConnectionBroken must be broken")
	}

	// A server error wrapped in a message that looks like a network error
	// is still classified by its SQLSTATE.
	wrapped := fmt.Errorf("connection reset while: %w", &pgconn.PgError{Code: "23505"})
	if classifier.IsConnectionBroken(wrapped) {
		t.Error("SQLSTATE must take precedence over the message")
	}
}
