package retry

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// PostgreSQL error codes that terminate the session.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 08 - Connection Exception
	pgClassConnectionException = "08"

	// Class 57 - Operator Intervention (only the codes that end the backend)
	pgCodeAdminShutdown      = "57P01"
	pgCodeCrashShutdown      = "57P02"
	pgCodeCannotConnectNow   = "57P03"
	pgCodeIdleSessionTimeout = "57P05"
)

// ConnectionClassifier implements simplepg.ErrorClassifier for pgx and lib/pq errors.
//
// Only errors about the session are reported as broken. Statement-level errors
// (syntax errors, constraint violations, serialization failures, resource limits)
// leave the session usable and are never reported, even when a retry of the
// statement might succeed.
type ConnectionClassifier struct{}

// NewConnectionClassifier creates a new connection classifier.
func NewConnectionClassifier() *ConnectionClassifier {
	return &ConnectionClassifier{}
}

// IsConnectionBroken determines if err means the session can no longer be used.
func (c *ConnectionClassifier) IsConnectionBroken(err error) bool {
	if err == nil {
		return false
	}

	// The caller gave up; the session state is the driver's concern.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, simplepg.ErrConnectionBroken) {
		return true
	}

	// Server-reported errors carry a SQLSTATE and are authoritative.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isSessionSQLState(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isSessionSQLState(string(pqErr.Code))
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	if c.isNetworkError(err) {
		return true
	}

	return c.isConnectionMessage(err)
}

// isSessionSQLState reports whether a SQLSTATE means the backend is gone.
func isSessionSQLState(code string) bool {
	if strings.HasPrefix(code, pgClassConnectionException) {
		return true
	}

	switch code {
	case pgCodeAdminShutdown,
		pgCodeCrashShutdown,
		pgCodeCannotConnectNow,
		pgCodeIdleSessionTimeout:
		return true
	}

	return false
}

// isNetworkError checks for socket-level failures on an established session.
func (c *ConnectionClassifier) isNetworkError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}

	// Connection reset by peer / broken pipe / refused on redial
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// A socket timeout on an established session leaves the protocol state unknown.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// isConnectionMessage checks for driver errors that only expose a message.
func (c *ConnectionClassifier) isConnectionMessage(err error) bool {
	errMsg := strings.ToLower(err.Error())

	brokenPatterns := []string{
		"conn closed",
		"connection closed",
		"connection reset",
		"connection refused",
		"broken pipe",
		"unexpected eof",
		"bad connection",
		"server closed the connection",
		"terminating connection",
		"use of closed network connection",
		"failed to write",
		"failed to receive message",
	}

	for _, pattern := range brokenPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// Verify ConnectionClassifier implements the interface at compile time
var _ simplepg.ErrorClassifier = (*ConnectionClassifier)(nil)
