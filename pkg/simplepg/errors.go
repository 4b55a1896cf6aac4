package simplepg

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Errors returned by a Connection wrap both a sentinel and the raw driver
// error, so errors.As(err, &pgErr) keeps working:
//
//	_, err := conn.Execute(ctx, "INSERT INTO t(name) VALUES ($1)", "a")
//	if errors.Is(err, simplepg.ErrStatementFailure) {
//	    // constraint violation, syntax error, ...
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectFailure indicates a session could not be established
	// (unreachable host, rejected credentials, timeout). Never retried.
	ErrConnectFailure = errors.New("connect failed")

	// ErrConnectionBroken indicates an established session became unusable.
	// The first occurrence within a call triggers one reconnect and re-attempt;
	// callers only see it when the re-attempt breaks as well.
	ErrConnectionBroken = errors.New("connection broken")

	// ErrStatementFailure indicates the server rejected the statement itself.
	// Never triggers a reconnect.
	ErrStatementFailure = errors.New("statement failed")

	// ErrConnectionClosed indicates the Connection was explicitly closed.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrUnknownRole indicates a registry lookup for a role with no configuration.
	ErrUnknownRole = errors.New("unknown connection role")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnsupportedDriver indicates the requested session backend is not supported.
	ErrUnsupportedDriver = errors.New("unsupported driver")
)

// usageErrorPrefixes are the leading words of cobra's argument and flag errors.
var usageErrorPrefixes = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnknownRole),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrUnsupportedDriver):
		return ExitConfigError
	case errors.Is(err, ErrConnectFailure),
		errors.Is(err, ErrConnectionBroken),
		errors.Is(err, ErrConnectionClosed):
		return ExitConnectionError
	case errors.Is(err, ErrStatementFailure):
		return ExitStatementFailed
	}

	errStr := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
