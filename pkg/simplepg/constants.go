package simplepg

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect, or the session broke twice in one call
	ExitStatementFailed = 13 // Statement rejected by the server
)

const (
	// DefaultPort is the PostgreSQL port used when none is configured.
	DefaultPort = 5432

	// DefaultSSLMode matches libpq's default.
	DefaultSSLMode = "prefer"

	// DefaultConnectTimeout bounds establishing a single session.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultReconnectDelay is how long a call waits before replacing a broken session.
	DefaultReconnectDelay = 3 * time.Second

	// ReconnectAttempts is the number of re-attempts after a broken session.
	// A call runs at most ReconnectAttempts+1 times and reconnects at most ReconnectAttempts times.
	ReconnectAttempts = 1

	// ApplicationNamePrefix is prepended to the diagnostic id to form application_name.
	ApplicationNamePrefix = "simplepg"
)
