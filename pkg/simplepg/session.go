package simplepg

import "context"

// Connector opens sessions to one configured database.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, Cloud SQL dialers).
type Connector interface {
	// Connect establishes a single new session. The caller owns the
	// returned Session and must Close it.
	Connect(ctx context.Context) (Session, error)
}

// Session is one live connection to a database.
// This interface decouples the Connection from driver-specific types so the
// pgx and database/sql backends can be swapped, and so tests can script failures.
//
// Thread-Safety: Sessions are NOT safe for concurrent use.
type Session interface {
	// Begin starts a transaction on this session.
	Begin(ctx context.Context) (Tx, error)

	// Ping performs a round trip to the server.
	Ping(ctx context.Context) error

	// Close terminates the session. Closing an already broken session may
	// return an error, which callers replacing the session ignore.
	Close(ctx context.Context) error
}

// Tx is a transaction scoped to a single Connection call.
type Tx interface {
	// Exec executes a statement and returns the number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query executes a statement that returns rows.
	// The caller must Close the returned Rows before committing.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// CopyFrom bulk-inserts rows into table and returns the number of rows copied.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Commit commits the transaction.
	Commit(ctx context.Context) error

	// Rollback aborts the transaction.
	Rollback(ctx context.Context) error
}

// Rows is a forward-only cursor over a query result.
type Rows interface {
	// Columns returns the result column names in order.
	Columns() []string

	// Next advances to the next row. Returns false when done or on error.
	Next() bool

	// Values returns the decoded values of the current row.
	Values() ([]any, error)

	// Err returns any error encountered while iterating.
	Err() error

	// Close releases the cursor. Safe to call more than once.
	Close()
}
