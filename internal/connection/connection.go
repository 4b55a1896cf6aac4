package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vvka-141/simplepg/internal/logging"
	"github.com/vvka-141/simplepg/internal/retry"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// errNoSession marks a Connection whose last reconnect failed. It is
// classified as a broken session, so the next call reconnects first.
var errNoSession = fmt.Errorf("no open session: %w", simplepg.ErrConnectionBroken)

// Options configures a Connection.
type Options struct {
	// ReconnectDelay is how long to wait before replacing a broken session.
	// Must not be negative.
	ReconnectDelay time.Duration

	// DiagnosticID tags log messages. It has no effect on behaviour.
	DiagnosticID string

	// Logger receives loss and recovery events. Defaults to a NullLogger.
	Logger simplepg.Logger

	// Classifier decides which errors mean the session is broken.
	// Defaults to retry.NewConnectionClassifier().
	Classifier simplepg.ErrorClassifier
}

// Connection owns exactly one session and runs statements against it.
// When an operation fails because the session broke, the Connection waits
// ReconnectDelay, replaces the session and runs the operation once more.
// Statement errors are never retried.
//
// Every statement runs in its own transaction, committed on success and
// rolled back on failure.
//
// Thread-Safety: safe for concurrent use. Operations are serialised,
// including the session replacement.
type Connection struct {
	connector  simplepg.Connector
	classifier simplepg.ErrorClassifier
	logger     simplepg.Logger
	id         string
	executor   *retry.Executor

	mu      sync.Mutex
	session simplepg.Session
	closed  bool

	// valid mirrors "a session is held and not known to be broken" so
	// IsValid never waits behind an operation.
	valid atomic.Bool
}

// New opens the first session and returns a ready Connection.
// A connect failure is returned immediately and is not retried.
func New(ctx context.Context, connector simplepg.Connector, opts Options) (*Connection, error) {
	if connector == nil {
		return nil, fmt.Errorf("connector is required: %w", simplepg.ErrInvalidConfig)
	}
	if opts.ReconnectDelay < 0 {
		return nil, fmt.Errorf("reconnect delay %v cannot be negative: %w", opts.ReconnectDelay, simplepg.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNullLogger()
	}
	if opts.Classifier == nil {
		opts.Classifier = retry.NewConnectionClassifier()
	}

	session, err := connector.Connect(ctx)
	if err != nil {
		return nil, connectError(err)
	}

	c := &Connection{
		connector:  connector,
		classifier: opts.Classifier,
		logger:     opts.Logger,
		id:         opts.DiagnosticID,
		session:    session,
	}
	c.executor = retry.NewExecutor(opts.Classifier, retry.NewFixedDelay(opts.ReconnectDelay)).
		WithOnLost(c.onLost).
		WithOnRecovered(c.onRecovered)
	c.valid.Store(true)

	return c, nil
}

// IsValid reports whether the Connection holds a session that has not been
// seen to break. It performs no round trip; use Ping for a real probe.
func (c *Connection) IsValid() bool {
	return c.valid.Load()
}

// Ping checks the session with a round trip, reconnecting once if it broke.
func (c *Connection) Ping(ctx context.Context) error {
	return c.run(ctx, func(ctx context.Context, session simplepg.Session) error {
		return session.Ping(ctx)
	})
}

// Execute runs statement and returns the number of rows affected.
// Pass a single simplepg.NamedArgs to bind @name placeholders.
func (c *Connection) Execute(ctx context.Context, statement string, args ...any) (int64, error) {
	var affected int64
	err := c.run(ctx, func(ctx context.Context, session simplepg.Session) error {
		return runInTx(ctx, session, func(tx simplepg.Tx) error {
			n, err := tx.Exec(ctx, statement, args...)
			affected = n
			return err
		})
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// ExecuteAndFetch runs statement and returns all of its rows. Rows are read
// completely before the transaction commits. A statement without a result
// set, such as a plain INSERT, yields an empty FetchResult rather than an error.
func (c *Connection) ExecuteAndFetch(ctx context.Context, statement string, args ...any) (simplepg.FetchResult, error) {
	var result simplepg.FetchResult
	err := c.run(ctx, func(ctx context.Context, session simplepg.Session) error {
		return runInTx(ctx, session, func(tx simplepg.Tx) error {
			fetched, err := fetchAll(ctx, tx, statement, args)
			result = fetched
			return err
		})
	})
	if err != nil {
		return simplepg.FetchResult{}, err
	}
	return result, nil
}

func fetchAll(ctx context.Context, tx simplepg.Tx, statement string, args []any) (simplepg.FetchResult, error) {
	rows, err := tx.Query(ctx, statement, args...)
	if err != nil {
		return simplepg.FetchResult{}, err
	}
	defer rows.Close()

	data := make([][]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return simplepg.FetchResult{}, err
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return simplepg.FetchResult{}, err
	}

	return simplepg.FetchResult{Rows: data, Columns: rows.Columns()}, nil
}

// ExecuteMany runs statement once per argument set in a single transaction
// and returns the total number of rows affected. Either every set is
// applied or none is.
func (c *Connection) ExecuteMany(ctx context.Context, statement string, argSets [][]any) (int64, error) {
	if len(argSets) == 0 {
		return 0, c.checkOpen()
	}

	var total int64
	err := c.run(ctx, func(ctx context.Context, session simplepg.Session) error {
		total = 0
		return runInTx(ctx, session, func(tx simplepg.Tx) error {
			for i, args := range argSets {
				n, err := tx.Exec(ctx, statement, args...)
				if err != nil {
					return fmt.Errorf("argument set %d: %w", i, err)
				}
				total += n
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// CopyRows bulk-inserts rows into table using the COPY protocol in a single
// transaction and returns the number of rows copied. table may be
// schema-qualified.
func (c *Connection) CopyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if table == "" || len(columns) == 0 {
		return 0, fmt.Errorf("copy requires a table and at least one column: %w", simplepg.ErrStatementFailure)
	}
	if len(rows) == 0 {
		return 0, c.checkOpen()
	}

	var copied int64
	err := c.run(ctx, func(ctx context.Context, session simplepg.Session) error {
		return runInTx(ctx, session, func(tx simplepg.Tx) error {
			n, err := tx.CopyFrom(ctx, table, columns, rows)
			copied = n
			return err
		})
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

// Close releases the session and any connector resources. Later operations
// fail with simplepg.ErrConnectionClosed. Calling Close again is a no-op.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.valid.Store(false)

	var errs []error
	if c.session != nil {
		if err := c.session.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close session: %w", err))
		}
		c.session = nil
	}
	if closer, ok := c.connector.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connector: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *Connection) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return simplepg.ErrConnectionClosed
	}
	return nil
}

// run executes op against the current session under the reconnect-retry
// protocol and maps the outcome onto the simplepg error taxonomy.
func (c *Connection) run(ctx context.Context, op func(ctx context.Context, session simplepg.Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return simplepg.ErrConnectionClosed
	}

	err := c.executor.Execute(ctx,
		func(ctx context.Context) error {
			if c.session == nil {
				return errNoSession
			}
			return op(ctx, c.session)
		},
		c.reconnect,
	)
	return c.classify(err)
}

// reconnect closes the broken session, ignoring errors, and opens a new one.
// Called with c.mu held.
func (c *Connection) reconnect(ctx context.Context) error {
	if c.session != nil {
		if err := c.session.Close(ctx); err != nil {
			c.logger.Verbose("closing broken session (id=%s): %v", c.id, err)
		}
		c.session = nil
	}

	session, err := c.connector.Connect(ctx)
	if err != nil {
		return connectError(err)
	}

	c.session = session
	return nil
}

func (c *Connection) onLost(_ int, err error, delay time.Duration) {
	c.valid.Store(false)
	c.logger.Warn("connection lost: %v (id=%s, reconnecting in %v)", err, c.id, delay)
}

func (c *Connection) onRecovered(_ int, err error) {
	c.valid.Store(true)
	c.logger.Warn("connection reconnected: id=%s, retrying after %v", c.id, err)
}

func (c *Connection) classify(err error) error {
	switch {
	case err == nil:
		return nil
	case isContextError(err):
		return err
	case errors.Is(err, simplepg.ErrConnectFailure):
		return err
	case c.classifier.IsConnectionBroken(err):
		c.valid.Store(false)
		if errors.Is(err, simplepg.ErrConnectionBroken) {
			return err
		}
		return fmt.Errorf("%w: %w", simplepg.ErrConnectionBroken, err)
	default:
		return fmt.Errorf("%w: %w", simplepg.ErrStatementFailure, err)
	}
}

func connectError(err error) error {
	if isContextError(err) || errors.Is(err, simplepg.ErrConnectFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", simplepg.ErrConnectFailure, err)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
