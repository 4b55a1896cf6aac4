package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// pgxSession adapts a single *pgx.Conn to simplepg.Session.
// This keeps pgx types out of the Connection and lets the database/sql
// backend stand in for it.
//
// Thread-Safety: NOT safe for concurrent use (pgx.Conn is not).
type pgxSession struct {
	conn *pgx.Conn
}

var _ simplepg.Session = (*pgxSession)(nil)

// openPgxSession connects with pgx, optionally through dial, and installs
// the NUMERIC→float64 codec on the new connection.
func openPgxSession(ctx context.Context, connStr string, dial pgconn.DialFunc, logger simplepg.Logger) (*pgxSession, error) {
	connConfig, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}

	if dial != nil {
		connConfig.DialFunc = dial
	}
	connConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, err
	}

	RegisterDecimalAsFloat(conn.TypeMap())

	return &pgxSession{conn: conn}, nil
}

func (s *pgxSession) Begin(ctx context.Context) (simplepg.Tx, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: tx}, nil
}

func (s *pgxSession) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *pgxSession) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

// pgxTx adapts pgx.Tx to simplepg.Tx.
type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgxTx) Query(ctx context.Context, sql string, args ...any) (simplepg.Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (t *pgxTx) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return t.tx.CopyFrom(ctx, pgx.Identifier(strings.Split(table, ".")), columns, pgx.CopyFromRows(rows))
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// pgxRows adapts pgx.Rows to simplepg.Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Columns() []string {
	fields := r.rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.Name
	}
	return names
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Values() ([]any, error) { return r.rows.Values() }
func (r *pgxRows) Err() error             { return r.rows.Err() }
func (r *pgxRows) Close()                 { r.rows.Close() }
