package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// sqlSession adapts one dedicated database/sql connection opened with the
// lib/pq driver to simplepg.Session.
//
// The *sql.DB is capped at a single connection and owned by the session, so
// closing the session closes the driver connection instead of returning it
// to a pool.
type sqlSession struct {
	db   *sql.DB
	conn *sql.Conn
}

var _ simplepg.Session = (*sqlSession)(nil)

func openSQLSession(ctx context.Context, connStr string) (*sqlSession, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	// database/sql connects lazily
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, err
	}

	return &sqlSession{db: db, conn: conn}, nil
}

func (s *sqlSession) Begin(ctx context.Context) (simplepg.Tx, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (s *sqlSession) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *sqlSession) Close(ctx context.Context) error {
	connErr := s.conn.Close()
	dbErr := s.db.Close()
	if connErr != nil {
		return connErr
	}
	return dbErr
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	query, args, err := bindArgs(ctx, query, args)
	if err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (simplepg.Rows, error) {
	query, args, err := bindArgs(ctx, query, args)
	if err != nil {
		return nil, err
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &sqlRows{rows: rows, types: types}, nil
}

func (t *sqlTx) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	var copySQL string
	if schema, name, ok := strings.Cut(table, "."); ok {
		copySQL = pq.CopyInSchema(schema, name, columns...)
	} else {
		copySQL = pq.CopyIn(table, columns...)
	}

	stmt, err := t.tx.PrepareContext(ctx, copySQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, err
		}
	}
	// An argument-less Exec flushes the buffered rows to the server.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	return int64(len(rows)), nil
}

func (t *sqlTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}

type sqlRows struct {
	rows  *sql.Rows
	types []*sql.ColumnType
}

func (r *sqlRows) Columns() []string {
	names := make([]string, len(r.types))
	for i, ct := range r.types {
		names[i] = ct.Name()
	}
	return names
}

func (r *sqlRows) Next() bool { return r.rows.Next() }

func (r *sqlRows) Values() ([]any, error) {
	values := make([]any, len(r.types))
	dest := make([]any, len(r.types))
	for i := range values {
		dest[i] = &values[i]
	}

	if err := r.rows.Scan(dest...); err != nil {
		return nil, err
	}

	for i, ct := range r.types {
		v, err := decimalAsFloat(ct.DatabaseTypeName(), values[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", ct.Name(), err)
		}
		values[i] = v
	}
	return values, nil
}

func (r *sqlRows) Err() error { return r.rows.Err() }
func (r *sqlRows) Close()     { r.rows.Close() }

// bindArgs rewrites @name placeholders to $n when args is a single
// NamedArgs. lib/pq only understands positional parameters.
func bindArgs(ctx context.Context, query string, args []any) (string, []any, error) {
	if len(args) != 1 {
		return query, args, nil
	}
	named, ok := args[0].(pgx.NamedArgs)
	if !ok {
		return query, args, nil
	}
	return named.RewriteQuery(ctx, nil, query, nil)
}
