//go:build integration

package connection_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/simplepg/internal/connection"
	"github.com/vvka-141/simplepg/internal/db"
	testhelpers "github.com/vvka-141/simplepg/internal/testing"
	"github.com/vvka-141/simplepg/internal/testing/fakes"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

var drivers = []simplepg.Driver{simplepg.DriverPgx, simplepg.DriverPQ}

func openConnection(t *testing.T, driver simplepg.Driver, delay time.Duration) (*connection.Connection, *fakes.RecordingLogger) {
	t.Helper()

	config := testhelpers.RequireDatabase(t, driver)
	logger := fakes.NewRecordingLogger()

	connector, err := db.NewConnector(config, logger)
	require.NoError(t, err)

	conn, err := connection.New(context.Background(), connector, connection.Options{
		ReconnectDelay: delay,
		DiagnosticID:   "integration",
		Logger:         logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(context.Background()) })

	return conn, logger
}

func createTable(t *testing.T, conn *connection.Connection, ddl string, name string) {
	t.Helper()
	ctx := context.Background()

	_, err := conn.Execute(ctx, "DROP TABLE IF EXISTS "+name)
	require.NoError(t, err)
	_, err = conn.Execute(ctx, fmt.Sprintf(ddl, name))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Execute(context.Background(), "DROP TABLE IF EXISTS "+name) })
}

func TestConnection_InsertAndFetchScenario(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver.String(), func(t *testing.T) {
			ctx := context.Background()
			conn, logger := openConnection(t, driver, 0)
			table := "scenario_" + driver.String()
			createTable(t, conn, "CREATE TABLE %s (id serial primary key, name text)", table)

			n, err := conn.Execute(ctx, fmt.Sprintf("INSERT INTO %s(name) VALUES ('a')", table))
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			result, err := conn.ExecuteAndFetch(ctx, "SELECT * FROM "+table)
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name"}, result.Columns)
			require.Len(t, result.Rows, 1)
			assert.EqualValues(t, 1, result.Rows[0][0])
			assert.Equal(t, "a", result.Rows[0][1])

			records := result.AsRecords()
			require.Len(t, records, 1)
			assert.EqualValues(t, 1, records[0]["id"])
			assert.Equal(t, "a", records[0]["name"])

			assert.Zero(t, logger.CountPrefix("connection lost:"))
		})
	}
}

func TestConnection_RowsInInsertionOrder(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver.String(), func(t *testing.T) {
			ctx := context.Background()
			conn, _ := openConnection(t, driver, 0)
			table := "ordered_" + driver.String()
			createTable(t, conn, "CREATE TABLE %s (id serial primary key, name text, score int)", table)

			names := []string{"delta", "alpha", "charlie", "bravo"}
			argSets := make([][]any, len(names))
			for i, name := range names {
				argSets[i] = []any{name, i * 10}
			}
			n, err := conn.ExecuteMany(ctx, fmt.Sprintf("INSERT INTO %s(name, score) VALUES ($1, $2)", table), argSets)
			require.NoError(t, err)
			assert.Equal(t, int64(4), n)

			result, err := conn.ExecuteAndFetch(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY id", table))
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name", "score"}, result.Columns)
			require.Len(t, result.Rows, len(names))
			for i, name := range names {
				assert.Equal(t, name, result.Rows[i][1])
			}
		})
	}
}

func TestConnection_NumericDecodesToFloat(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver.String(), func(t *testing.T) {
			conn, _ := openConnection(t, driver, 0)

			result, err := conn.ExecuteAndFetch(context.Background(),
				"SELECT 12.50::numeric AS price, NULL::numeric AS missing, 7::numeric(10,2) AS whole")
			require.NoError(t, err)
			require.Len(t, result.Rows, 1)

			assert.Equal(t, 12.5, result.Rows[0][0])
			assert.Nil(t, result.Rows[0][1])
			assert.Equal(t, float64(7), result.Rows[0][2])
		})
	}
}

func TestConnection_NamedArgs(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver.String(), func(t *testing.T) {
			conn, _ := openConnection(t, driver, 0)

			result, err := conn.ExecuteAndFetch(context.Background(),
				"SELECT @name::text AS name, @n::int + 1 AS next",
				simplepg.NamedArgs{"name": "b", "n": 41})
			require.NoError(t, err)
			records := result.AsRecords()
			require.Len(t, records, 1)
			assert.Equal(t, "b", records[0]["name"])
			assert.EqualValues(t, 42, records[0]["next"])
		})
	}
}

func TestConnection_CopyRows(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver.String(), func(t *testing.T) {
			ctx := context.Background()
			conn, _ := openConnection(t, driver, 0)
			table := "copied_" + driver.String()
			createTable(t, conn, "CREATE TABLE %s (id int, name text)", table)

			n, err := conn.CopyRows(ctx, table, []string{"id", "name"}, [][]any{{1, "a"}, {2, "b"}, {3, "c"}})
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)

			result, err := conn.ExecuteAndFetch(ctx, "SELECT count(*) AS n FROM "+table)
			require.NoError(t, err)
			assert.EqualValues(t, 3, result.Rows[0][0])
		})
	}
}

func TestConnection_StatementFailureDoesNotReconnect(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver.String(), func(t *testing.T) {
			conn, logger := openConnection(t, driver, time.Second)

			start := time.Now()
			_, err := conn.Execute(context.Background(), "INSERT INTO no_such_table VALUES (1)")

			assert.ErrorIs(t, err, simplepg.ErrStatementFailure)
			assert.Less(t, time.Since(start), time.Second)
			assert.Zero(t, logger.CountPrefix("connection lost:"))

			// The session is still usable.
			_, err = conn.Execute(context.Background(), "SELECT 1")
			assert.NoError(t, err)
		})
	}
}

func TestConnection_ReconnectsAfterBackendTerminated(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver.String(), func(t *testing.T) {
			ctx := context.Background()
			delay := 200 * time.Millisecond
			conn, logger := openConnection(t, driver, delay)
			admin, _ := openConnection(t, driver, 0)

			pid := backendPID(t, conn)

			_, err := admin.ExecuteAndFetch(ctx, "SELECT pg_terminate_backend($1)", pid)
			require.NoError(t, err)
			waitForBackendGone(t, admin, pid)

			start := time.Now()
			result, err := conn.ExecuteAndFetch(ctx, "SELECT 1 AS one")
			elapsed := time.Since(start)

			require.NoError(t, err)
			assert.EqualValues(t, 1, result.Rows[0][0])
			assert.GreaterOrEqual(t, elapsed, delay)
			assert.Equal(t, 1, logger.CountPrefix("connection lost:"))
			assert.Equal(t, 1, logger.CountPrefix("connection reconnected:"))
			assert.NotEqual(t, pid, backendPID(t, conn))
			assert.True(t, conn.IsValid())
		})
	}
}

func TestConnection_PingAfterBackendTerminated(t *testing.T) {
	ctx := context.Background()
	conn, logger := openConnection(t, simplepg.DriverPgx, 0)
	admin, _ := openConnection(t, simplepg.DriverPgx, 0)

	pid := backendPID(t, conn)
	_, err := admin.Execute(ctx, "SELECT pg_terminate_backend($1)", pid)
	require.NoError(t, err)
	waitForBackendGone(t, admin, pid)

	require.NoError(t, conn.Ping(ctx))
	assert.Equal(t, 1, logger.CountPrefix("connection reconnected:"))
}

func backendPID(t *testing.T, conn *connection.Connection) any {
	t.Helper()
	result, err := conn.ExecuteAndFetch(context.Background(), "SELECT pg_backend_pid() AS pid")
	require.NoError(t, err)
	return result.Rows[0][0]
}

func waitForBackendGone(t *testing.T, admin *connection.Connection, pid any) {
	t.Helper()
	require.Eventually(t, func() bool {
		result, err := admin.ExecuteAndFetch(context.Background(),
			"SELECT 1 FROM pg_stat_activity WHERE pid = $1", pid)
		return err == nil && len(result.Rows) == 0
	}, 5*time.Second, 20*time.Millisecond)
}
