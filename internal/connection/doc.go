// Package connection implements Connection, a single PostgreSQL session that
// survives dropped connections.
//
// Each operation runs against the current session inside its own
// transaction. If the session turns out to be broken (server restart, idle
// timeout, network reset) the Connection logs the loss, waits the configured
// delay, replaces the session and runs the operation exactly once more.
// Statement errors such as syntax errors or constraint violations are
// returned at once and never cause a reconnect.
//
// Example:
//
//	conn, err := connection.New(ctx, connector, connection.Options{
//	    ReconnectDelay: 3 * time.Second,
//	    DiagnosticID:   "web-1",
//	    Logger:         logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer conn.Close(ctx)
//
//	n, err := conn.Execute(ctx, "INSERT INTO t(name) VALUES ($1)", "a")
//	res, err := conn.ExecuteAndFetch(ctx, "SELECT * FROM t")
//	for _, rec := range res.AsRecords() {
//	    fmt.Println(rec["name"])
//	}
package connection
