// Package testing holds helpers shared by the integration tests.
package testing

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/vvka-141/simplepg/internal/db"
	"github.com/vvka-141/simplepg/internal/testinfra"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// EnvTestConn points the integration tests at an existing server instead of
// a container.
const EnvTestConn = "SIMPLEPG_TEST_CONN"

// One container serves every test in the process; it is reaped by the
// testcontainers sidecar when the test binary exits.
var shared struct {
	once    sync.Once
	connStr string
	err     error
}

func sharedContainer() (string, error) {
	shared.once.Do(func() {
		pg, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			shared.err = err
			return
		}
		shared.connStr = pg.ConnString
	})
	return shared.connStr, shared.err
}

// ConnString returns a URI for the test server. It skips the test in -short
// mode and when neither SIMPLEPG_TEST_CONN nor Docker is available.
func ConnString(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	if v := os.Getenv(EnvTestConn); v != "" {
		return v
	}
	connStr, err := sharedContainer()
	if err != nil {
		t.Skipf("%s not set and no container runtime: %v", EnvTestConn, err)
	}
	return connStr
}

// RequireDatabase is ConnString parsed into a config for driver.
func RequireDatabase(t *testing.T, driver simplepg.Driver) *simplepg.ConnectionConfig {
	t.Helper()

	config, err := db.ParseConnectionString(ConnString(t))
	if err != nil {
		t.Fatalf("invalid test connection string: %v", err)
	}
	config.Driver = driver
	config.AppName = "simplepg-test"
	return config
}
