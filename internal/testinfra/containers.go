// Package testinfra starts disposable PostgreSQL servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	DefaultImage = "postgres:17-alpine"

	// EnvImage overrides DefaultImage, e.g. to test against an older server.
	EnvImage = "SIMPLEPG_TEST_IMAGE"

	User     = "simplepg"
	Password = "simplepg"
	Database = "simplepg"

	readyLog       = "database system is ready to accept connections"
	startupTimeout = 60 * time.Second
)

// Postgres is a running container and the URI to reach it.
type Postgres struct {
	container  *postgres.PostgresContainer
	ConnString string
}

// StartPostgres runs a PostgreSQL container without TLS. The returned
// connection string uses sslmode=disable.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	image := DefaultImage
	if v := os.Getenv(EnvImage); v != "" {
		image = v
	}

	ctr, err := postgres.Run(ctx, image,
		postgres.WithUsername(User),
		postgres.WithPassword(Password),
		postgres.WithDatabase(Database),
		// The entrypoint restarts the server after init, so readiness is logged twice.
		testcontainers.WithWaitStrategy(
			wait.ForLog(readyLog).WithOccurrence(2).WithStartupTimeout(startupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", image, err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(ctr)
		return nil, fmt.Errorf("connection string for %s: %w", image, err)
	}

	return &Postgres{container: ctr, ConnString: connStr}, nil
}

// Terminate stops and removes the container.
func (p *Postgres) Terminate(ctx context.Context) error {
	return p.container.Terminate(ctx)
}
