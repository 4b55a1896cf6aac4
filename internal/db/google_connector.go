package db

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// GoogleCloudSQLConnector opens pgx sessions to Google Cloud SQL using IAM
// database authentication through the Cloud SQL Go Connector.
//
// The dialer is created on the first Connect and reused by every later
// session, including reconnects. Implements io.Closer: Close releases the
// dialer and must be called after the last session is closed.
type GoogleCloudSQLConnector struct {
	config *simplepg.ConnectionConfig
	logger simplepg.Logger

	mu     sync.Mutex
	dialer *cloudsqlconn.Dialer
}

var _ simplepg.Connector = (*GoogleCloudSQLConnector)(nil)

// NewGoogleCloudSQLConnector creates a connector for config.GoogleInstance
// (project:region:instance).
func NewGoogleCloudSQLConnector(config *simplepg.ConnectionConfig, logger simplepg.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{config: config, logger: logger}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (simplepg.Session, error) {
	dialer, err := c.getDialer(ctx)
	if err != nil {
		return nil, err
	}

	instance := c.config.GoogleInstance
	dial := func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}

	// The dialer handles TLS; the host is only a placeholder for pgx.
	dialConfig := *c.config
	dialConfig.Host = "cloudsql"
	dialConfig.SSLMode = "disable"

	return openSession(ctx, &dialConfig, dial, c.logger)
}

func (c *GoogleCloudSQLConnector) getDialer(ctx context.Context) (*cloudsqlconn.Dialer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialer != nil {
		return c.dialer, nil
	}

	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", simplepg.ErrConnectFailure, err)
	}
	c.dialer = dialer
	return dialer, nil
}

// Close releases the Cloud SQL dialer. Safe to call more than once.
func (c *GoogleCloudSQLConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dialer == nil {
		return nil
	}
	err := c.dialer.Close()
	c.dialer = nil
	return err
}
