package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// StandardConnector opens sessions with username/password authentication.
type StandardConnector struct {
	config *simplepg.ConnectionConfig
	logger simplepg.Logger
}

var _ simplepg.Connector = (*StandardConnector)(nil)

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *simplepg.ConnectionConfig, logger simplepg.Logger) *StandardConnector {
	return &StandardConnector{config: config, logger: logger}
}

// Connect opens one session. Failures are not retried here; retry belongs to
// operations on an established session.
func (c *StandardConnector) Connect(ctx context.Context) (simplepg.Session, error) {
	return openSession(ctx, c.config, nil, c.logger)
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod. The config is validated first.
func NewConnector(config *simplepg.ConnectionConfig, logger simplepg.Logger) (simplepg.Connector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.AuthMethod {
	case simplepg.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case simplepg.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case simplepg.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case simplepg.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, simplepg.ErrUnsupportedAuthMethod)
	}
}

// openSession opens a session with the configured driver. dial, when set,
// replaces the network dialer (pgx only).
func openSession(ctx context.Context, config *simplepg.ConnectionConfig, dial pgconn.DialFunc, logger simplepg.Logger) (simplepg.Session, error) {
	connStr := BuildConnectionString(config)

	var (
		session simplepg.Session
		err     error
	)
	switch config.Driver {
	case simplepg.DriverPgx:
		session, err = openPgxSession(ctx, connStr, dial, logger)
	case simplepg.DriverPQ:
		if dial != nil {
			return nil, fmt.Errorf("custom dialer requires the pgx driver: %w", simplepg.ErrUnsupportedDriver)
		}
		session, err = openSQLSession(ctx, connStr)
	default:
		return nil, fmt.Errorf("driver %v: %w", config.Driver, simplepg.ErrUnsupportedDriver)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	return session, nil
}

// wrapConnectionError wraps raw driver connect errors with actionable guidance.
// The result chains both simplepg.ErrConnectFailure and err.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var guidance string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		guidance = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection`, addr, host, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		guidance = fmt.Sprintf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable`, host)

	case strings.Contains(errStr, "password authentication failed"):
		guidance = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check SIMPLEPG_<ROLE>_PASSWORD)
  - Wrong username
  - Expired cloud token`, database)

	case strings.Contains(errStr, "does not exist"):
		guidance = fmt.Sprintf(`database "%s" does not exist

To create it:
  createdb %s`, database, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		guidance = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - connect_timeout too small for this network`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		guidance = `SSL/TLS connection error

Possible causes:
  - Server does not support SSL (set sslmode: disable)
  - Certificate verification failed (try sslmode: require)`

	case strings.Contains(errStr, "too many connections"):
		guidance = fmt.Sprintf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached in postgresql.conf
  - Sessions leaked by other clients`, database)

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", simplepg.ErrConnectFailure, err)
	}

	return fmt.Errorf("%s\n\n%w: %w", guidance, simplepg.ErrConnectFailure, err)
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *simplepg.ConnectionConfig, logger simplepg.Logger) (simplepg.Connector, error) {
	endpoint := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", simplepg.ErrInvalidConfig, err)
	}

	return NewTokenBasedConnector(config, tokenProvider, logger), nil
}

// newGoogleConnector creates a connector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *simplepg.ConnectionConfig, logger simplepg.Logger) (simplepg.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires google_instance (project:region:instance): %w", simplepg.ErrInvalidConfig)
	}
	if config.Driver != simplepg.DriverPgx {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires the pgx driver: %w", simplepg.ErrUnsupportedDriver)
	}

	return NewGoogleCloudSQLConnector(config, logger), nil
}

// newAzureConnector uses Service Principal auth when tenant, client and
// secret are all set, and the DefaultAzureCredential chain otherwise.
func newAzureConnector(config *simplepg.ConnectionConfig, logger simplepg.Logger) (simplepg.Connector, error) {
	var (
		tokenProvider TokenProvider
		err           error
	)

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", simplepg.ErrInvalidConfig, err)
	}

	return NewTokenBasedConnector(config, tokenProvider, logger), nil
}
