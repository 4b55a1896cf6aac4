package simplepg

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// NamedArgs binds @name placeholders when passed as the only statement argument.
//
//	conn.Execute(ctx, "UPDATE t SET name = @name WHERE id = @id",
//	    simplepg.NamedArgs{"id": 1, "name": "b"})
type NamedArgs = pgx.NamedArgs

// Role is the logical purpose of a connection. Each role has its own
// configuration and is cached at most once per process.
type Role string

const (
	RoleData Role = "data" // Application data
	RoleAuth Role = "auth" // Authentication/authorization store
)

// Roles lists the roles every deployment configures.
var Roles = []Role{RoleData, RoleAuth}

// IsValid returns true if r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleData || r == RoleAuth
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownRole)
	}
	return r, nil
}

// ConnectionConfig represents the parameters needed to open a session.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Driver selects the session backend
	Driver Driver

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is required when AuthMethod is AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance),
	// required when AuthMethod is AuthMethodGoogleIAM.
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Validate checks if the ConnectionConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" && c.AuthMethod != AuthMethodGoogleIAM {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range: %w", c.Port, ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrInvalidConfig))
	}
	if c.Username == "" {
		errs = append(errs, fmt.Errorf("username is required: %w", ErrInvalidConfig))
	}
	if c.AuthMethod == AuthMethodStandard && c.Password == "" {
		errs = append(errs, fmt.Errorf("password is required for standard authentication: %w", ErrInvalidConfig))
	}
	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}
	if !c.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("driver %v: %w", c.Driver, ErrUnsupportedDriver))
	}
	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod converts a config value ("standard", "aws", "google", "azure") into an AuthMethod.
// An empty string selects AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// Driver selects the client library a session is opened with.
type Driver int

const (
	DriverPgx Driver = iota // github.com/jackc/pgx/v5
	DriverPQ                // database/sql with github.com/lib/pq
)

func (d Driver) String() string {
	switch d {
	case DriverPgx:
		return "pgx"
	case DriverPQ:
		return "pq"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// IsValid returns true if the Driver is a valid, defined value.
func (d Driver) IsValid() bool {
	return d == DriverPgx || d == DriverPQ
}

// ParseDriver converts a config value into a Driver. An empty string selects DriverPgx.
func ParseDriver(s string) (Driver, error) {
	switch s {
	case "", "pgx":
		return DriverPgx, nil
	case "pq", "lib/pq":
		return DriverPQ, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedDriver)
	}
}
