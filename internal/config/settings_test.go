package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/simplepg/internal/db"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func intPtr(v int) *int { return &v }

func TestResolve_Defaults(t *testing.T) {
	s, err := Resolve(&File{}, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, simplepg.DefaultConnectTimeout, s.ConnectTimeout)
	assert.Equal(t, simplepg.DefaultReconnectDelay, s.ReconnectDelay)
	assert.NotEmpty(t, s.UniqueID, "a diagnostic id is generated when none is configured")

	for _, role := range simplepg.Roles {
		cfg, err := s.Role(role)
		require.NoError(t, err)
		assert.Equal(t, simplepg.DefaultPort, cfg.Port)
		assert.Equal(t, simplepg.DefaultSSLMode, cfg.SSLMode)
		assert.Equal(t, simplepg.DriverPgx, cfg.Driver)
		assert.Equal(t, simplepg.AuthMethodStandard, cfg.AuthMethod)
		assert.Equal(t, simplepg.DefaultConnectTimeout, cfg.ConnectTimeout)
		assert.Equal(t, "simplepg-"+s.UniqueID, cfg.AppName)
	}
}

func TestResolve_FileValues(t *testing.T) {
	file := &File{
		ConnectTimeout: 5,
		ReconnectDelay: intPtr(0),
		UniqueID:       "web-1",
		Data: RoleConfig{
			Host:     "data.internal",
			Port:     6432,
			Database: "app",
			Username: "app_rw",
			Driver:   "pq",
			Params:   map[string]string{"search_path": "app"},
		},
		Auth: RoleConfig{
			URL: "postgresql://auth_ro:pw@auth.internal:5434/auth?sslmode=verify-full&application_name=authsvc",
		},
	}

	s, err := Resolve(file, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, s.ConnectTimeout)
	assert.Equal(t, time.Duration(0), s.ReconnectDelay)
	assert.Equal(t, "web-1", s.UniqueID)

	data, err := s.Role(simplepg.RoleData)
	require.NoError(t, err)
	assert.Equal(t, "data.internal", data.Host)
	assert.Equal(t, 6432, data.Port)
	assert.Equal(t, "app", data.Database)
	assert.Equal(t, "app_rw", data.Username)
	assert.Equal(t, simplepg.DriverPQ, data.Driver)
	assert.Equal(t, 5*time.Second, data.ConnectTimeout)
	assert.Equal(t, "app", data.AdditionalParams["search_path"])
	assert.Equal(t, "simplepg-web-1", data.AppName)

	auth, err := s.Role(simplepg.RoleAuth)
	require.NoError(t, err)
	assert.Equal(t, "auth.internal", auth.Host)
	assert.Equal(t, 5434, auth.Port)
	assert.Equal(t, "auth", auth.Database)
	assert.Equal(t, "auth_ro", auth.Username)
	assert.Equal(t, "pw", auth.Password)
	assert.Equal(t, "verify-full", auth.SSLMode)
	assert.Equal(t, "authsvc", auth.AppName)
}

func TestResolve_EnvironmentOverrides(t *testing.T) {
	file := &File{
		UniqueID: "from-file",
		Data:     RoleConfig{Host: "file-host", Database: "file-db", Username: "file-user"},
	}
	env := envMap(map[string]string{
		"SIMPLEPG_DATA_HOST":       "env-host",
		"SIMPLEPG_DATA_PORT":       "6543",
		"SIMPLEPG_DATA_USER":       "env-user",
		"SIMPLEPG_DATA_PASSWORD":   "env-secret",
		"SIMPLEPG_DATA_SSLMODE":    "disable",
		"SIMPLEPG_DATA_DRIVER":     "lib/pq",
		"SIMPLEPG_AUTH_URL":        "postgres://svc@auth-host/authdb",
		"SIMPLEPG_AUTH_PASSWORD":   "auth-secret",
		"SIMPLEPG_CONNECT_TIMEOUT": "7",
		"SIMPLEPG_RECONNECT_DELAY": "250ms",
		"SIMPLEPG_UNIQUE_ID":       "from-env",
	})

	s, err := Resolve(file, env)
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, s.ConnectTimeout)
	assert.Equal(t, 250*time.Millisecond, s.ReconnectDelay)
	assert.Equal(t, "from-env", s.UniqueID)

	data, _ := s.Role(simplepg.RoleData)
	assert.Equal(t, "env-host", data.Host)
	assert.Equal(t, 6543, data.Port)
	assert.Equal(t, "file-db", data.Database)
	assert.Equal(t, "env-user", data.Username)
	assert.Equal(t, "env-secret", data.Password)
	assert.Equal(t, "disable", data.SSLMode)
	assert.Equal(t, simplepg.DriverPQ, data.Driver)
	assert.Equal(t, 7*time.Second, data.ConnectTimeout)

	auth, _ := s.Role(simplepg.RoleAuth)
	assert.Equal(t, "auth-host", auth.Host)
	assert.Equal(t, "authdb", auth.Database)
	assert.Equal(t, "svc", auth.Username)
	assert.Equal(t, "auth-secret", auth.Password)
	assert.Equal(t, 7*time.Second, auth.ConnectTimeout)
}

func TestResolve_CloudSettings(t *testing.T) {
	file := &File{
		Data: RoleConfig{AuthMethod: "azure", AzureTenantID: "file-tenant"},
		Auth: RoleConfig{AuthMethod: "google-iam", GoogleInstance: "p:r:i"},
	}
	env := envMap(map[string]string{
		"AZURE_TENANT_ID":     "env-tenant",
		"AZURE_CLIENT_ID":     "client",
		"AZURE_CLIENT_SECRET": "secret",
		"AWS_REGION":          "us-east-2",
	})

	s, err := Resolve(file, env)
	require.NoError(t, err)

	data, _ := s.Role(simplepg.RoleData)
	assert.Equal(t, simplepg.AuthMethodAzureEntraID, data.AuthMethod)
	assert.Equal(t, "env-tenant", data.AzureTenantID)
	assert.Equal(t, "client", data.AzureClientID)
	assert.Equal(t, "secret", data.AzureClientSecret)
	assert.Equal(t, "us-east-2", data.AWSRegion)

	auth, _ := s.Role(simplepg.RoleAuth)
	assert.Equal(t, simplepg.AuthMethodGoogleIAM, auth.AuthMethod)
	assert.Equal(t, "p:r:i", auth.GoogleInstance)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    *File
		env     map[string]string
		wantErr error
	}{
		{"negative timeout", &File{ConnectTimeout: -1}, nil, simplepg.ErrInvalidConfig},
		{"negative delay", &File{ReconnectDelay: intPtr(-3)}, nil, simplepg.ErrInvalidConfig},
		{"negative env delay", &File{}, map[string]string{"SIMPLEPG_RECONNECT_DELAY": "-1s"}, simplepg.ErrInvalidConfig},
		{"garbage env delay", &File{}, map[string]string{"SIMPLEPG_RECONNECT_DELAY": "soon"}, simplepg.ErrInvalidConfig},
		{"bad port", &File{}, map[string]string{"SIMPLEPG_AUTH_PORT": "x"}, simplepg.ErrInvalidConfig},
		{"bad url", &File{Data: RoleConfig{URL: "nonsense"}}, nil, simplepg.ErrInvalidConfig},
		{"bad driver", &File{Data: RoleConfig{Driver: "mysql"}}, nil, simplepg.ErrUnsupportedDriver},
		{"bad auth method", &File{Auth: RoleConfig{AuthMethod: "kerberos"}}, nil, simplepg.ErrUnsupportedAuthMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.file, envMap(tt.env))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolve_SubSecondTimeoutAndIPv6Host(t *testing.T) {
	s, err := Resolve(&File{}, envMap(map[string]string{
		"SIMPLEPG_CONNECT_TIMEOUT": "500ms",
		"SIMPLEPG_DATA_HOST":       "::1",
	}))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, s.ConnectTimeout)

	cfg, err := s.Role(simplepg.RoleData)
	require.NoError(t, err)

	connStr := db.BuildConnectionString(cfg)
	assert.Contains(t, connStr, "@[::1]:5432/")
	assert.Contains(t, connStr, "connect_timeout=1")
	assert.NotContains(t, connStr, "connect_timeout=0")
}

func TestSettings_Role(t *testing.T) {
	s, err := Resolve(&File{Data: RoleConfig{Params: map[string]string{"a": "1"}}}, envMap(nil))
	require.NoError(t, err)

	_, err = s.Role(simplepg.Role("reporting"))
	assert.ErrorIs(t, err, simplepg.ErrUnknownRole)

	// Callers get a copy they may mutate freely.
	first, _ := s.Role(simplepg.RoleData)
	first.Host = "changed"
	first.AdditionalParams["a"] = "2"

	second, _ := s.Role(simplepg.RoleData)
	assert.Equal(t, "", second.Host)
	assert.Equal(t, "1", second.AdditionalParams["a"])
}

func TestLoadSettings_EnvFileAndConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	envPath := filepath.Join(dir, "test.env")

	require.NoError(t, os.WriteFile(configPath, []byte("unique_id: cfg\ndata:\n  host: db\n"), 0644))
	require.NoError(t, os.WriteFile(envPath, []byte("SIMPLEPG_DATA_PASSWORD=from-dotenv\n"), 0644))

	// godotenv never overrides variables that are already set; clear it and
	// register cleanup through t.Setenv.
	t.Setenv("SIMPLEPG_DATA_PASSWORD", "")
	os.Unsetenv("SIMPLEPG_DATA_PASSWORD")

	s, err := LoadSettings(configPath, envPath)
	require.NoError(t, err)

	data, err := s.Role(simplepg.RoleData)
	require.NoError(t, err)
	assert.Equal(t, "db", data.Host)
	assert.Equal(t, "from-dotenv", data.Password)
	assert.Equal(t, "cfg", s.UniqueID)
}

func TestLoadSettings_MissingExplicitConfig(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, simplepg.ErrInvalidConfig)
	assert.True(t, strings.Contains(err.Error(), ConfigFileName))
}

func TestLoadSettings_MissingEnvFile(t *testing.T) {
	_, err := LoadSettings("", filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, simplepg.ErrInvalidConfig)
}
