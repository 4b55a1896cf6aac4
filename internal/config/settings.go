package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/vvka-141/simplepg/internal/db"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// Environment variable names. Per-role variables are SIMPLEPG_<ROLE>_<KEY>,
// e.g. SIMPLEPG_DATA_HOST or SIMPLEPG_AUTH_PASSWORD.
const (
	EnvPrefix         = "SIMPLEPG_"
	EnvConnectTimeout = "SIMPLEPG_CONNECT_TIMEOUT"
	EnvReconnectDelay = "SIMPLEPG_RECONNECT_DELAY"
	EnvUniqueID       = "SIMPLEPG_UNIQUE_ID"

	EnvAzureTenantID     = "AZURE_TENANT_ID"
	EnvAzureClientID     = "AZURE_CLIENT_ID"
	EnvAzureClientSecret = "AZURE_CLIENT_SECRET"
	EnvAWSRegion         = "AWS_REGION"
)

// Settings is the resolved configuration shared by every role plus one
// ConnectionConfig per role.
type Settings struct {
	ConnectTimeout time.Duration
	ReconnectDelay time.Duration
	UniqueID       string

	roles map[simplepg.Role]*simplepg.ConnectionConfig
}

// Role returns a copy of the connection configuration for role.
func (s *Settings) Role(role simplepg.Role) (*simplepg.ConnectionConfig, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%q: %w", role, simplepg.ErrUnknownRole)
	}
	cfg, ok := s.roles[role]
	if !ok {
		return nil, fmt.Errorf("no configuration for role %q: %w", role, simplepg.ErrInvalidConfig)
	}

	copied := *cfg
	copied.AdditionalParams = make(map[string]string, len(cfg.AdditionalParams))
	for k, v := range cfg.AdditionalParams {
		copied.AdditionalParams[k] = v
	}
	return &copied, nil
}

// LoadSettings loads .env (envFile, or ./.env when empty and present), then
// simplepg.yaml from configPath, and resolves both against the process
// environment. A missing config file is only an error when configPath was
// given explicitly.
func LoadSettings(configPath, envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w: %w", envFile, simplepg.ErrInvalidConfig, err)
		}
	} else {
		_ = godotenv.Load()
	}

	file := &File{}
	path := configPath
	if path == "" {
		path = "."
	}
	loaded, err := Load(path)
	switch {
	case err == nil:
		file = loaded
	case errors.Is(err, ErrConfigNotFound) && configPath == "":
	default:
		return nil, fmt.Errorf("failed to load %s: %w: %w", ConfigFileName, simplepg.ErrInvalidConfig, err)
	}

	return Resolve(file, os.Getenv)
}

// Resolve applies defaults and environment overrides to file.
// Precedence, lowest first: defaults, role url, role fields, environment.
func Resolve(file *File, getenv func(string) string) (*Settings, error) {
	s := &Settings{
		ConnectTimeout: simplepg.DefaultConnectTimeout,
		ReconnectDelay: simplepg.DefaultReconnectDelay,
		UniqueID:       file.UniqueID,
		roles:          make(map[simplepg.Role]*simplepg.ConnectionConfig),
	}

	if file.ConnectTimeout < 0 {
		return nil, fmt.Errorf("connect_timeout cannot be negative: %w", simplepg.ErrInvalidConfig)
	}
	if file.ConnectTimeout > 0 {
		s.ConnectTimeout = time.Duration(file.ConnectTimeout) * time.Second
	}
	if file.ReconnectDelay != nil {
		if *file.ReconnectDelay < 0 {
			return nil, fmt.Errorf("reconnect_delay cannot be negative: %w", simplepg.ErrInvalidConfig)
		}
		s.ReconnectDelay = time.Duration(*file.ReconnectDelay) * time.Second
	}

	var err error
	if s.ConnectTimeout, err = durationFromEnv(getenv, EnvConnectTimeout, s.ConnectTimeout); err != nil {
		return nil, err
	}
	if s.ReconnectDelay, err = durationFromEnv(getenv, EnvReconnectDelay, s.ReconnectDelay); err != nil {
		return nil, err
	}
	if v := getenv(EnvUniqueID); v != "" {
		s.UniqueID = v
	}
	if s.UniqueID == "" {
		s.UniqueID = uuid.NewString()
	}

	blocks := map[simplepg.Role]RoleConfig{
		simplepg.RoleData: file.Data,
		simplepg.RoleAuth: file.Auth,
	}
	for _, role := range simplepg.Roles {
		cfg, err := s.resolveRole(role, blocks[role], getenv)
		if err != nil {
			return nil, fmt.Errorf("role %s: %w", role, err)
		}
		s.roles[role] = cfg
	}

	return s, nil
}

func (s *Settings) resolveRole(role simplepg.Role, block RoleConfig, getenv func(string) string) (*simplepg.ConnectionConfig, error) {
	env := func(key string) string {
		return getenv(EnvPrefix + strings.ToUpper(string(role)) + "_" + key)
	}

	cfg := &simplepg.ConnectionConfig{
		Port:             simplepg.DefaultPort,
		SSLMode:          simplepg.DefaultSSLMode,
		ConnectTimeout:   s.ConnectTimeout,
		AdditionalParams: make(map[string]string),
	}

	url := firstNonEmpty(env("URL"), block.URL)
	if url != "" {
		parsed, err := db.ParseConnectionString(url)
		if err != nil {
			return nil, err
		}
		if parsed.ConnectTimeout == 0 {
			parsed.ConnectTimeout = s.ConnectTimeout
		}
		cfg = parsed
	}

	setString(&cfg.Host, block.Host, env("HOST"))
	setString(&cfg.Database, block.Database, env("DATABASE"))
	setString(&cfg.Username, block.Username, env("USER"))
	setString(&cfg.Password, env("PASSWORD"))
	setString(&cfg.SSLMode, block.SSLMode, env("SSLMODE"))
	setString(&cfg.AWSRegion, block.AWSRegion, getenv(EnvAWSRegion))
	setString(&cfg.GoogleInstance, block.GoogleInstance)
	setString(&cfg.AzureTenantID, block.AzureTenantID, getenv(EnvAzureTenantID))
	setString(&cfg.AzureClientID, block.AzureClientID, getenv(EnvAzureClientID))
	setString(&cfg.AzureClientSecret, getenv(EnvAzureClientSecret))

	if block.Port != 0 {
		cfg.Port = block.Port
	}
	if v := env("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %sPORT %q: %w", EnvPrefix+strings.ToUpper(string(role))+"_", v, simplepg.ErrInvalidConfig)
		}
		cfg.Port = port
	}

	driver, err := simplepg.ParseDriver(firstNonEmpty(env("DRIVER"), block.Driver))
	if err != nil {
		return nil, err
	}
	cfg.Driver = driver

	authMethod, err := simplepg.ParseAuthMethod(firstNonEmpty(env("AUTH_METHOD"), block.AuthMethod))
	if err != nil {
		return nil, err
	}
	cfg.AuthMethod = authMethod

	for k, v := range block.Params {
		cfg.AdditionalParams[k] = v
	}
	if cfg.AppName == "" {
		cfg.AppName = simplepg.ApplicationNamePrefix + "-" + s.UniqueID
	}

	return cfg, nil
}

// durationFromEnv accepts whole seconds ("3") or a Go duration ("500ms").
func durationFromEnv(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}

	var d time.Duration
	if seconds, err := strconv.Atoi(v); err == nil {
		d = time.Duration(seconds) * time.Second
	} else if parsed, err := time.ParseDuration(v); err == nil {
		d = parsed
	} else {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, simplepg.ErrInvalidConfig)
	}

	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative: %w", key, simplepg.ErrInvalidConfig)
	}
	return d, nil
}

// setString assigns the last non-empty candidate to dst.
func setString(dst *string, candidates ...string) {
	for _, c := range candidates {
		if c != "" {
			*dst = c
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
