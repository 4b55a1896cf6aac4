package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// RoleConfig is the connection block for one role in simplepg.yaml.
// Passwords are deliberately absent; they come from the environment or url.
type RoleConfig struct {
	URL            string            `yaml:"url,omitempty"`
	Host           string            `yaml:"host,omitempty"`
	Port           int               `yaml:"port,omitempty"`
	Database       string            `yaml:"database,omitempty"`
	Username       string            `yaml:"username,omitempty"`
	SSLMode        string            `yaml:"sslmode,omitempty"`
	// Driver is pgx (default) or pq. Under pq, sslmode prefer becomes require.
	Driver         string            `yaml:"driver,omitempty"`
	AuthMethod     string            `yaml:"auth_method,omitempty"`
	AWSRegion      string            `yaml:"aws_region,omitempty"`
	GoogleInstance string            `yaml:"google_instance,omitempty"`
	AzureTenantID  string            `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string            `yaml:"azure_client_id,omitempty"`
	Params         map[string]string `yaml:"params,omitempty"`
}

// File is the parsed content of simplepg.yaml.
type File struct {
	// Seconds. Zero means the default.
	ConnectTimeout int `yaml:"connect_timeout,omitempty"`

	// Seconds. Nil means the default; zero reconnects immediately.
	ReconnectDelay *int `yaml:"reconnect_delay,omitempty"`

	UniqueID string `yaml:"unique_id,omitempty"`

	Data RoleConfig `yaml:"data"`
	Auth RoleConfig `yaml:"auth"`
}

const ConfigFileName = "simplepg.yaml"

// Load reads simplepg.yaml. path may be the file itself or the directory
// containing it.
func Load(path string) (*File, error) {
	configPath := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		configPath = filepath.Join(path, ConfigFileName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return &cfg, nil
}
