// Package config handles the configuration directory, the config file and the API address.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "tman"

	// ConfigFile is the optional configuration filename inside the config directory.
	ConfigFile = "config.yaml"

	// SessionFile is the persisted session filename.
	SessionFile = "session.json"

	// DefaultAPIURL is used when neither the environment nor the config file names an API.
	DefaultAPIURL = "http://localhost:8080/api"

	// EnvAPIURL overrides the API base URL.
	EnvAPIURL = "TMAN_API_URL"

	keyAPIURL = "api_url"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the task API base address, without a trailing slash.
	APIURL string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config for the default or specified config directory and
// resolves the API address. Precedence: TMAN_API_URL, then api_url from
// config.yaml, then DefaultAPIURL.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetDefault(keyAPIURL, DefaultAPIURL)
	if err := v.BindEnv(keyAPIURL, EnvAPIURL); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	cfg := &Config{Dir: dir}
	cfg.SetAPIURL(v.GetString(keyAPIURL))
	return cfg, nil
}

// SetAPIURL normalizes and stores the API base address.
// An empty value restores DefaultAPIURL.
func (c *Config) SetAPIURL(u string) {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u == "" {
		u = DefaultAPIURL
	}
	c.APIURL = u
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the persisted session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
