// Package config loads webshelf settings from an optional YAML file with
// environment overrides for deployment-sensitive values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "WEBSHELF_CONFIG"
	dataDirEnv      = "DATA_DIR"
	listenAddrEnv   = "WEBSHELF_ADDR"
	authUsernameEnv = "AUTH_USERNAME"
	authPasswordEnv = "AUTH_PASSWORD"
)

// Config holds all settings required across the application.
type Config struct {
	DataDir    string      `yaml:"data_dir"`
	ListenAddr string      `yaml:"listen_addr"`
	LogLevel   string      `yaml:"log_level"`
	PageSize   int         `yaml:"page_size"`
	Auth       AuthConfig  `yaml:"auth"`
	Fetch      FetchConfig `yaml:"fetch"`
}

// AuthConfig carries the HTTP basic-auth credentials for the server.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// FetchConfig tunes the page fetcher.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

// Timeout resolves the fetch timeout, zero meaning the fetcher default.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func defaultConfig() Config {
	return Config{
		DataDir:    "./data",
		ListenAddr: ":8080",
		LogLevel:   "info",
		PageSize:   20,
	}
}

// Load reads YAML configuration (if WEBSHELF_CONFIG is set) and applies
// environment overrides.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if cfg.DataDir == "" {
		cfg.DataDir = defaultConfig().DataDir
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = defaultConfig().PageSize
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dataDirEnv); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(listenAddrEnv); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(authUsernameEnv); v != "" {
		c.Auth.Username = v
	}
	if v := os.Getenv(authPasswordEnv); v != "" {
		c.Auth.Password = v
	}
}

// RequireAuth validates that serving credentials are present.
func (c Config) RequireAuth() error {
	if c.Auth.Username == "" || c.Auth.Password == "" {
		return fmt.Errorf("AUTH_USERNAME and AUTH_PASSWORD must be set")
	}
	return nil
}
