// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads polls configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tombee/polls/internal/log"
	pollserrors "github.com/tombee/polls/pkg/errors"
)

// ErrInvalidConfig is returned when configuration validation fails.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Backend types.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config represents the complete polls configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Backend BackendConfig `yaml:"backend"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the TCP address to listen on (e.g., "127.0.0.1:8000").
	// Environment: POLLS_ADDR
	Addr string `yaml:"addr"`

	// ReadTimeout bounds reading a full request.
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`

	// IdleTimeout bounds keep-alive connections.
	IdleTimeout time.Duration `yaml:"idle_timeout,omitempty"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Environment: POLLS_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the log level (trace, debug, info, warn, error).
	Level string `yaml:"level"`

	// Format is the log format (json, text).
	Format string `yaml:"format"`

	// AddSource adds source file and line to each entry.
	AddSource bool `yaml:"add_source"`
}

// BackendConfig configures the question store.
type BackendConfig struct {
	// Type selects the backend: memory, sqlite or postgres.
	// Environment: POLLS_BACKEND
	Type string `yaml:"type"`

	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file.
	// Environment: POLLS_SQLITE_PATH
	// Default: $XDG_DATA_HOME/polls/polls.db
	Path string `yaml:"path"`

	// WAL enables write-ahead logging.
	WAL bool `yaml:"wal"`
}

// PostgresConfig configures the PostgreSQL backend.
type PostgresConfig struct {
	// ConnectionString is the PostgreSQL connection URL.
	// Environment: POLLS_POSTGRES_URL
	ConnectionString string `yaml:"connection_string"`

	// MaxConns sets the pool size. Zero keeps the driver default.
	MaxConns int32 `yaml:"max_conns,omitempty"`

	// ConnMaxLifetime sets the maximum lifetime of a connection.
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	// Enabled exports spans as JSON to stderr.
	// Environment: POLLS_TRACING_ENABLED
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported on every span.
	ServiceName string `yaml:"service_name,omitempty"`

	// SampleRate is the fraction of root spans kept, between 0 and 1.
	SampleRate float64 `yaml:"sample_rate,omitempty"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Backend: BackendConfig{
			Type: BackendSQLite,
			SQLite: SQLiteConfig{
				Path: filepath.Join(defaultDataDir(), "polls.db"),
				WAL:  true,
			},
		},
		Tracing: TracingConfig{
			ServiceName: "polls",
			SampleRate:  1,
		},
	}
}

// Load loads configuration from an optional YAML file, then environment
// variables, then validates it. Environment variables take precedence over
// the file. If configPath is empty, only environment variables are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &pollserrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &pollserrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills zero values left by a partial YAML file.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = defaults.Server.IdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}

	if c.Backend.Type == "" {
		c.Backend.Type = defaults.Backend.Type
	}
	if c.Backend.SQLite.Path == "" {
		c.Backend.SQLite.Path = defaults.Backend.SQLite.Path
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaults.Tracing.ServiceName
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("POLLS_ADDR"); val != "" {
		c.Server.Addr = val
	}
	if val := os.Getenv("POLLS_SHUTDOWN_TIMEOUT"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Server.ShutdownTimeout = duration
		}
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.ToLower(val) == "true"
	}

	if val := os.Getenv("POLLS_BACKEND"); val != "" {
		c.Backend.Type = strings.ToLower(val)
	}
	if val := os.Getenv("POLLS_SQLITE_PATH"); val != "" {
		c.Backend.SQLite.Path = val
	}
	if val := os.Getenv("POLLS_POSTGRES_URL"); val != "" {
		c.Backend.Postgres.ConnectionString = val
	}

	if val := os.Getenv("POLLS_TRACING_ENABLED"); val != "" {
		c.Tracing.Enabled = val == "1" || strings.ToLower(val) == "true"
	}
	if val := os.Getenv("POLLS_TRACING_SAMPLE_RATE"); val != "" {
		if rate, err := strconv.ParseFloat(val, 64); err == nil {
			c.Tracing.SampleRate = rate
		}
	}
}

// Validate checks that the configuration is valid. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	} else if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = append(errs, fmt.Sprintf("server.addr must be host:port, got %q", c.Server.Addr))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		errs = append(errs, "server timeouts must not be negative")
	}

	if !log.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level must be one of trace, debug, info, warn, error, got %q", c.Log.Level))
	}
	if c.Log.Format != string(log.FormatJSON) && c.Log.Format != string(log.FormatText) {
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}

	switch c.Backend.Type {
	case BackendMemory:
	case BackendSQLite:
		if c.Backend.SQLite.Path == "" {
			errs = append(errs, "backend.sqlite.path is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Backend.Postgres.ConnectionString == "" {
			errs = append(errs, "backend.postgres.connection_string is required for the postgres backend")
		}
		if c.Backend.Postgres.MaxConns < 0 {
			errs = append(errs, fmt.Sprintf("backend.postgres.max_conns must not be negative, got %d", c.Backend.Postgres.MaxConns))
		}
	default:
		errs = append(errs, fmt.Sprintf("backend.type must be memory, sqlite or postgres, got %q", c.Backend.Type))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be between 0 and 1, got %v", c.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}

// LoggerConfig converts the log section into a log.Config writing to stderr.
func (c *Config) LoggerConfig() *log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = c.Log.Level
	cfg.Format = log.Format(c.Log.Format)
	cfg.AddSource = c.Log.AddSource
	return cfg
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// defaultDataDir returns the default data directory.
func defaultDataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "polls")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "polls")
	}
	return filepath.Join(homeDir, ".local", "share", "polls")
}
