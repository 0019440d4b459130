// Package config loads the application configuration from a YAML file and
// applies environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the backtester.
type Config struct {
	Database Database `yaml:"database"`
	Server   Server   `yaml:"server"`
	Oracle   Oracle   `yaml:"oracle"`
	Journal  Journal  `yaml:"journal"`
	Logging  Logging  `yaml:"logging"`
	Backtest Backtest `yaml:"backtest"`
}

// Database holds the Postgres price datasource connection string.
type Database struct {
	URL string `yaml:"url"`
}

// Server holds the run-control API listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Oracle holds the recommendation service endpoint and retry behaviour.
type Oracle struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

// Journal holds the path of the local SQLite run journal; empty disables it.
type Journal struct {
	Path string `yaml:"path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Backtest holds run defaults.
type Backtest struct {
	InitialCapital float64 `yaml:"initial_capital"`
	HistoryDays    int     `yaml:"history_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:  Server{Host: "0.0.0.0", Port: 5000},
		Oracle:  Oracle{TimeoutSeconds: 120, MaxAttempts: 3},
		Logging: Logging{Level: "info", Format: "text"},
		Backtest: Backtest{
			InitialCapital: 100000,
			HistoryDays:    30,
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path loads defaults and env only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// ListenAddr is the host:port the API server binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// OracleTimeout is the per-request oracle timeout.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ORACLE_URL"); v != "" {
		cfg.Oracle.URL = v
	}
	if v := os.Getenv("JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
