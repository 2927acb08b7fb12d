// Package config loads and validates the SemQuery service configuration.
//
// Configuration comes from an optional JSON or YAML file layered under
// environment overrides (SEMQUERY_* variables), with built-in defaults for
// everything else. Runtime access goes through SafeConfig so a reload never
// races a reader.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Database   DatabaseConfig   `json:"database" yaml:"database"`
	Oracle     OracleConfig     `json:"oracle" yaml:"oracle"`
	Completion CompletionConfig `json:"completion" yaml:"completion"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// OracleConfig holds the embedding service connection.
type OracleConfig struct {
	BaseURL   string        `json:"base_url" yaml:"base_url"`
	Model     string        `json:"model" yaml:"model"`
	APIKey    string        `json:"api_key" yaml:"api_key"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	CacheSize int           `json:"cache_size" yaml:"cache_size"`
}

// CompletionConfig holds the language-model proxy connection.
type CompletionConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model" yaml:"model"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ClassifierConfig bounds the similarity fan-out.
type ClassifierConfig struct {
	Workers int `json:"workers" yaml:"workers"`
}

// LoggingConfig controls slog setup.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8090,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "semquery.db",
		},
		Oracle: OracleConfig{
			BaseURL:   "http://localhost:8000/v1",
			Model:     "text-embedding-3-small",
			Timeout:   30 * time.Second,
			CacheSize: 4096,
		},
		Completion: CompletionConfig{
			BaseURL: "http://localhost:8000/v1",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Classifier: ClassifierConfig{
			Workers: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from an optional file (JSON or YAML by extension),
// applies SEMQUERY_* environment overrides, and validates the result. An
// empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing YAML config %s: %w", path, err)
			}
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing JSON config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies SEMQUERY_* environment variables on top of the
// loaded configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SEMQUERY_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("SEMQUERY_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("SEMQUERY_DB_PATH"); val != "" {
		cfg.Database.Path = val
	}
	if val := os.Getenv("SEMQUERY_ORACLE_URL"); val != "" {
		cfg.Oracle.BaseURL = val
	}
	if val := os.Getenv("SEMQUERY_ORACLE_MODEL"); val != "" {
		cfg.Oracle.Model = val
	}
	if val := os.Getenv("SEMQUERY_ORACLE_API_KEY"); val != "" {
		cfg.Oracle.APIKey = val
	}
	if val := os.Getenv("SEMQUERY_COMPLETION_URL"); val != "" {
		cfg.Completion.BaseURL = val
	}
	if val := os.Getenv("SEMQUERY_COMPLETION_MODEL"); val != "" {
		cfg.Completion.Model = val
	}
	if val := os.Getenv("SEMQUERY_COMPLETION_API_KEY"); val != "" {
		cfg.Completion.APIKey = val
	}
	if val := os.Getenv("SEMQUERY_CLASSIFIER_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Classifier.Workers = n
		}
	}
	if val := os.Getenv("SEMQUERY_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SEMQUERY_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Oracle.BaseURL == "" {
		return fmt.Errorf("oracle base URL is required")
	}
	if c.Oracle.Model == "" {
		return fmt.Errorf("oracle model is required")
	}
	if c.Completion.BaseURL == "" {
		return fmt.Errorf("completion base URL is required")
	}
	if c.Completion.Model == "" {
		return fmt.Errorf("completion model is required")
	}
	if c.Classifier.Workers < 1 {
		return fmt.Errorf("classifier workers must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SafeConfig provides thread-safe access to the service configuration.
type SafeConfig struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewSafeConfig wraps a configuration for concurrent access.
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{cfg: cfg}
}

// Get returns a copy of the current configuration.
func (sc *SafeConfig) Get() Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return *sc.cfg
}

// Update atomically replaces the configuration after validation.
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
	return nil
}
