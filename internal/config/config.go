// Package config
package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Readiness ReadinessConfig `yaml:"readiness"`
	Auth      AuthConfig      `yaml:"auth"`
	Input     InputConfig     `yaml:"input"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	URL string `yaml:"url"`
}

type ReadinessConfig struct {
	Attempts   int `yaml:"attempts"`
	IntervalMS int `yaml:"interval_ms"`
}

type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type InputConfig struct {
	File        string `yaml:"file"`
	WindowsFile string `yaml:"windows_file"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://localhost:8080",
		},
		Readiness: ReadinessConfig{
			Attempts:   10,
			IntervalMS: 1000,
		},
		Auth: AuthConfig{
			Username: "admin",
			Password: "admin",
		},
		Input: InputConfig{
			File:        "poll_input.json",
			WindowsFile: "poll_input_win_a.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from file and applies environment variable overrides.
// A missing config file is not an error: the seeder runs on defaults so it can
// be dropped next to a seed file with no further setup.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate ensures all required configuration values are set
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server url is required")
	}
	if !strings.HasPrefix(c.Server.URL, "http://") && !strings.HasPrefix(c.Server.URL, "https://") {
		return fmt.Errorf("server url must start with http:// or https://")
	}
	if c.Readiness.Attempts <= 0 {
		return fmt.Errorf("readiness attempts must be positive")
	}
	if c.Readiness.IntervalMS <= 0 {
		return fmt.Errorf("readiness interval_ms must be positive")
	}
	if c.Input.File == "" {
		return fmt.Errorf("input file is required")
	}
	if !c.Logging.IsLogLevelValid() {
		return fmt.Errorf("logging level must be one of debug, info, warn, error")
	}
	return nil
}

// applyEnvOverrides checks for environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NMS_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("NMS_ADMIN_USER"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("NMS_SEED_INPUT"); v != "" {
		cfg.Input.File = v
	}
}

// GetInterval returns the readiness poll interval as a duration
func (r *ReadinessConfig) GetInterval() time.Duration {
	return time.Duration(r.IntervalMS) * time.Millisecond
}

// IsLogLevelValid checks if the log level is valid
func (l *LoggingConfig) IsLogLevelValid() bool {
	validLevels := []string{"debug", "info", "warn", "error"}
	return slices.Contains(validLevels, strings.ToLower(l.Level))
}

// NewLogger builds the structured logger described by the logging config.
func NewLogger(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
