package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort    string  `yaml:"server_port"`
	MaxFileSize   int64   `yaml:"max_file_size"`
	LineTolerance float64 `yaml:"line_tolerance"`
	BatchWorkers  int     `yaml:"batch_workers"`
	LogLevel      string  `yaml:"log_level"`
	ConceptsFile  string  `yaml:"concepts_file"` // empty: use the embedded registry
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerPort:    "8080",
		MaxFileSize:   10 * 1024 * 1024, // 10 MB
		LineTolerance: 3,
		BatchWorkers:  4,
		LogLevel:      "info",
	}
}

// LoadConfig starts from the defaults, applies the YAML file named by
// PAYSLIP_CONFIG when set, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("PAYSLIP_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.ServerPort = v
	}
	if v := os.Getenv("CONCEPTS_FILE"); v != "" {
		cfg.ConceptsFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("MAX_FILE_SIZE: %w", err)
		}
		cfg.MaxFileSize = n
	}
	if v := os.Getenv("LINE_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("LINE_TOLERANCE: %w", err)
		}
		cfg.LineTolerance = f
	}
	if v := os.Getenv("BATCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("BATCH_WORKERS: %w", err)
		}
		cfg.BatchWorkers = n
	}

	return cfg, cfg.Validate()
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server_port is required")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be > 0")
	}
	if c.LineTolerance <= 0 {
		return fmt.Errorf("line_tolerance must be > 0")
	}
	if c.BatchWorkers <= 0 {
		return fmt.Errorf("batch_workers must be > 0")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// NewLogger builds the JSON logger used across the service.
func (c *Config) NewLogger() *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", s, err)
	}
	return level, nil
}
