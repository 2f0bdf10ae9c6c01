package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"image-catalog/internal/logging"
)

// envPrefix namespaces every configuration variable, e.g. CATALOG_SCAN_INTERVAL.
const envPrefix = "CATALOG"

// Config holds all service configuration, loaded from the environment.
type Config struct {
	// ScanInterval is the reconciliation pass interval in minutes.
	ScanInterval int `envconfig:"SCAN_INTERVAL" default:"30"`

	DatabasePath string `envconfig:"DATABASE_PATH" default:"/database/catalog.db"`

	Port        string `envconfig:"PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`

	MetricsEnabled  bool `envconfig:"METRICS_ENABLED" default:"true"`
	LogHealthChecks bool `envconfig:"LOG_HEALTH_CHECKS" default:"false"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	cfg.DatabasePath = abs

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan interval must be a positive number of minutes, got %d", c.ScanInterval)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	return nil
}

// ScanIntervalDuration converts the configured minutes to a time.Duration.
func (c *Config) ScanIntervalDuration() time.Duration {
	return time.Duration(c.ScanInterval) * time.Minute
}

// LogDetails prints the active configuration at startup.
func (c *Config) LogDetails() {
	logging.Info("Configuration")
	logging.Info("=============")
	logging.Info("  Scan interval (minutes): %d", c.ScanInterval)
	logging.Info("  Database path:           %s", c.DatabasePath)
	logging.Info("  HTTP port:               %s", c.Port)
	logging.Info("  Metrics port:            %s", c.MetricsPort)
	logging.Info("  Metrics enabled:         %v", c.MetricsEnabled)
	logging.Info("  Log level:               %s", logging.GetLevel())
}
