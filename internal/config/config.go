// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/logger"
)

// Notifier backends.
const (
	NotifierTray = "tray"
	NotifierLog  = "log"
	NotifierNone = "none"
)

// Config holds every setting that can come from the environment. Command line
// flags are applied on top by the CLI.
type Config struct {
	// Storage
	ConfigPath string `env:"STUDYLIT_CONFIG"`

	// Logging
	Debug         bool   `env:"STUDYLIT_DEBUG" envDefault:"false"`
	LogLevel      string `env:"STUDYLIT_LOG_LEVEL" envDefault:"info"`
	LogMaxAgeDays int    `env:"STUDYLIT_LOG_MAX_AGE_DAYS" envDefault:"28"`

	// Thresholds
	MinStreakSeconds   int `env:"STUDYLIT_MIN_STREAK_SECONDS" envDefault:"60"`
	MinRecordSeconds   int `env:"STUDYLIT_MIN_RECORD_SECONDS" envDefault:"60"`
	DefaultRestMinutes int `env:"STUDYLIT_DEFAULT_REST_MINUTES" envDefault:"1"`

	// Notifications
	Notifier string `env:"STUDYLIT_NOTIFIER" envDefault:"tray"`

	// Metrics
	MetricsFile string `env:"STUDYLIT_METRICS_FILE"`
}

// Load reads .env files (missing files are fine) and then the process
// environment.
func Load(dotenvPaths ...string) (*Config, error) {
	if err := godotenv.Load(dotenvPaths...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		logger.Debug("Loaded environment from .env file")
	}
	return parse(env.Options{})
}

// LoadFrom parses an explicit environment instead of the process one.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = constants.DefaultConfigPath
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.DefaultRestMinutes < 1 || c.DefaultRestMinutes > constants.MaxRestMinutes {
		return fmt.Errorf("invalid STUDYLIT_DEFAULT_REST_MINUTES: %d (must be 1-%d)", c.DefaultRestMinutes, constants.MaxRestMinutes)
	}
	if c.MinStreakSeconds < 0 {
		return fmt.Errorf("invalid STUDYLIT_MIN_STREAK_SECONDS: %d (must not be negative)", c.MinStreakSeconds)
	}
	if c.LogMaxAgeDays < 0 {
		return fmt.Errorf("invalid STUDYLIT_LOG_MAX_AGE_DAYS: %d (must not be negative)", c.LogMaxAgeDays)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid STUDYLIT_LOG_LEVEL: %q (must be debug, info, warn, error or fatal)", c.LogLevel)
	}
	if c.MinRecordSeconds < 0 {
		return fmt.Errorf("invalid STUDYLIT_MIN_RECORD_SECONDS: %d (must not be negative)", c.MinRecordSeconds)
	}
	switch c.Notifier {
	case NotifierTray, NotifierLog, NotifierNone:
	default:
		return fmt.Errorf("invalid STUDYLIT_NOTIFIER: %q (must be tray, log or none)", c.Notifier)
	}
	return nil
}
