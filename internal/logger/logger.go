// Package logger is the process-wide structured logger. Until Init runs every
// helper is a no-op, so library packages can log unconditionally.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger instance
var Logger *log.Logger

const (
	logFileName   = "studylit.log"
	logMaxSizeMB  = 5
	logMaxBackups = 5
)

// Config holds logger configuration
type Config struct {
	// Debug lowers the level to debug and mirrors output to stderr.
	Debug bool
	// Level is a charmbracelet/log level name. Empty means info.
	Level string
	// ConfigDir is the directory that receives logs/studylit.log.
	ConfigDir string
	// MaxAgeDays prunes rotated files older than this. Zero keeps them forever.
	MaxAgeDays int
}

func (c Config) level() (log.Level, error) {
	if c.Debug {
		return log.DebugLevel, nil
	}
	if c.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Level)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return lvl, nil
}

// Path returns the active log file for cfg.
func (c Config) Path() string {
	return filepath.Join(c.ConfigDir, "logs", logFileName)
}

// Init opens the rotating log file and installs the global logger.
func Init(cfg Config) error {
	level, err := cfg.level()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path()), 0o755); err != nil {
		return err
	}

	var out io.Writer = &lumberjack.Logger{
		Filename:   cfg.Path(),
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, out)
	}

	Logger = log.NewWithOptions(out, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "studylit",
	})
	return nil
}

// SetOutput points the global logger at w. Intended for tests.
func SetOutput(w io.Writer, level log.Level) {
	Logger = log.NewWithOptions(w, log.Options{Level: level})
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
