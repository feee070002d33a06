package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/studylit/internal/constants"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.ConfigPath != constants.DefaultConfigPath {
		t.Errorf("ConfigPath = %q, want %q", cfg.ConfigPath, constants.DefaultConfigPath)
	}
	if cfg.MinStreakSeconds != 60 || cfg.MinRecordSeconds != 60 || cfg.DefaultRestMinutes != 1 {
		t.Errorf("thresholds = %d/%d/%d, want 60/60/1", cfg.MinStreakSeconds, cfg.MinRecordSeconds, cfg.DefaultRestMinutes)
	}
	if cfg.Notifier != NotifierTray {
		t.Errorf("Notifier = %q, want tray", cfg.Notifier)
	}
	if cfg.LogLevel != "info" || cfg.LogMaxAgeDays != 28 {
		t.Errorf("logging = %q/%d, want info/28", cfg.LogLevel, cfg.LogMaxAgeDays)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STUDYLIT_CONFIG":               "/tmp/studylit.json",
		"STUDYLIT_DEBUG":                "true",
		"STUDYLIT_MIN_STREAK_SECONDS":   "300",
		"STUDYLIT_DEFAULT_REST_MINUTES": "10",
		"STUDYLIT_NOTIFIER":             "log",
		"STUDYLIT_METRICS_FILE":         "/var/lib/node_exporter/studylit.prom",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.ConfigPath != "/tmp/studylit.json" || !cfg.Debug || cfg.MinStreakSeconds != 300 ||
		cfg.DefaultRestMinutes != 10 || cfg.Notifier != NotifierLog || cfg.MetricsFile == "" {
		t.Errorf("LoadFrom() = %+v", cfg)
	}
}

func TestLoadFrom_BadNumber(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"STUDYLIT_MIN_RECORD_SECONDS": "soon"}); err == nil {
		t.Error("LoadFrom() with a non-numeric value should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{MinStreakSeconds: 60, MinRecordSeconds: 60, DefaultRestMinutes: 5, Notifier: NotifierTray}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"rest zero", func(c *Config) { c.DefaultRestMinutes = 0 }, "STUDYLIT_DEFAULT_REST_MINUTES"},
		{"rest too long", func(c *Config) { c.DefaultRestMinutes = 61 }, "STUDYLIT_DEFAULT_REST_MINUTES"},
		{"negative streak minimum", func(c *Config) { c.MinStreakSeconds = -1 }, "STUDYLIT_MIN_STREAK_SECONDS"},
		{"negative record minimum", func(c *Config) { c.MinRecordSeconds = -1 }, "STUDYLIT_MIN_RECORD_SECONDS"},
		{"unknown notifier", func(c *Config) { c.Notifier = "email" }, "STUDYLIT_NOTIFIER"},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }, "STUDYLIT_LOG_LEVEL"},
		{"negative log age", func(c *Config) { c.LogMaxAgeDays = -1 }, "STUDYLIT_LOG_MAX_AGE_DAYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("STUDYLIT_NOTIFIER=none\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STUDYLIT_NOTIFIER", "")
	os.Unsetenv("STUDYLIT_NOTIFIER")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Notifier != NotifierNone {
		t.Errorf("Notifier = %q, want none from .env", cfg.Notifier)
	}
}

func TestLoad_MissingDotEnv(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load() with a missing .env error = %v", err)
	}
}
