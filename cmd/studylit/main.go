package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studylit/internal/cli"
	"github.com/julianstephens/studylit/internal/config"
	"github.com/julianstephens/studylit/internal/constants"
	apperrors "github.com/julianstephens/studylit/internal/errors"
	"github.com/julianstephens/studylit/internal/logger"
	"github.com/julianstephens/studylit/internal/metrics"
	"github.com/julianstephens/studylit/internal/notifier"
	"github.com/julianstephens/studylit/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database path (SQLite or .json), ':memory:', a redis:// URL, a PostgreSQL URL without password, or 'postgres' to use the connection string from STUDYLIT_DB_CONNECTION or the OS keyring." type:"string" default:"${config}"`
	Verbose bool   `help:"Log debug output to stderr." short:"v"`

	Init    cli.InitCmd    `cmd:"" help:"Initialize studylit storage."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Timer   cli.TimerCmd   `cmd:"" help:"Control the study timer."`
	Session cli.SessionCmd `cmd:"" help:"Finish and record study sessions."`
	Records cli.RecordsCmd `cmd:"" help:"Manage study records."`
	Stats   cli.StatsCmd   `cmd:"" help:"Show study statistics."`
	Streak  cli.StreakCmd  `cmd:"" help:"Show and manage the study streak."`
	Goal    cli.GoalCmd    `cmd:"" help:"Set and track study goals."`
	Premium cli.PremiumCmd `cmd:"" help:"Manage premium features."`
	Backup  cli.BackupCmd  `cmd:"" help:"Manage database backups."`
	Keyring cli.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Debug   cli.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Study timer, records, streaks and goals"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"config":  cfg.ConfigPath,
		},
	)

	cfg.ConfigPath = CLI.Config
	cfg.Debug = cfg.Debug || CLI.Verbose
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	if err := logger.Init(logger.Config{
		Debug:      cfg.Debug,
		Level:      cfg.LogLevel,
		ConfigDir:  logDir(cfg.ConfigPath),
		MaxAgeDays: cfg.LogMaxAgeDays,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	command := ctx.Command()
	store, err := storage.NewProvider(cfg.ConfigPath)
	if err != nil {
		if !isKeyringCommand(command) {
			fail(err)
		}
		// keyring commands must work before a connection string exists
		store = storage.NewMemoryStore()
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}

	appCtx := &cli.Context{
		Store:    store,
		Config:   cfg,
		Notifier: newNotifier(cfg.Notifier),
		Metrics:  m,
	}

	// Load the store before running the command (init creates it, keyring never touches it)
	if command != "init" && !isKeyringCommand(command) {
		if err := store.Load(); err != nil {
			fail(err)
		}
	}

	runErr := ctx.Run(appCtx)
	if err := appCtx.Close(); err != nil {
		logger.Warn("Failed to close storage", "error", err)
	}
	if runErr != nil {
		fail(runErr)
	}
}

func isKeyringCommand(command string) bool {
	return strings.HasPrefix(command, "keyring")
}

func newNotifier(kind string) notifier.Port {
	switch kind {
	case config.NotifierLog:
		return notifier.NewLog()
	case config.NotifierNone:
		return nil
	default:
		return notifier.New()
	}
}

// logDir keeps logs next to a file database, otherwise in the user config dir.
func logDir(target string) string {
	if !storage.IsPostgresURL(target) && !storage.IsRedisURL(target) &&
		target != storage.KeyringTarget && target != storage.MemoryTarget {
		if path, err := storage.ExpandPath(target); err == nil {
			return filepath.Dir(path)
		}
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(dir, constants.AppName)
}

func fail(err error) {
	apperrors.Fatal(err)
}
