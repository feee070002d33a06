package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/studylit/internal/app"
	"github.com/julianstephens/studylit/internal/backup"
	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/config"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/logger"
	"github.com/julianstephens/studylit/internal/metrics"
	"github.com/julianstephens/studylit/internal/notifier"
	"github.com/julianstephens/studylit/internal/storage"
)

type Context struct {
	Store    storage.Provider
	Config   *config.Config
	Clock    clock.Clock
	Notifier notifier.Port
	Metrics  *metrics.Metrics

	Out io.Writer
	In  io.Reader

	app *app.App
}

// App opens the stores once per invocation. Commands share the timer session
// through storage, so it is persisted.
func (c *Context) App() (*app.App, error) {
	return c.OpenApp(true)
}

// OpenApp opens the stores and runs the foreground checks.
func (c *Context) OpenApp(persistTimer bool) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	opts := app.Options{
		Clock:        c.Clock,
		Store:        c.Store,
		Notifier:     c.Notifier,
		Metrics:      c.Metrics,
		PersistTimer: persistTimer,
	}
	if c.Config != nil {
		opts.MinRecordSeconds = c.Config.MinRecordSeconds
		opts.MinStreakSeconds = c.Config.MinStreakSeconds
	}
	a, err := app.Open(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	a.Foreground(context.Background())
	c.app = a
	return a, nil
}

// Close writes metrics and releases storage.
func (c *Context) Close() error {
	if c.app == nil {
		return c.Store.Close()
	}
	if c.Config != nil {
		c.app.WriteMetrics(c.Config.MetricsFile)
	}
	return c.app.Close()
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// confirm asks a yes/no question on In. Anything but y or yes is a no.
func (c *Context) confirm(prompt string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	c.printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func (c *Context) clock() clock.Clock {
	if c.Clock == nil {
		return clock.New()
	}
	return c.Clock
}

// PerformAutomaticBackup snapshots SQLite databases and logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*storage.SQLiteStore); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath(), c.clock())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) restMinutes(flag int) int {
	if flag > 0 {
		return flag
	}
	if c.Config != nil && c.Config.DefaultRestMinutes > 0 {
		return c.Config.DefaultRestMinutes
	}
	return constants.DefaultRestMinutes
}
