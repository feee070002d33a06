package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/studylit/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite or JSON database before initializing."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized studylit storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

func (c *InitCmd) removeExisting(ctx *Context) error {
	switch ctx.Store.(type) {
	case *storage.SQLiteStore, *storage.JSONStore:
	default:
		return fmt.Errorf("--force only applies to file-based storage")
	}
	path := ctx.Store.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.printf("Deleted existing database at: %s\n", path)
	return nil
}
