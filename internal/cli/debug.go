package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/studylit/internal/storage"
)

type DebugCmd struct {
	DBPath DebugDBPathCmd `cmd:"" help:"Show database path."`
	Keys   DebugKeysCmd   `cmd:"" help:"List stored keys."`
	Dump   DebugDumpCmd   `cmd:"" help:"Dump a stored blob as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugKeysCmd struct{}

func (cmd *DebugKeysCmd) Run(ctx *Context) error {
	keys, err := ctx.Store.Keys(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return printJSON(ctx, keys)
}

type DebugDumpCmd struct {
	Key string `arg:"" help:"Key to dump, e.g. study-records."`
}

func (cmd *DebugDumpCmd) Run(ctx *Context) error {
	blob, err := ctx.Store.Get(context.Background(), cmd.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no data stored under key: %s", cmd.Key)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.Key, err)
	}
	var v any
	if err := json.Unmarshal(blob, &v); err != nil {
		return fmt.Errorf("stored value for %s is not valid JSON: %w", cmd.Key, err)
	}
	return printJSON(ctx, v)
}
