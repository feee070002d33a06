package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studylit/internal/clock"
	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/entitlement"
	"github.com/julianstephens/studylit/internal/goals"
	"github.com/julianstephens/studylit/internal/ledger"
	"github.com/julianstephens/studylit/internal/storage"
	"github.com/julianstephens/studylit/internal/streak"
)

type DoctorCmd struct{}

type schemaReporter interface {
	SchemaVersions(ctx context.Context) (current, latest int, err error)
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		ctx.printf("❌ Database reachable: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	if err := checkSchemaVersion(ctx); err != nil {
		ctx.printf("❌ Schema version: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Schema version: OK\n")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		ctx.printf("⚠ Backups present: WARNING\n")
		ctx.printf("   %v\n", err)
	} else {
		ctx.printf("✓ Backups present: OK\n")
	}

	if dbReachable {
		if err := checkStoredState(ctx); err != nil {
			ctx.printf("❌ Stored state: FAIL\n")
			ctx.printf("   Error: %v\n", err)
			hasError = true
		} else {
			ctx.printf("✓ Stored state: OK\n")
		}
	} else {
		ctx.printf("⊘ Stored state: SKIPPED (database not reachable)\n")
	}

	if err := checkClockTimezone(ctx); err != nil {
		ctx.printf("❌ Clock/timezone: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Clock/timezone: OK\n")
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.Keys(context.Background()); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	r, ok := ctx.Store.(schemaReporter)
	if !ok {
		// only the SQL backends carry a schema
		return nil
	}
	current, latest, err := r.SchemaVersions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	if _, ok := ctx.Store.(*storage.SQLiteStore); !ok {
		return nil
	}
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'studylit backup create'")
	}
	return nil
}

// checkStoredState decodes every persisted store. Startup silently falls back
// to defaults for a corrupt blob, so this is where corruption gets reported.
func checkStoredState(ctx *Context) error {
	c := ctx.clock()
	decoders := []struct {
		key string
		m   interface{ Unmarshal([]byte) error }
	}{
		{constants.StoreKeyRecords, ledger.New(c)},
		{constants.StoreKeyStreak, streak.New(c)},
		{constants.StoreKeyGoals, goals.New(c)},
		{constants.StoreKeyPremium, entitlement.New(c)},
	}
	var errs []error
	for _, d := range decoders {
		blob, err := ctx.Store.Get(context.Background(), d.key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.key, err))
			continue
		}
		if err := d.m.Unmarshal(blob); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.key, err))
		}
	}
	return errors.Join(errs...)
}

func checkClockTimezone(ctx *Context) error {
	now := clock.New().Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		ctx.printf("   Note: timezone is UTC, study days roll over at UTC midnight\n")
	}
	return nil
}
