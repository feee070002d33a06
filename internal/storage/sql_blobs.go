package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/julianstephens/studylit/internal/logger"
	"github.com/julianstephens/studylit/internal/migration"
	"github.com/julianstephens/studylit/migrations"
)

// blobTable implements the blob operations over the kv_blobs table for both
// SQL backends.
type blobTable struct {
	db      *sql.DB
	dialect migration.Dialect
}

type blobQueries struct {
	get, put, del, keys string
}

var queries = map[migration.Dialect]blobQueries{
	migration.SQLite: {
		get: "SELECT value FROM kv_blobs WHERE key = ?",
		put: `INSERT INTO kv_blobs (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		del:  "DELETE FROM kv_blobs WHERE key = ?",
		keys: "SELECT key FROM kv_blobs ORDER BY key",
	},
	migration.Postgres: {
		get: "SELECT value FROM kv_blobs WHERE key = $1",
		put: `INSERT INTO kv_blobs (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		del:  "DELETE FROM kv_blobs WHERE key = $1",
		keys: "SELECT key FROM kv_blobs ORDER BY key",
	},
}

func (t *blobTable) get(ctx context.Context, key string) ([]byte, error) {
	if t.db == nil {
		return nil, errNotLoaded
	}
	var blob []byte
	err := t.db.QueryRowContext(ctx, queries[t.dialect].get, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return blob, nil
}

func (t *blobTable) put(ctx context.Context, key string, blob []byte) error {
	if t.db == nil {
		return errNotLoaded
	}
	var updatedAt any = time.Now().UTC()
	if t.dialect == migration.SQLite {
		updatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if _, err := t.db.ExecContext(ctx, queries[t.dialect].put, key, blob, updatedAt); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (t *blobTable) delete(ctx context.Context, key string) error {
	if t.db == nil {
		return errNotLoaded
	}
	if _, err := t.db.ExecContext(ctx, queries[t.dialect].del, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (t *blobTable) keys(ctx context.Context) ([]string, error) {
	if t.db == nil {
		return nil, errNotLoaded
	}
	rows, err := t.db.QueryContext(ctx, queries[t.dialect].keys)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (t *blobTable) runner() (*migration.Runner, error) {
	dir := "sqlite"
	if t.dialect == migration.Postgres {
		dir = "postgres"
	}
	sub, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", dir, err)
	}
	return migration.NewRunner(t.db, sub, t.dialect), nil
}

func (t *blobTable) migrate(ctx context.Context) error {
	r, err := t.runner()
	if err != nil {
		return err
	}
	_, err = r.Apply(ctx, func(msg string) { logger.Info(msg) })
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (t *blobTable) validate(ctx context.Context) error {
	r, err := t.runner()
	if err != nil {
		return err
	}
	return r.Validate(ctx)
}

// SchemaVersions reports the applied and the latest embedded schema version.
func (t *blobTable) SchemaVersions(ctx context.Context) (current, latest int, err error) {
	if t.db == nil {
		return 0, 0, errNotLoaded
	}
	r, err := t.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = r.CurrentVersion(ctx); err != nil {
		return 0, 0, err
	}
	if latest, err = r.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}
