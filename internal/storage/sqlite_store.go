package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/studylit/internal/migration"
)

// SQLiteStore is the default backend, one database file under the config dir.
type SQLiteStore struct {
	path string
	blobTable
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path:      path,
		blobTable: blobTable{dialect: migration.SQLite},
	}
}

func (s *SQLiteStore) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *SQLiteStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	return s.migrate(context.Background())
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'studylit init' first")
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.validate(context.Background())
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, key)
}

func (s *SQLiteStore) Put(ctx context.Context, key string, blob []byte) error {
	return s.put(ctx, key, blob)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.delete(ctx, key)
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	return s.keys(ctx)
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

// GetDB returns the open connection, nil before Init or Load.
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
