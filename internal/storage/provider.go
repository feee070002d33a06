package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/studylit/internal/keyring"
	"github.com/julianstephens/studylit/internal/logger"
)

const (
	// MemoryTarget selects the in-memory store.
	MemoryTarget = ":memory:"
	// KeyringTarget selects PostgreSQL with the connection string taken from
	// the environment or the OS keyring.
	KeyringTarget = "postgres"
	// ConnectionEnvVar overrides the keyring for KeyringTarget.
	ConnectionEnvVar = "STUDYLIT_DB_CONNECTION"
)

// NewProvider picks a backend from the --config value:
// postgres:// or postgresql:// URLs, redis:// URLs, the bare word "postgres",
// ":memory:", *.json files, and anything else as a SQLite path.
func NewProvider(target string) (Provider, error) {
	target = strings.TrimSpace(target)

	switch {
	case target == "":
		return nil, errors.New("no storage configured")
	case target == MemoryTarget:
		return NewMemoryStore(), nil
	case target == KeyringTarget:
		connStr, err := resolveConnectionString()
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(connStr), nil
	case IsPostgresURL(target):
		if err := ValidateConnString(target); err != nil {
			return nil, err
		}
		return NewPostgresStore(target), nil
	case IsRedisURL(target):
		return NewRedisStore(target), nil
	}

	path, err := ExpandPath(target)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONStore(path), nil
	}
	return NewSQLiteStore(path), nil
}

// resolveConnectionString prefers the environment over the keyring. Values
// from either source may carry a password.
func resolveConnectionString() (string, error) {
	if connStr := os.Getenv(ConnectionEnvVar); connStr != "" {
		logger.Debug("Using connection string from environment")
		return connStr, nil
	}
	connStr, err := keyring.GetConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("no connection string found: set %s or run 'studylit keyring set'", ConnectionEnvVar)
	}
	if err != nil {
		return "", err
	}
	return connStr, nil
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
