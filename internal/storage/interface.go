// Package storage persists opaque state blobs under fixed keys. Each store
// (records, streak, goals, premium) is saved whole after every mutation and
// restored whole at startup.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a key that was never saved.
var ErrNotFound = errors.New("key not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Blobs
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)

	// Utils
	GetConfigPath() string
}

var errNotLoaded = errors.New("storage not loaded")
