// Package kvstore is the workstation-local key-value store used for advisory
// state such as the lift board.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("kvstore: key not found")

// Store reads and writes opaque values under string keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend       string // sqlite, redis or memory
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "redis":
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("kvstore: unknown backend %q", opts.Backend)
}
