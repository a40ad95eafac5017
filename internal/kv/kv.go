// Package kv is the blob store the daemon persists into. Values are opaque
// bytes keyed by string; callers own the encoding.
package kv

import (
	"context"
	"fmt"
)

// Store is a string-keyed blob store.
type Store interface {
	// Get returns nil, nil when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove is a no-op for an absent key.
	Remove(ctx context.Context, key string) error
	// Clear drops every key.
	Clear(ctx context.Context) error
	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Open returns the backend named by backend rooted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(path)
	case BackendFile:
		return OpenDir(path)
	case BackendMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
