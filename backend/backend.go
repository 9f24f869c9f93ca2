// Package backend defines the durable store the history offloader writes to,
// and the errors its implementations share. Implementations live in the
// subpackages fs, memory, sqlite and postgres.
package backend

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	// ErrNotFound is returned by Read when nothing exists at the path
	ErrNotFound = errors.New("path not found")

	// ErrInvalidPath is returned when a path escapes the backend's root or
	// is otherwise malformed
	ErrInvalidPath = errors.New("invalid path")
)

// Backend is an append-friendly durable store keyed by path. The offloader
// relies on Append to avoid read-modify-write amplification on large logs:
// implementations must treat existing content as an opaque byte span and
// never decode or re-encode it.
type Backend interface {
	// Write stores data at path, replacing any existing content
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the content at path, or ErrNotFound
	Read(ctx context.Context, path string) ([]byte, error)

	// Append appends data to path, creating the path when absent
	Append(ctx context.Context, path string, data []byte) error
}

// Lister is an optional capability: backends that can enumerate stored
// paths implement it. Used by tooling to browse archives.
type Lister interface {
	// List returns the stored paths under prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)
}

// Pruner is an optional capability: backends that can delete archives by
// age implement it. Used by maintenance tooling to bound archive growth.
type Pruner interface {
	// Prune deletes paths under prefix not modified since cutoff and
	// returns how many were removed. A failure on one path does not stop
	// the sweep.
	Prune(ctx context.Context, prefix string, cutoff time.Time) (int, error)
}
