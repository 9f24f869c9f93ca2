// Package memory implements the archive backend in process memory. It
// exists for tests and for hosts that want compaction semantics without
// durability; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/turnwise/recap/backend"
)

type entry struct {
	data    []byte
	updated time.Time
}

// Backend stores archives in a mutex-guarded map.
type Backend struct {
	mu    sync.RWMutex
	files map[string]entry
	now   func() time.Time
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{
		files: make(map[string]entry),
		now:   time.Now,
	}
}

// Write stores data at path, replacing any existing content.
func (b *Backend) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%w: empty path", backend.ErrInvalidPath)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[path] = entry{data: append([]byte(nil), data...), updated: b.now()}
	return nil
}

// Read returns a copy of the content at path.
func (b *Backend) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrNotFound, path)
	}
	return append([]byte(nil), e.data...), nil
}

// Append appends data to path, creating the entry when absent.
func (b *Backend) Append(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%w: empty path", backend.ErrInvalidPath)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.files[path]
	e.data = append(e.data, data...)
	e.updated = b.now()
	b.files[path] = e
	return nil
}

// List returns the stored paths under prefix, sorted.
func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	var paths []string
	for p := range b.files {
		if prefix == "" || p == prefix || strings.HasPrefix(p, prefix+"/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Prune deletes entries under prefix not modified since cutoff.
func (b *Backend) Prune(ctx context.Context, prefix string, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for p, e := range b.files {
		if prefix != "" && p != prefix && !strings.HasPrefix(p, prefix+"/") {
			continue
		}
		if e.updated.After(cutoff) {
			continue
		}
		delete(b.files, p)
		removed++
	}
	return removed, nil
}

// Len returns the number of stored entries.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.files)
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Lister  = (*Backend)(nil)
	_ backend.Pruner  = (*Backend)(nil)
)
