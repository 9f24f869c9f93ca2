// Package fs implements the archive backend on the local filesystem.
// Paths are slash-separated keys resolved under a fixed root directory;
// appends use O_APPEND so concurrent sessions never interleave within a
// single write.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/turnwise/recap/backend"
)

// Backend stores archives as plain files under a root directory.
type Backend struct {
	root string
}

// New creates a filesystem backend rooted at dir, creating it if needed.
func New(dir string) (*Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty root directory", backend.ErrInvalidPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create root directory: %w", err)
	}
	return &Backend{root: dir}, nil
}

// Root returns the backend's root directory.
func (b *Backend) Root() string {
	return b.root
}

// resolve maps a slash-separated key to a filesystem path under the root,
// refusing keys that would escape it.
func (b *Backend) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", backend.ErrInvalidPath, key)
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes the root", backend.ErrInvalidPath, key)
	}
	return filepath.Join(b.root, clean), nil
}

// Write stores data at path, replacing any existing content.
func (b *Backend) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := b.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read returns the content at path.
func (b *Backend) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := b.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", backend.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Append appends data to path, creating the file when absent.
func (b *Backend) Append(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := b.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	f, err := os.OpenFile(full, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("append to %s: %w", path, err)
	}
	return f.Close()
}

// List returns the stored paths under prefix, sorted by the walk order of
// the underlying directory tree.
func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := b.root
	if prefix != "" {
		full, err := b.resolve(prefix)
		if err != nil {
			return nil, err
		}
		start = full
	}

	var paths []string
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	return paths, nil
}

// Prune deletes files under prefix not modified since cutoff. One
// undeletable file does not stop the sweep.
func (b *Backend) Prune(ctx context.Context, prefix string, cutoff time.Time) (int, error) {
	paths, err := b.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		full, err := b.resolve(p)
		if err != nil {
			continue
		}
		info, err := os.Stat(full)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(full); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Lister  = (*Backend)(nil)
	_ backend.Pruner  = (*Backend)(nil)
)
