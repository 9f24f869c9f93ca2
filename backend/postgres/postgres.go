// Package postgres implements the archive backend on a PostgreSQL
// table. It runs on top of the driver abstraction, so hosts can bring
// either a pgx/v5 pool or a database/sql handle, and archive writes can
// join a caller transaction placed in the context with
// driver.WithExecutor.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/turnwise/recap/backend"
	"github.com/turnwise/recap/driver"
)

const schema = `
CREATE TABLE IF NOT EXISTS recap_offload (
	path TEXT PRIMARY KEY,
	data BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// Backend stores archives in the recap_offload table.
type Backend struct {
	exec driver.Executor
}

// New creates a PostgreSQL backend on top of the given driver.
func New[TTx any](d driver.Driver[TTx]) (*Backend, error) {
	if d == nil || !d.PoolIsSet() {
		return nil, errors.New("postgres backend requires a driver with a configured pool")
	}
	return &Backend{exec: d.GetExecutor()}, nil
}

// Setup creates the archive table if it does not exist yet.
func (b *Backend) Setup(ctx context.Context) error {
	if _, err := b.executor(ctx).Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create offload table: %w", err)
	}
	return nil
}

// Write stores data at path, replacing any existing content.
func (b *Backend) Write(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", backend.ErrInvalidPath)
	}
	query := `
		INSERT INTO recap_offload (path, data)
		VALUES ($1, $2)
		ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	if _, err := b.executor(ctx).Exec(ctx, query, path, data); err != nil {
		return fmt.Errorf("failed to write archive %s: %w", path, err)
	}
	return nil
}

// Read returns the content stored at path.
func (b *Backend) Read(ctx context.Context, path string) ([]byte, error) {
	rows, err := b.executor(ctx).Query(ctx, `SELECT data FROM recap_offload WHERE path = $1`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s", backend.ErrNotFound, path)
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
	}
	return data, nil
}

// Append appends data to path, creating the row when absent.
func (b *Backend) Append(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", backend.ErrInvalidPath)
	}
	query := `
		INSERT INTO recap_offload (path, data)
		VALUES ($1, $2)
		ON CONFLICT (path) DO UPDATE SET
			data = recap_offload.data || EXCLUDED.data,
			updated_at = NOW()`
	if _, err := b.executor(ctx).Exec(ctx, query, path, data); err != nil {
		return fmt.Errorf("failed to append to archive %s: %w", path, err)
	}
	return nil
}

// List returns the stored paths under prefix, sorted.
func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT path FROM recap_offload ORDER BY path`
	var args []any
	if prefix != "" {
		query = `SELECT path FROM recap_offload WHERE path = $1 OR path LIKE $2 ORDER BY path`
		args = []any{prefix, escapeLike(prefix) + "/%"}
	}
	rows, err := b.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan archive path: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	return paths, nil
}

// Prune deletes rows under prefix not modified since cutoff and reports
// how many were removed.
func (b *Backend) Prune(ctx context.Context, prefix string, cutoff time.Time) (int, error) {
	query := `DELETE FROM recap_offload WHERE updated_at <= $1`
	args := []any{cutoff}
	if prefix != "" {
		query += ` AND (path = $2 OR path LIKE $3)`
		args = append(args, prefix, escapeLike(prefix)+"/%")
	}
	n, err := b.executor(ctx).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune archives: %w", err)
	}
	return int(n), nil
}

// executor returns the caller transaction from ctx when one is present,
// falling back to the pool executor.
func (b *Backend) executor(ctx context.Context) driver.Executor {
	if tx := driver.ExecutorFromContext(ctx); tx != nil {
		return tx
	}
	return b.exec
}

// escapeLike neutralizes LIKE wildcards so prefixes containing _ or %
// match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Lister  = (*Backend)(nil)
	_ backend.Pruner  = (*Backend)(nil)
)
