// Package sqlite implements the archive backend on an embedded SQLite
// database. It uses the pure-Go modernc.org/sqlite driver, so hosts get
// durable single-file storage without cgo or an external server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/turnwise/recap/backend"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS recap_offload (
	path TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Backend stores archives in a single SQLite database file.
type Backend struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database at path, creating the file and the archive
// table if they do not exist yet.
func New(path string) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty database path", backend.ErrInvalidPath)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create offload table: %w", err)
	}
	return &Backend{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Write stores data at path, replacing any existing content.
func (b *Backend) Write(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", backend.ErrInvalidPath)
	}
	now := b.now().Unix()
	query := `
		INSERT INTO recap_offload (path, data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := b.db.ExecContext(ctx, query, path, data, now, now); err != nil {
		return fmt.Errorf("failed to write archive %s: %w", path, err)
	}
	return nil
}

// Read returns the content stored at path.
func (b *Backend) Read(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT data FROM recap_offload WHERE path = ?`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", backend.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", path, err)
	}
	return data, nil
}

// Append appends data to path, creating the row when absent.
func (b *Backend) Append(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", backend.ErrInvalidPath)
	}
	now := b.now().Unix()
	query := `
		INSERT INTO recap_offload (path, data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			data = recap_offload.data || excluded.data,
			updated_at = excluded.updated_at`
	if _, err := b.db.ExecContext(ctx, query, path, data, now, now); err != nil {
		return fmt.Errorf("failed to append to archive %s: %w", path, err)
	}
	return nil
}

// List returns the stored paths under prefix, sorted.
func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT path FROM recap_offload ORDER BY path`
	var args []any
	if prefix != "" {
		query = `SELECT path FROM recap_offload WHERE path = ? OR path LIKE ? ESCAPE '\' ORDER BY path`
		args = []any{prefix, escapeLike(prefix) + "/%"}
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
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
	query := `DELETE FROM recap_offload WHERE updated_at <= ?`
	args := []any{cutoff.Unix()}
	if prefix != "" {
		query += ` AND (path = ? OR path LIKE ? ESCAPE '\')`
		args = append(args, prefix, escapeLike(prefix)+"/%")
	}
	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune archives: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned archives: %w", err)
	}
	return int(n), nil
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
