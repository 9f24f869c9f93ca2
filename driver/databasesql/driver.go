// Package databasesql provides a database/sql driver implementation for
// the PostgreSQL archive backend.
//
// Use it when the host application already manages a *sql.DB. Register
// a PostgreSQL driver such as lib/pq first:
//
//	import _ "github.com/lib/pq"
//
//	db, _ := sql.Open("postgres", databaseURL)
//	drv := databasesql.New(db)
//	archive := postgres.New(drv)
package databasesql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/turnwise/recap/driver"
)

// Driver implements driver.Driver using database/sql.
type Driver struct {
	db *sql.DB
}

// New creates a new database/sql driver using the provided connection.
func New(db *sql.DB) *Driver {
	return &Driver{db: db}
}

// GetExecutor returns an executor for non-transactional operations.
func (d *Driver) GetExecutor() driver.Executor {
	return &Executor{db: d.db}
}

// UnwrapExecutor converts a *sql.Tx to an ExecutorTx.
// Commit and Rollback on the result operate on the caller's transaction.
func (d *Driver) UnwrapExecutor(tx *sql.Tx) driver.ExecutorTx {
	return &ExecutorTx{tx: tx}
}

// UnwrapTx extracts the *sql.Tx from an ExecutorTx.
func (d *Driver) UnwrapTx(execTx driver.ExecutorTx) *sql.Tx {
	return execTx.(*ExecutorTx).tx
}

// Begin starts a new transaction and returns an ExecutorTx.
func (d *Driver) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: tx}, nil
}

// PoolIsSet returns true if the driver has a database handle configured.
func (d *Driver) PoolIsSet() bool {
	return d.db != nil
}

// DB returns the underlying database handle for advanced usage.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// Executor wraps *sql.DB for non-transactional operations.
type Executor struct {
	db *sql.DB
}

// Begin starts a new transaction.
func (e *Executor) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: tx}, nil
}

// Exec executes a query that doesn't return rows.
func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Query executes a query that returns rows.
func (e *Executor) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsWrapper{rows: rows}, nil
}

// QueryRow executes a query that returns at most one row.
func (e *Executor) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	return e.db.QueryRowContext(ctx, query, args...)
}

// ExecutorTx wraps *sql.Tx for transactional operations.
// database/sql has no native nested transactions, so nested Begin calls
// are implemented with savepoints; depth tracks the savepoint level.
type ExecutorTx struct {
	tx    *sql.Tx
	depth int
}

// Begin starts a nested transaction by creating a savepoint.
func (e *ExecutorTx) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	name := savepointName(e.depth + 1)
	if _, err := e.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: e.tx, depth: e.depth + 1}, nil
}

// Exec executes a query that doesn't return rows within the transaction.
func (e *ExecutorTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := e.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Query executes a query that returns rows within the transaction.
func (e *ExecutorTx) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	rows, err := e.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsWrapper{rows: rows}, nil
}

// QueryRow executes a query that returns at most one row within the transaction.
func (e *ExecutorTx) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	return e.tx.QueryRowContext(ctx, query, args...)
}

// Commit commits the transaction, or releases the savepoint for nested
// transactions.
func (e *ExecutorTx) Commit(ctx context.Context) error {
	if e.depth > 0 {
		_, err := e.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointName(e.depth))
		return err
	}
	return e.tx.Commit()
}

// Rollback rolls back the transaction, or rolls back to the savepoint
// for nested transactions.
func (e *ExecutorTx) Rollback(ctx context.Context) error {
	if e.depth > 0 {
		_, err := e.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointName(e.depth))
		return err
	}
	return e.tx.Rollback()
}

// Tx returns the underlying *sql.Tx for advanced usage.
func (e *ExecutorTx) Tx() *sql.Tx {
	return e.tx
}

func savepointName(depth int) string {
	return fmt.Sprintf("recap_sp_%d", depth)
}

// rowsWrapper adapts *sql.Rows to driver.Rows.
type rowsWrapper struct {
	rows *sql.Rows
}

// Close closes the Rows.
func (r *rowsWrapper) Close() {
	r.rows.Close()
}

// Err returns any error encountered during iteration.
func (r *rowsWrapper) Err() error {
	return r.rows.Err()
}

// Next prepares the next row for reading.
func (r *rowsWrapper) Next() bool {
	return r.rows.Next()
}

// Scan reads the current row into dest.
func (r *rowsWrapper) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

// Compile-time check
var _ driver.Driver[*sql.Tx] = (*Driver)(nil)
