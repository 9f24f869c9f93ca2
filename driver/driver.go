// Package driver provides database driver abstractions for the archive
// backends.
//
// This package defines the interfaces a database driver must implement
// for the PostgreSQL archive backend to run on top of it. It enables
// support for multiple database access layers (pgx/v5, database/sql)
// through a generic driver pattern.
package driver

import "context"

// Driver provides database operations for the archive backends.
// TTx is the native transaction type (e.g., pgx.Tx for pgx/v5, *sql.Tx
// for database/sql).
//
// Implementations should be created using the driver-specific New()
// functions:
//   - github.com/turnwise/recap/driver/pgxv5.New(pool)
//   - github.com/turnwise/recap/driver/databasesql.New(db)
type Driver[TTx any] interface {
	// GetExecutor returns an executor for non-transactional operations.
	// The returned Executor uses the underlying connection pool.
	GetExecutor() Executor

	// UnwrapExecutor converts a native transaction to an ExecutorTx.
	// This allows archive writes to join a user-provided transaction.
	UnwrapExecutor(tx TTx) ExecutorTx

	// UnwrapTx extracts the native transaction from an ExecutorTx.
	// Used when the native transaction type is needed for user operations.
	UnwrapTx(execTx ExecutorTx) TTx

	// Begin starts a new transaction and returns an ExecutorTx.
	Begin(ctx context.Context) (ExecutorTx, error)

	// PoolIsSet returns true if the driver has a database pool configured.
	// This is used to validate the driver when a backend is constructed.
	PoolIsSet() bool
}

// Beginner is an interface for types that can begin transactions.
// This is used internally to handle driver abstraction in non-generic contexts.
type Beginner interface {
	Begin(ctx context.Context) (ExecutorTx, error)
}
