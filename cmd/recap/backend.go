package main

import (
	"context"
	"database/sql"
	"fmt"
	"path"

	_ "github.com/lib/pq"

	"github.com/turnwise/recap/backend"
	backendfs "github.com/turnwise/recap/backend/fs"
	backendpg "github.com/turnwise/recap/backend/postgres"
	"github.com/turnwise/recap/backend/sqlite"
	"github.com/turnwise/recap/driver/databasesql"
)

// openBackend builds the archive backend named by the config. The returned
// close function releases whatever the backend holds open; call it exactly
// once.
func openBackend(ctx context.Context, cfg cliConfig) (backend.Backend, func() error, error) {
	switch cfg.Backend {
	case "fs":
		b, err := backendfs.New(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return b, func() error { return nil }, nil
	case "sqlite":
		if cfg.Database == "" {
			return nil, nil, fmt.Errorf("sqlite backend needs --database <path>")
		}
		b, err := sqlite.New(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case "postgres":
		if cfg.Database == "" {
			return nil, nil, fmt.Errorf("postgres backend needs --database <connection string>")
		}
		db, err := sql.Open("postgres", cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		b, err := backendpg.New(databasesql.New(db))
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := b.Setup(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("create archive table: %w", err)
		}
		return b, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want fs, sqlite or postgres)", cfg.Backend)
	}
}

// archivePath is where the engine appends a session's offload log.
func archivePath(prefix, sessionID string) string {
	return path.Join(prefix, sessionID+".log")
}
