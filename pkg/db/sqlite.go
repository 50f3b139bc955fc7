package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fadedpez/tucocasino/internal/logging"
	"github.com/fadedpez/tucocasino/pkg/db/migrations"
	_ "github.com/mattn/go-sqlite3"
)

// Memory is the DSN of a private in-memory database
const Memory = ":memory:"

// Open opens the database at path without migrating it. A single
// connection is kept open so writes never race for the file lock and an
// in-memory database stays the same database across queries.
func Open(path string) (*sql.DB, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

// OpenSQLite opens the database at path and applies pending migrations
func OpenSQLite(ctx context.Context, path string, logger *logging.Logger) (*sql.DB, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}

	if _, err := migrations.NewMigrator(conn, logger).MigrateUp(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	return conn, nil
}
