package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fadedpez/tucocasino/internal/config"
	"github.com/fadedpez/tucocasino/pkg/db"
	"github.com/fadedpez/tucocasino/pkg/db/migrations"
)

type MigrateCmd struct {
	DB  string `kong:"help='Path to SQLite database (defaults to DB_PATH)'"`
	Dir string `kong:"help='Directory of *.sql migrations to apply instead of the built-in set'"`

	LogLevel string `kong:"help='Log level (debug|info|warn|error)'"`
}

func (c *MigrateCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg, c.LogLevel)
	if err != nil {
		return err
	}

	path := c.DB
	if path == "" {
		path = cfg.DBPath
	}

	conn, err := db.Open(path)
	if err != nil {
		return err
	}
	defer conn.Close()

	migrator := migrations.NewMigrator(conn, logger)
	if c.Dir != "" {
		migrator = migrations.NewMigratorFS(conn, os.DirFS(c.Dir), ".", logger)
	}

	count, err := migrator.MigrateUp(context.Background())
	if err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}

	fmt.Printf("Applied %d migrations to %s\n", count, path)
	return nil
}
