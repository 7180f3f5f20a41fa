package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Migrations contains the embedded SQL migration files, including the sample
// data seed.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// RunMigrations executes all pending goose migrations against the sales
// database. Safe to run on every startup; goose tracks applied versions.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
