// Package db opens the SQLite sales database and applies the embedded
// migrations that create and seed it.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// SQLite DSN parameters. WAL plus a busy timeout keeps concurrent reads from
// the HTTP handlers from tripping over the occasional write.
const (
	defaultBusyTimeout = "5000" // milliseconds
	defaultJournalMode = "WAL"
)

// Open opens a *sql.DB pool for the given SQLite file path and verifies the
// connection is usable.
func Open(path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_journal_mode", defaultJournalMode)
	params.Set("_busy_timeout", defaultBusyTimeout)
	params.Set("_foreign_keys", "on")

	db, err := sql.Open("sqlite3", path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}
