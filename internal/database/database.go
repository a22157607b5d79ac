package database

import (
	"fmt"
	"log"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"redesocial/internal/config"
	"redesocial/internal/database/migrations"
)

// Connect opens the SQLite database, applies pragmas suited to a single
// serving process, and migrates the schema to the latest version.
// A missing or unwritable data directory aborts startup.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?%s", cfg.DBPath, url.Values{
		"_foreign_keys": {"on"},
		"_journal_mode": {"WAL"},
		"_busy_timeout": {"5000"},
	}.Encode())

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.DBPath, err)
	}

	// SQLite supports one writer at a time; a single connection plus the
	// busy timeout serializes every read-modify-write.
	db.SetMaxOpenConns(1)

	if err := migrations.MigrateUp(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("[Database] Connected: path=%s", cfg.DBPath)
	return db, nil
}
