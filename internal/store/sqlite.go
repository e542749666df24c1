// Package store is the SQLite persistence layer: one repository method set
// per entity plus the shared XP-grant ledger write path.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/praxisapp/praxis/internal/progression"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the SQLite-backed application database.
type SQLiteStore struct {
	db    *sql.DB
	curve progression.Curve
}

// NewSQLiteStore opens (creating if necessary) the database at dbPath,
// applies pragmas, and runs migrations. The curve is used to derive
// display XP and recompute stat levels on grant application.
func NewSQLiteStore(dbPath string, curve progression.Curve) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, curve: curve}, nil
}

// enablePragmas sets SQLite pragmas for performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Curve returns the threshold curve the store was built with.
func (s *SQLiteStore) Curve() progression.Curve {
	return s.curve
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
