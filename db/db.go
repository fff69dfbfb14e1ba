// ABOUTME: SQLite connection management for the sqlite backend and SMS log
// ABOUTME: Opens the database in WAL mode and creates the kv and sms_log tables
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeoutMS lets the web server and a CLI command share the file without
// failing immediately on a locked database.
const busyTimeoutMS = 5000

// OpenDatabase opens (or creates) the SQLite file at path, making its parent
// directory if needed, and ensures the schema exists. The pool is limited to one
// connection since policy snapshots are written as whole values.
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", path, busyTimeoutMS)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
