package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "insuretrack.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('kv', 'sms_log')").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected kv and sms_log tables, got %d", count)
	}

	var mode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	if err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected WAL mode, got %s", mode)
	}

	var timeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("Failed to query busy timeout: %v", err)
	}
	if timeout != busyTimeoutMS {
		t.Errorf("Expected busy timeout %d, got %d", busyTimeoutMS, timeout)
	}
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	dbPath := "/invalid/nonexistent/path/that/cannot/be/created/test.db"

	_, err := OpenDatabase(dbPath)
	if err == nil {
		t.Errorf("Expected error for invalid path, but OpenDatabase succeeded")
	}
}

func TestOpenDatabaseTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("Initial OpenDatabase failed: %v", err)
	}
	if err := NewKVStore(db).Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	db.Close()

	// CREATE TABLE IF NOT EXISTS keeps existing rows
	db, err = OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase should handle re-initialization gracefully, but got error: %v", err)
	}
	defer db.Close()

	got, err := NewKVStore(db).Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Expected v after reopen, got %q", got)
	}
}
