// ABOUTME: SQLite implementation of the storage key-value backend
// ABOUTME: One row per key in the kv table, upserted on every write
package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/insuretrack/storage"
)

// KVStore keeps persisted snapshots in the kv table.
type KVStore struct {
	db *sql.DB
}

var _ storage.KV = (*KVStore)(nil)

// NewKVStore wraps an open database whose schema is initialized.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value for key, or storage.ErrKeyNotFound.
func (s *KVStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set upserts key.
func (s *KVStore) Set(key, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, string(key), value)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(key []byte) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, string(key))
	return err
}

// Keys lists every stored key.
func (s *KVStore) Keys() ([][]byte, error) {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys [][]byte
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, []byte(k))
	}
	return keys, rows.Err()
}

// Reset wipes the kv table. The SMS log is left alone.
func (s *KVStore) Reset() error {
	_, err := s.db.Exec(`DELETE FROM kv`)
	return err
}
