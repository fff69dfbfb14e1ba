// ABOUTME: Test utilities for creating isolated charm clients
// ABOUTME: Backs the client with a raw BadgerDB in a temp directory, no server needed

package charm

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/insuretrack/config"
)

// testClient stands in for charm/kv.KV with a local BadgerDB.
// The mutex provides thread safety for parallel test operations.
type testClient struct {
	db *badger.DB
	mu sync.RWMutex
}

func (c *testClient) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (c *testClient) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (c *testClient) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (c *testClient) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (c *testClient) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.DropAll()
}

// NewTestClient creates a charm client backed by a temporary BadgerDB.
// The returned cleanup function should be deferred.
func NewTestClient(t *testing.T) (*Client, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", config.AppName+"-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dataDir := filepath.Join(tmpDir, config.AppName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create data dir: %v", err)
	}

	db, err := badger.Open(badger.DefaultOptions(dataDir).WithLogger(nil))
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("Failed to open badger: %v", err)
	}

	c := &Client{
		config:     &Config{Host: "localhost", AutoSync: false},
		testClient: &testClient{db: db},
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Logf("Warning: failed to remove temp directory %s: %v", tmpDir, err)
		}
	}

	return c, cleanup
}
