// ABOUTME: Charm KV client wrapper used as the default policy storage backend
// ABOUTME: Syncs to the charm server after writes when auto-sync is enabled

package charm

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/insuretrack/config"
	"github.com/harperreed/insuretrack/storage"
)

// Client wraps charm KV with config and sync helpers. It implements storage.KV.
type Client struct {
	kv         *kv.KV
	config     *Config
	mu         sync.RWMutex
	testClient *testClient // Used for testing without server dependency
}

var _ storage.KV = (*Client)(nil)

// NewClient opens the charm KV database for the app.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = ConfigFrom(nil)
	}

	// charm reads its host from the environment
	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(config.AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{
		kv:     db,
		config: cfg,
	}

	// Pull remote changes before the first read
	if cfg.AutoSync {
		_ = db.Sync()
	}

	return c, nil
}

// Close closes the KV store.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// charm/kv doesn't expose Close(); badger is released on process exit
	return nil
}

// Config returns the client's config.
func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// IsConnected reports whether a charm user ID can be fetched.
func (c *Client) IsConnected() bool {
	if c.testClient != nil {
		return true
	}
	_, err := c.ID()
	return err == nil
}

// Sync performs a manual sync with the charm server.
func (c *Client) Sync() error {
	if c.testClient != nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Sync()
}

// Get retrieves a value by key. Missing keys return storage.ErrKeyNotFound.
func (c *Client) Get(key []byte) ([]byte, error) {
	var (
		value []byte
		err   error
	)
	if c.testClient != nil {
		value, err = c.testClient.Get(key)
	} else {
		c.mu.RLock()
		value, err = c.kv.Get(key)
		c.mu.RUnlock()
	}

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", storage.ErrKeyNotFound, key)
	}
	return value, err
}

// Set stores a value and syncs if enabled.
func (c *Client) Set(key, value []byte) error {
	if c.testClient != nil {
		return c.testClient.Set(key, value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Set(key, value); err != nil {
		return err
	}

	// Sync while still holding lock to avoid race condition
	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
	return nil
}

// Delete removes a key and syncs if enabled.
func (c *Client) Delete(key []byte) error {
	if c.testClient != nil {
		return c.testClient.Delete(key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete(key); err != nil {
		return err
	}

	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
	return nil
}

// Keys returns all keys.
func (c *Client) Keys() ([][]byte, error) {
	if c.testClient != nil {
		return c.testClient.Keys()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Keys()
}

// Reset wipes all data from the KV store.
func (c *Client) Reset() error {
	if c.testClient != nil {
		return c.testClient.Reset()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}
