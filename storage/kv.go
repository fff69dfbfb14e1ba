// ABOUTME: Key-value backend contract used by the persistence adapter
// ABOUTME: Implemented by the charm client and the SQLite kv table
package storage

import "errors"

// Keys of the two independent persisted values.
const (
	PoliciesKey  = "insurance_policies"
	SMSConfigKey = "sms_config"
)

// ErrKeyNotFound is returned by a KV backend when a key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// KV is a durable byte store.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Reset wipes every key. It is the last-resort recovery before retrying a failed write.
	Reset() error
}
