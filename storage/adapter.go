// ABOUTME: Persistence adapter translating policies and SMS settings to a KV backend
// ABOUTME: Loads never fail, saves retry once after a reset before surfacing StorageError
package storage

import (
	"encoding/json"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/harperreed/insuretrack/models"
)

const healthProbeKey = "__storage_test__"

// Adapter reads and writes full snapshots of the policy collection.
type Adapter struct {
	kv     KV
	logger *log.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an adapter over kv.
func New(kv KV, opts ...Option) *Adapter {
	a := &Adapter{kv: kv, logger: log.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load returns the stored policies, or an empty slice when nothing usable is stored.
// Records without id, policy number or name are dropped and the cleaned array is
// written back. Unparsable data is deleted; valid JSON that is not an array is kept.
func (a *Adapter) Load() []models.Policy {
	data, err := a.kv.Get([]byte(PoliciesKey))
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			a.logger.Error("failed to read policies", "err", err)
		}
		return []models.Policy{}
	}
	if len(data) == 0 {
		return []models.Policy{}
	}

	if !json.Valid(data) {
		a.logger.Warn("stored policies are corrupt, clearing")
		if err := a.kv.Delete([]byte(PoliciesKey)); err != nil {
			a.logger.Error("failed to clear corrupt policies", "err", err)
		}
		return []models.Policy{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Readable but not an array; left in place for the next save to overwrite
		a.logger.Warn("stored policies are not an array", "err", err)
		return []models.Policy{}
	}
	policies := make([]models.Policy, 0, len(raw))
	for i, r := range raw {
		var p models.Policy
		if err := json.Unmarshal(r, &p); err != nil {
			a.logger.Warn("dropping unreadable policy record", "index", i, "err", err)
			continue
		}
		if p.ID == "" || p.PolicyNumber == "" || p.PolicyholderName == "" {
			a.logger.Warn("dropping incomplete policy record", "index", i, "id", p.ID)
			continue
		}
		policies = append(policies, p)
	}

	if len(policies) != len(raw) {
		if err := a.Save(policies); err != nil {
			a.logger.Error("failed to write back cleaned policies", "err", err)
		}
	}
	return policies
}

// Save writes the full collection.
func (a *Adapter) Save(policies []models.Policy) error {
	if policies == nil {
		policies = []models.Policy{}
	}
	data, err := json.Marshal(policies)
	if err != nil {
		return &StorageError{Op: "encode", Key: PoliciesKey, Err: err}
	}
	return a.write(PoliciesKey, data)
}

// LoadSMSConfig returns the stored SMS settings, or the zero (disabled) config.
func (a *Adapter) LoadSMSConfig() models.SMSConfig {
	var cfg models.SMSConfig

	data, err := a.kv.Get([]byte(SMSConfigKey))
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			a.logger.Error("failed to read sms config", "err", err)
		}
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		a.logger.Warn("stored sms config is corrupt, ignoring", "err", err)
		return models.SMSConfig{}
	}
	return cfg
}

// SaveSMSConfig writes the SMS settings.
func (a *Adapter) SaveSMSConfig(cfg models.SMSConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return &StorageError{Op: "encode", Key: SMSConfigKey, Err: err}
	}
	return a.write(SMSConfigKey, data)
}

// write sets key, resetting the backend and retrying once on failure.
// The reset wipes every key, so the sibling value is carried across it.
func (a *Adapter) write(key string, data []byte) error {
	err := a.kv.Set([]byte(key), data)
	if err == nil {
		return nil
	}
	a.logger.Warn("write failed, resetting store and retrying", "key", key, "err", err)

	sibling := SMSConfigKey
	if key == SMSConfigKey {
		sibling = PoliciesKey
	}
	keep, getErr := a.kv.Get([]byte(sibling))

	if resetErr := a.kv.Reset(); resetErr != nil {
		a.logger.Error("store reset failed", "err", resetErr)
	}
	if err := a.kv.Set([]byte(key), data); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	if getErr == nil && len(keep) > 0 {
		if err := a.kv.Set([]byte(sibling), keep); err != nil {
			a.logger.Warn("failed to restore value after reset", "key", sibling, "err", err)
		}
	}
	return nil
}

// Health describes the backend as shown on the settings screen.
type Health struct {
	Healthy   bool   `json:"healthy"`
	BytesUsed int    `json:"bytesUsed"`
	Message   string `json:"message"`
}

// Health probes the backend with a throwaway write and reports the stored size.
func (a *Adapter) Health() Health {
	if err := a.kv.Set([]byte(healthProbeKey), []byte("ok")); err != nil {
		return Health{Message: "Storage is not writable: " + err.Error()}
	}
	if err := a.kv.Delete([]byte(healthProbeKey)); err != nil {
		a.logger.Warn("failed to remove health probe", "err", err)
	}

	used := 0
	for _, key := range []string{PoliciesKey, SMSConfigKey} {
		if data, err := a.kv.Get([]byte(key)); err == nil {
			used += len(key) + len(data)
		}
	}
	return Health{Healthy: true, BytesUsed: used, Message: "Storage is working properly"}
}
