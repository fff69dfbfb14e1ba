package db

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/storage"
)

func TestKVStoreMissingKey(t *testing.T) {
	kv := NewKVStore(openTestDB(t))

	_, err := kv.Get([]byte("missing"))
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	assert.NoError(t, kv.Delete([]byte("missing")))
}

func TestKVStoreUpsert(t *testing.T) {
	kv := NewKVStore(openTestDB(t))

	require.NoError(t, kv.Set([]byte("k"), []byte("one")))
	require.NoError(t, kv.Set([]byte("k"), []byte("two")))

	got, err := kv.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("k")}, keys)
}

func TestKVStoreReset(t *testing.T) {
	kv := NewKVStore(openTestDB(t))
	require.NoError(t, kv.Set([]byte("a"), []byte("1")))
	require.NoError(t, kv.Set([]byte("b"), []byte("2")))

	require.NoError(t, kv.Reset())
	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKVStoreAsPolicyBackend(t *testing.T) {
	adapter := storage.New(NewKVStore(openTestDB(t)), storage.WithLogger(log.New(io.Discard)))

	cfg := models.SMSConfig{AccountSID: "AC1", AuthToken: "tok", FromNumber: "+15550001111", Enabled: true}
	require.NoError(t, adapter.SaveSMSConfig(cfg))
	assert.Equal(t, cfg, adapter.LoadSMSConfig())

	policies := []models.Policy{{ID: "p1", PolicyNumber: "POL1", PolicyholderName: "Asha Rao"}}
	require.NoError(t, adapter.Save(policies))
	assert.Equal(t, policies, adapter.Load())
}
