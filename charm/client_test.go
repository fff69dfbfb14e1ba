package charm

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/storage"
)

func TestClientGetMissingKey(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	_, err := c.Get([]byte("nothing-here"))
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestClientSetGetDelete(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Set([]byte("k"), []byte("v")))
	got, err := c.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, c.Delete([]byte("k")))
	_, err = c.Get([]byte("k"))
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestClientReset(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Set([]byte("a"), []byte("1")))
	require.NoError(t, c.Set([]byte("b"), []byte("2")))
	require.NoError(t, c.Reset())

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClientAsPolicyBackend(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	adapter := storage.New(c, storage.WithLogger(log.New(io.Discard)))
	assert.Empty(t, adapter.Load())

	policies := []models.Policy{{
		ID:                  "p1",
		PolicyNumber:        "POL123456ABCD",
		PolicyholderName:    "Asha Rao",
		DateOfBirth:         "1990-05-01",
		PolicyRenewalDate:   "2030-01-01",
		RenewalFrequency:    models.FrequencyYearly,
		MobileNumber:        "9876543210",
		PolicyPremiumAmount: 12000,
		InsuranceCategory:   models.CategoryLife,
	}}
	require.NoError(t, adapter.Save(policies))
	assert.Equal(t, policies, adapter.Load())

	assert.True(t, c.IsConnected())
	assert.NoError(t, c.Sync())
}
