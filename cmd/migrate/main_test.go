package main

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/db"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/storage"
)

func openTestKV(t *testing.T, name string) storage.KV {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return db.NewKVStore(database)
}

func seed(t *testing.T, kv storage.KV) {
	t.Helper()
	a := storage.New(kv, storage.WithLogger(log.New(io.Discard)))
	now := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	require.NoError(t, a.Save([]models.Policy{{
		ID:                  "p1",
		PolicyNumber:        "POL-1",
		PolicyholderName:    "Asha Rao",
		DateOfBirth:         "1990-05-01",
		PolicyRenewalDate:   "2026-12-01",
		RenewalFrequency:    models.FrequencyYearly,
		MobileNumber:        "9876543210",
		PolicyPremiumAmount: 12000,
		InsuranceCategory:   models.CategoryLife,
		CreatedAt:           now,
		UpdatedAt:           now,
	}}))
	require.NoError(t, a.SaveSMSConfig(models.SMSConfig{AccountSID: "AC1", AuthToken: "tok", FromNumber: "+1555", Enabled: true}))
}

func TestMigrateCopiesBothKeys(t *testing.T) {
	quiet := log.New(io.Discard)
	src, dst := openTestKV(t, "src.db"), openTestKV(t, "dst.db")
	seed(t, src)

	res, err := migrate(src, dst, false, false, quiet)
	require.NoError(t, err)
	assert.Equal(t, result{Policies: 1, SMSConfig: true}, res)

	out := storage.New(dst, storage.WithLogger(quiet))
	policies := out.Load()
	require.Len(t, policies, 1)
	assert.Equal(t, "POL-1", policies[0].PolicyNumber)
	assert.Equal(t, "tok", out.LoadSMSConfig().AuthToken)
}

func TestMigrateDryRunWritesNothing(t *testing.T) {
	quiet := log.New(io.Discard)
	src, dst := openTestKV(t, "src.db"), openTestKV(t, "dst.db")
	seed(t, src)

	res, err := migrate(src, dst, true, false, quiet)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Policies)

	out := storage.New(dst, storage.WithLogger(quiet))
	assert.Empty(t, out.Load())
	assert.False(t, out.LoadSMSConfig().Enabled)
}

func TestMigrateRefusesNonEmptyDestination(t *testing.T) {
	quiet := log.New(io.Discard)
	src, dst := openTestKV(t, "src.db"), openTestKV(t, "dst.db")
	seed(t, src)
	seed(t, dst)

	_, err := migrate(src, dst, false, false, quiet)
	assert.ErrorContains(t, err, "use -force")

	_, err = migrate(src, dst, false, true, quiet)
	assert.NoError(t, err)
}
