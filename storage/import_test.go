package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/models"
)

var importNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func TestImportRoundTrip(t *testing.T) {
	want := []models.Policy{samplePolicy("a"), samplePolicy("b")}
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, want))

	got, err := ImportJSON(&buf, importNow)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestImportMigratesLegacyRecords(t *testing.T) {
	in := `[{"id":"a","policyNumber":"POL1","policyholderName":"Asha Rao","dateOfBirth":"1990-05-01",
		"policyRenewalDate":"2030-01-01","mobileNumber":"9876543210","policyPremiumAmount":500,"insuranceCategory":"car"}]`

	got, err := ImportJSON(strings.NewReader(in), importNow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.FrequencyYearly, got[0].RenewalFrequency)
	assert.Equal(t, importNow, got[0].CreatedAt)
	assert.Equal(t, importNow, got[0].UpdatedAt)
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		reason string
	}{
		{"object", `{"id":"a"}`, "Invalid file format. Expected an array of policies."},
		{"empty", ``, "Invalid file format. Expected an array of policies."},
		{"broken json", `[{"id":`, "Invalid JSON file"},
		{"missing field", `[{"id":"a","policyNumber":"POL1"}]`, `Invalid policy data: record 1 is missing "policyholderName"`},
		{"null field", `[{"id":"a","policyNumber":"POL1","policyholderName":"A B","dateOfBirth":null,
			"policyRenewalDate":"2030-01-01","mobileNumber":"1","policyPremiumAmount":1,"insuranceCategory":"car"}]`,
			`Invalid policy data: record 1 is missing "dateOfBirth"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportJSON(strings.NewReader(tt.in), importNow)
			var ierr *ImportFormatError
			require.True(t, errors.As(err, &ierr), "got %v", err)
			assert.Equal(t, tt.reason, ierr.Reason)
		})
	}
}

func TestImportNormalizesRecords(t *testing.T) {
	in := `[{"id":"a","policyNumber":"pol123abc","policyholderName":" Asha Rao ","dateOfBirth":"1990-05-01",
		"policyRenewalDate":"2030-01-01","renewalFrequency":"Monthly","mobileNumber":"98765-43210",
		"policyPremiumAmount":500,"insuranceCategory":"CAR"}]`

	got, err := ImportJSON(strings.NewReader(in), importNow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "POL123ABC", got[0].PolicyNumber)
	assert.Equal(t, "Asha Rao", got[0].PolicyholderName)
	assert.Equal(t, "9876543210", got[0].MobileNumber)
	assert.Equal(t, models.FrequencyMonthly, got[0].RenewalFrequency)
	assert.Equal(t, models.CategoryCar, got[0].InsuranceCategory)
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	valid := `{"id":"a","policyNumber":"POL1","policyholderName":"Asha Rao","dateOfBirth":"1990-05-01",
		"policyRenewalDate":"2030-01-01","mobileNumber":"9876543210","policyPremiumAmount":500,"insuranceCategory":"car"}`
	tests := []struct {
		name  string
		in    string
		field string
	}{
		{"empty policy number", `{"id":"b","policyNumber":"","policyholderName":"Ravi Kumar","dateOfBirth":"1990-05-01",
			"policyRenewalDate":"2030-01-01","mobileNumber":"9876543210","policyPremiumAmount":500,"insuranceCategory":"car"}`, "policyNumber"},
		{"short mobile", `{"id":"b","policyNumber":"POL2","policyholderName":"Ravi Kumar","dateOfBirth":"1990-05-01",
			"policyRenewalDate":"2030-01-01","mobileNumber":"98765","policyPremiumAmount":500,"insuranceCategory":"car"}`, "mobileNumber"},
		{"bad date", `{"id":"b","policyNumber":"POL2","policyholderName":"Ravi Kumar","dateOfBirth":"someday",
			"policyRenewalDate":"2030-01-01","mobileNumber":"9876543210","policyPremiumAmount":500,"insuranceCategory":"car"}`, "dateOfBirth"},
		{"unknown category", `{"id":"b","policyNumber":"POL2","policyholderName":"Ravi Kumar","dateOfBirth":"1990-05-01",
			"policyRenewalDate":"2030-01-01","mobileNumber":"9876543210","policyPremiumAmount":500,"insuranceCategory":"boat"}`, "insuranceCategory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportJSON(strings.NewReader("["+valid+","+tt.in+"]"), importNow)
			var ierr *ImportFormatError
			require.True(t, errors.As(err, &ierr), "got %v", err)
			assert.Equal(t, "Invalid policy data: record 2", ierr.Reason)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestImportKeepsCreatedBeforeUpdated(t *testing.T) {
	in := `[{"id":"a","policyNumber":"POL1","policyholderName":"Asha Rao","dateOfBirth":"1990-05-01",
		"policyRenewalDate":"2030-01-01","mobileNumber":"9876543210","policyPremiumAmount":500,"insuranceCategory":"car",
		"updatedAt":"2020-01-01T00:00:00Z"}]`

	got, err := ImportJSON(strings.NewReader(in), importNow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].CreatedAt.After(got[0].UpdatedAt))
	assert.True(t, got[0].UpdatedAt.Equal(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestImportRejectsDuplicateIDs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, []models.Policy{samplePolicy("a"), samplePolicy("a")}))

	_, err := ImportJSON(&buf, importNow)
	var ierr *ImportFormatError
	require.True(t, errors.As(err, &ierr))
	assert.Contains(t, ierr.Reason, "duplicate id")
}

func TestImportEmptyArray(t *testing.T) {
	got, err := ImportJSON(strings.NewReader("[]"), importNow)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMigrate(t *testing.T) {
	legacy := samplePolicy("a")
	legacy.RenewalFrequency = ""
	legacy.UpdatedAt = time.Time{}
	current := samplePolicy("b")

	out, changed := Migrate([]models.Policy{legacy, current}, importNow)
	assert.True(t, changed)
	assert.Equal(t, models.FrequencyYearly, out[0].RenewalFrequency)
	assert.Equal(t, importNow, out[0].UpdatedAt)
	assert.Equal(t, legacy.CreatedAt, out[0].CreatedAt)
	assert.Equal(t, current, out[1])
	assert.Equal(t, models.Frequency(""), legacy.RenewalFrequency, "input is not mutated")

	_, changed = Migrate([]models.Policy{current}, importNow)
	assert.False(t, changed)

	old := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	noCreated := samplePolicy("c")
	noCreated.CreatedAt = time.Time{}
	noCreated.UpdatedAt = old
	out, changed = Migrate([]models.Policy{noCreated}, importNow)
	assert.True(t, changed)
	assert.Equal(t, old, out[0].CreatedAt)
	assert.Equal(t, old, out[0].UpdatedAt)
}
