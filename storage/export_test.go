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

func TestExportCSVScenario(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, []models.Policy{samplePolicy("a")}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, CSVHeader, lines[0])
	assert.Equal(t, `POL123456ABCD,"Asha Rao",1990-05-01,2030-01-01,yearly,9876543210,12000,Life`, lines[1])
}

func TestExportCSVQuotesAndDefaults(t *testing.T) {
	p := samplePolicy("a")
	p.PolicyholderName = `Ravi "Bunty" Kumar`
	p.RenewalFrequency = ""
	p.PolicyPremiumAmount = 1234.5
	p.InsuranceCategory = models.CategoryMedical

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, []models.Policy{p}))
	assert.Contains(t, buf.String(), `POL123456ABCD,"Ravi ""Bunty"" Kumar",1990-05-01,2030-01-01,yearly,9876543210,1234.5,Medical`)
}

func TestExportCSVEmptyFails(t *testing.T) {
	var buf bytes.Buffer
	err := ExportCSV(&buf, nil)

	var eerr *ExportError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "No policies to export", eerr.Reason)
	assert.Zero(t, buf.Len(), "no header-only file")
}

func TestExportJSONRoundTripsThroughLoad(t *testing.T) {
	want := []models.Policy{samplePolicy("a"), samplePolicy("b")}

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, want))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n    \"id\": \"a\""))

	kv := newMemKV()
	kv.data[PoliciesKey] = buf.Bytes()
	assert.Equal(t, want, quietAdapter(kv).Load())
}

func TestExportJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, nil))
	assert.Equal(t, "[]", buf.String())
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2026, time.October, 16, 8, 0, 0, 0, time.Local)
	assert.Equal(t, "insurance_policies_2026-10-16.csv", ExportFileName("csv", now))
	assert.Equal(t, "insurance_policies_2026-10-16.json", ExportFileName(".json", now))
}

func TestGeneratePolicyNumber(t *testing.T) {
	now := time.UnixMilli(1760000123456)
	n := GeneratePolicyNumber(now)

	require.Len(t, n, 13)
	assert.Equal(t, "POL123456", n[:9])
	assert.Regexp(t, `^[0-9A-Z]{4}$`, n[9:])
}
