// ABOUTME: JSON import of a previously exported policy collection
// ABOUTME: Normalizes and validates every record before anything is replaced
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/harperreed/insuretrack/models"
)

// requiredImportFields must be present and non-null on every imported record.
var requiredImportFields = []string{
	"id",
	"policyNumber",
	"policyholderName",
	"dateOfBirth",
	"policyRenewalDate",
	"mobileNumber",
	"policyPremiumAmount",
	"insuranceCategory",
}

// ImportJSON parses an exported array, migrates older records and normalizes each one.
// A record that fails validation rejects the whole file. It never touches the backend;
// the caller replaces its collection with the result.
func ImportJSON(r io.Reader, now time.Time) ([]models.Policy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportFormatError{Reason: "Could not read file", Err: err}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, &ImportFormatError{Reason: "Invalid file format. Expected an array of policies."}
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ImportFormatError{Reason: "Invalid JSON file", Err: err}
	}

	policies := make([]models.Policy, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		for _, field := range requiredImportFields {
			v, ok := rec[field]
			if !ok || string(v) == "null" {
				return nil, &ImportFormatError{Reason: fmt.Sprintf("Invalid policy data: record %d is missing %q", i+1, field)}
			}
		}

		raw, _ := json.Marshal(rec)
		var p models.Policy
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("Invalid policy data: record %d", i+1), Err: err}
		}
		if seen[p.ID] {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("Invalid policy data: duplicate id %q", p.ID)}
		}
		seen[p.ID] = true
		policies = append(policies, p)
	}

	migrated, _ := Migrate(policies, now)
	for i := range migrated {
		p := migrated[i].Normalized()
		if err := p.ValidateStored(); err != nil {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("Invalid policy data: record %d", i+1), Err: err}
		}
		migrated[i] = p
	}
	return migrated, nil
}
