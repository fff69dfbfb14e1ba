// ABOUTME: CSV and JSON export of the policy collection
// ABOUTME: Also names the dated download files
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
)

// CSVHeader is the first line of every CSV export.
const CSVHeader = "Policy Number,Policyholder Name,Date of Birth,Policy Renewal Date,Renewal Frequency,Mobile Number,Premium Amount,Insurance Category"

// ExportFileName returns insurance_policies_<YYYY-MM-DD>.<ext>.
func ExportFileName(ext string, now time.Time) string {
	return fmt.Sprintf("insurance_policies_%s.%s", dates.Format(now), strings.TrimPrefix(ext, "."))
}

// ExportCSV writes one row per policy under CSVHeader. An empty collection is refused.
func ExportCSV(w io.Writer, policies []models.Policy) error {
	if len(policies) == 0 {
		return &ExportError{Reason: "No policies to export"}
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(CSVHeader + "\n"); err != nil {
		return &ExportError{Reason: "write header", Err: err}
	}
	for _, p := range policies {
		if _, err := bw.WriteString(csvRow(p) + "\n"); err != nil {
			return &ExportError{Reason: "write row", Err: err}
		}
	}
	if err := bw.Flush(); err != nil {
		return &ExportError{Reason: "flush", Err: err}
	}
	return nil
}

// csvRow always quotes the name; encoding/csv only quotes when a field needs it.
func csvRow(p models.Policy) string {
	fields := []string{
		p.PolicyNumber,
		`"` + strings.ReplaceAll(p.PolicyholderName, `"`, `""`) + `"`,
		p.DateOfBirth,
		p.PolicyRenewalDate,
		string(p.RenewalFrequency.OrDefault()),
		p.MobileNumber,
		decimal.NewFromFloat(p.PolicyPremiumAmount).String(),
		p.InsuranceCategory.Label(),
	}
	return strings.Join(fields, ",")
}

// ExportJSON writes the collection as a two-space indented array that Load reads back unchanged.
func ExportJSON(w io.Writer, policies []models.Policy) error {
	if policies == nil {
		policies = []models.Policy{}
	}
	data, err := json.MarshalIndent(policies, "", "  ")
	if err != nil {
		return &ExportError{Reason: "encode policies", Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return &ExportError{Reason: "write policies", Err: err}
	}
	return nil
}
