// ABOUTME: Field validation and normalization for policy input
// ABOUTME: Produces per-field messages for inline form errors
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/insuretrack/dates"
)

// MaxPremium is the practical upper bound for a single premium.
const MaxPremium = 10000000

// ValidationError collects field-level violations keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid policy: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// DigitsOnly strips every non-digit rune.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalized trims and canonicalizes user-entered fields.
func (in PolicyInput) Normalized() PolicyInput {
	in.PolicyNumber = strings.ToUpper(strings.TrimSpace(in.PolicyNumber))
	in.PolicyholderName = strings.TrimSpace(in.PolicyholderName)
	in.DateOfBirth = canonicalDate(in.DateOfBirth)
	in.PolicyRenewalDate = canonicalDate(in.PolicyRenewalDate)
	in.RenewalFrequency = Frequency(strings.ToLower(string(in.RenewalFrequency))).OrDefault()
	in.MobileNumber = DigitsOnly(in.MobileNumber)
	in.InsuranceCategory = Category(strings.ToLower(strings.TrimSpace(string(in.InsuranceCategory))))
	return in
}

// canonicalDate rewrites parsable dates as YYYY-MM-DD and leaves anything else trimmed.
func canonicalDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := dates.Parse(s); err == nil {
		return dates.Format(t)
	}
	return s
}

// Normalized applies the same canonicalization as PolicyInput.Normalized.
func (p Policy) Normalized() Policy {
	in := p.Input().Normalized()
	p.PolicyNumber = in.PolicyNumber
	p.PolicyholderName = in.PolicyholderName
	p.DateOfBirth = in.DateOfBirth
	p.PolicyRenewalDate = in.PolicyRenewalDate
	p.RenewalFrequency = in.RenewalFrequency
	p.MobileNumber = in.MobileNumber
	p.InsuranceCategory = in.InsuranceCategory
	return p
}

// Validate checks a new policy as of now. The input is expected to be normalized.
func (in PolicyInput) Validate(now time.Time) error {
	verr := &ValidationError{}
	validateShape(in, verr)

	if in.DateOfBirth != "" {
		if dob, err := dates.Parse(in.DateOfBirth); err != nil {
			verr.add("dateOfBirth", "Date of birth is invalid")
		} else if age := dates.CalculateAgeAt(dob, now); age < 18 || age > 100 {
			verr.add("dateOfBirth", "Age must be between 18 and 100 years")
		}
	}

	if in.PolicyRenewalDate != "" {
		if renewal, err := dates.Parse(in.PolicyRenewalDate); err != nil {
			verr.add("policyRenewalDate", "Policy renewal date is invalid")
		} else if dates.DaysBetween(now, renewal) < 0 {
			verr.add("policyRenewalDate", "Renewal date cannot be in the past")
		}
	}

	return verr.orNil()
}

// ValidateStored checks the format invariants of an already stored policy.
// Edits are not re-validated against the current date.
func (p Policy) ValidateStored() error {
	verr := &ValidationError{}
	validateShape(p.Input(), verr)

	if p.DateOfBirth != "" {
		if _, err := dates.Parse(p.DateOfBirth); err != nil {
			verr.add("dateOfBirth", "Date of birth is invalid")
		}
	}
	if p.PolicyRenewalDate != "" {
		if _, err := dates.Parse(p.PolicyRenewalDate); err != nil {
			verr.add("policyRenewalDate", "Policy renewal date is invalid")
		}
	}

	return verr.orNil()
}

func validateShape(in PolicyInput, verr *ValidationError) {
	switch {
	case in.PolicyNumber == "":
		verr.add("policyNumber", "Policy number is required")
	case len(in.PolicyNumber) < 3:
		verr.add("policyNumber", "Policy number must be at least 3 characters")
	}

	switch {
	case in.PolicyholderName == "":
		verr.add("policyholderName", "Policyholder name is required")
	case len([]rune(in.PolicyholderName)) < 2:
		verr.add("policyholderName", "Name must be at least 2 characters")
	}

	if in.DateOfBirth == "" {
		verr.add("dateOfBirth", "Date of birth is required")
	}
	if in.PolicyRenewalDate == "" {
		verr.add("policyRenewalDate", "Policy renewal date is required")
	}

	switch {
	case in.MobileNumber == "":
		verr.add("mobileNumber", "Mobile number is required")
	case len(in.MobileNumber) != 10:
		verr.add("mobileNumber", "Please enter a valid 10-digit mobile number")
	}

	switch {
	case in.PolicyPremiumAmount <= 0:
		verr.add("policyPremiumAmount", "Premium amount must be greater than 0")
	case in.PolicyPremiumAmount > MaxPremium:
		verr.add("policyPremiumAmount", "Premium amount seems too high")
	}

	if !in.InsuranceCategory.Valid() {
		verr.add("insuranceCategory", "Insurance category must be one of life, term, car, bike, medical")
	}
	if !in.RenewalFrequency.Valid() {
		verr.add("renewalFrequency", "Renewal frequency must be monthly or yearly")
	}
}
