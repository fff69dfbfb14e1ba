// ABOUTME: Data models for insurance policy bookkeeping
// ABOUTME: Defines Policy, SMSConfig, RenewalAlert and PolicyStats plus their enums
package models

import (
	"fmt"
	"strings"
	"time"
)

// Category is the insurance line a policy belongs to.
type Category string

const (
	CategoryLife    Category = "life"
	CategoryTerm    Category = "term"
	CategoryCar     Category = "car"
	CategoryBike    Category = "bike"
	CategoryMedical Category = "medical"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryLife, CategoryTerm, CategoryCar, CategoryBike, CategoryMedical}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the capitalized display name ("Life", "Medical").
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseCategory accepts a category in any letter case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown insurance category %q (want one of life, term, car, bike, medical)", s)
	}
	return c, nil
}

// Frequency is how often the premium is paid.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyMonthly || f == FrequencyYearly
}

// OrDefault maps the empty frequency of legacy records to yearly.
func (f Frequency) OrDefault() Frequency {
	if f == "" {
		return FrequencyYearly
	}
	return f
}

// ParseFrequency accepts a frequency in any letter case; empty means yearly.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s))).OrDefault()
	if !f.Valid() {
		return "", fmt.Errorf("unknown renewal frequency %q (want monthly or yearly)", s)
	}
	return f, nil
}

// Policy is one insurance contract record. Field names match the persisted JSON layout.
// Calendar dates are kept as YYYY-MM-DD strings so a malformed record still loads.
type Policy struct {
	ID                  string    `json:"id"`
	PolicyNumber        string    `json:"policyNumber"`
	PolicyholderName    string    `json:"policyholderName"`
	DateOfBirth         string    `json:"dateOfBirth"`
	PolicyRenewalDate   string    `json:"policyRenewalDate"`
	RenewalFrequency    Frequency `json:"renewalFrequency"`
	MobileNumber        string    `json:"mobileNumber"`
	PolicyPremiumAmount float64   `json:"policyPremiumAmount"`
	InsuranceCategory   Category  `json:"insuranceCategory"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// PolicyInput is a policy as entered by a user, before the store assigns id and timestamps.
type PolicyInput struct {
	PolicyNumber        string    `json:"policyNumber"`
	PolicyholderName    string    `json:"policyholderName"`
	DateOfBirth         string    `json:"dateOfBirth"`
	PolicyRenewalDate   string    `json:"policyRenewalDate"`
	RenewalFrequency    Frequency `json:"renewalFrequency"`
	MobileNumber        string    `json:"mobileNumber"`
	PolicyPremiumAmount float64   `json:"policyPremiumAmount"`
	InsuranceCategory   Category  `json:"insuranceCategory"`
}

// PolicyPatch carries a partial update; nil fields are left untouched.
type PolicyPatch struct {
	PolicyNumber        *string    `json:"policyNumber,omitempty"`
	PolicyholderName    *string    `json:"policyholderName,omitempty"`
	DateOfBirth         *string    `json:"dateOfBirth,omitempty"`
	PolicyRenewalDate   *string    `json:"policyRenewalDate,omitempty"`
	RenewalFrequency    *Frequency `json:"renewalFrequency,omitempty"`
	MobileNumber        *string    `json:"mobileNumber,omitempty"`
	PolicyPremiumAmount *float64   `json:"policyPremiumAmount,omitempty"`
	InsuranceCategory   *Category  `json:"insuranceCategory,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PolicyPatch) IsEmpty() bool {
	return p.PolicyNumber == nil && p.PolicyholderName == nil && p.DateOfBirth == nil &&
		p.PolicyRenewalDate == nil && p.RenewalFrequency == nil && p.MobileNumber == nil &&
		p.PolicyPremiumAmount == nil && p.InsuranceCategory == nil
}

// Apply returns a copy of policy with the patch merged in and normalized.
// Identity and timestamps are never touched.
func (p PolicyPatch) Apply(policy Policy) Policy {
	if p.PolicyNumber != nil {
		policy.PolicyNumber = *p.PolicyNumber
	}
	if p.PolicyholderName != nil {
		policy.PolicyholderName = *p.PolicyholderName
	}
	if p.DateOfBirth != nil {
		policy.DateOfBirth = *p.DateOfBirth
	}
	if p.PolicyRenewalDate != nil {
		policy.PolicyRenewalDate = *p.PolicyRenewalDate
	}
	if p.RenewalFrequency != nil {
		policy.RenewalFrequency = *p.RenewalFrequency
	}
	if p.MobileNumber != nil {
		policy.MobileNumber = *p.MobileNumber
	}
	if p.PolicyPremiumAmount != nil {
		policy.PolicyPremiumAmount = *p.PolicyPremiumAmount
	}
	if p.InsuranceCategory != nil {
		policy.InsuranceCategory = *p.InsuranceCategory
	}
	return policy.Normalized()
}

// Input strips identity and timestamps off a stored policy.
func (p Policy) Input() PolicyInput {
	return PolicyInput{
		PolicyNumber:        p.PolicyNumber,
		PolicyholderName:    p.PolicyholderName,
		DateOfBirth:         p.DateOfBirth,
		PolicyRenewalDate:   p.PolicyRenewalDate,
		RenewalFrequency:    p.RenewalFrequency,
		MobileNumber:        p.MobileNumber,
		PolicyPremiumAmount: p.PolicyPremiumAmount,
		InsuranceCategory:   p.InsuranceCategory,
	}
}

// SMSConfig holds the SMS provider credentials and the master switch for sends.
type SMSConfig struct {
	AccountSID string `json:"accountSid"`
	AuthToken  string `json:"authToken"`
	FromNumber string `json:"fromNumber"`
	Enabled    bool   `json:"enabled"`
}

// Configured reports whether all provider credentials are present.
func (c SMSConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// RenewalAlert pairs a policy with the days left before its renewal.
type RenewalAlert struct {
	Policy           Policy `json:"policy"`
	DaysUntilRenewal int    `json:"daysUntilRenewal"`
}

// PolicyStats is the aggregate snapshot shown on dashboards.
type PolicyStats struct {
	TotalPolicies                int            `json:"totalPolicies"`
	TotalPremium                 float64        `json:"totalPremium"`
	AvgPremium                   float64        `json:"avgPremium"`
	CategoryDistribution         map[string]int `json:"categoryDistribution"`
	AgeGroupDistribution         map[string]int `json:"ageGroupDistribution"`
	MonthlyRenewals              map[string]int `json:"monthlyRenewals"`
	RenewalFrequencyDistribution map[string]int `json:"renewalFrequencyDistribution"`
	MonthlyPremiumTotal          float64        `json:"monthlyPremiumTotal"`
	YearlyPremiumTotal           float64        `json:"yearlyPremiumTotal"`
	LastUpdated                  *time.Time     `json:"lastUpdated,omitempty"`
}
