// ABOUTME: Calendar date helpers for policyholder ages and renewal countdowns
// ABOUTME: Day-granularity arithmetic in the local time zone, with explicit-clock variants for tests
package dates

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the on-disk representation of calendar dates (ISO-8601).
const DateFormat = "2006-01-02"

// readDateFormat is permissive and also accepts single-digit months and days.
const readDateFormat = "2006-1-2"

// DefaultDueSoonDays is the window used by IsRenewalDueSoon.
const DefaultDueSoonDays = 7

// Age group labels, youngest first.
const (
	AgeGroup18to24 = "18-24"
	AgeGroup25to34 = "25-34"
	AgeGroup35to44 = "35-44"
	AgeGroup45to54 = "45-54"
	AgeGroup55to64 = "55-64"
	AgeGroup65Plus = "65+"
)

// AgeGroups lists every bucket returned by AgeGroup in display order.
var AgeGroups = []string{
	AgeGroup18to24,
	AgeGroup25to34,
	AgeGroup35to44,
	AgeGroup45to54,
	AgeGroup55to64,
	AgeGroup65Plus,
}

// Parse reads a calendar date in the local time zone. Full RFC 3339 timestamps are
// accepted too and truncated to their date.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(readDateFormat, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q want format %q", s, DateFormat)
}

// Format renders t in DateFormat.
func Format(t time.Time) string { return t.Format(DateFormat) }

// Today returns the current local date at midnight.
func Today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// dayNumber maps the calendar day of t onto a DST-free axis.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(dayNumber(b) - dayNumber(a))
}

// CalculateAge returns the policyholder's age in whole years as of today.
func CalculateAge(dateOfBirth time.Time) int {
	return CalculateAgeAt(dateOfBirth, time.Now())
}

// CalculateAgeAt returns the age in whole years on the day of now.
func CalculateAgeAt(dateOfBirth, now time.Time) int {
	age := now.Year() - dateOfBirth.Year()
	if now.Month() < dateOfBirth.Month() ||
		(now.Month() == dateOfBirth.Month() && now.Day() < dateOfBirth.Day()) {
		age--
	}
	return age
}

// DaysUntilRenewal returns how many days remain until renewalDate. Negative means overdue.
func DaysUntilRenewal(renewalDate time.Time) int {
	return DaysUntilRenewalAt(renewalDate, time.Now())
}

// DaysUntilRenewalAt is DaysUntilRenewal with an explicit clock.
func DaysUntilRenewalAt(renewalDate, now time.Time) int {
	return DaysBetween(now, renewalDate)
}

// IsRenewalDueSoon reports whether renewalDate falls within the next thresholdDays days.
// Overdue renewals are not due soon.
func IsRenewalDueSoon(renewalDate time.Time, thresholdDays int) bool {
	return IsRenewalDueSoonAt(renewalDate, time.Now(), thresholdDays)
}

// IsRenewalDueSoonAt is IsRenewalDueSoon with an explicit clock.
func IsRenewalDueSoonAt(renewalDate, now time.Time, thresholdDays int) bool {
	days := DaysUntilRenewalAt(renewalDate, now)
	return days >= 0 && days <= thresholdDays
}

// AgeGroup buckets an age into one of AgeGroups.
func AgeGroup(age int) string {
	switch {
	case age < 25:
		return AgeGroup18to24
	case age < 35:
		return AgeGroup25to34
	case age < 45:
		return AgeGroup35to44
	case age < 55:
		return AgeGroup45to54
	case age < 65:
		return AgeGroup55to64
	default:
		return AgeGroup65Plus
	}
}

// FormatDate renders a short display date such as "Jan 2, 2030".
func FormatDate(t time.Time) string { return t.Format("Jan 2, 2006") }

// MonthKey renders the renewal month bucket such as "Jan 2030".
func MonthKey(t time.Time) string { return t.Format("Jan 2006") }

// SameMonthDay reports whether a and b share month and day, ignoring the year.
func SameMonthDay(a, b time.Time) bool {
	return a.Month() == b.Month() && a.Day() == b.Day()
}
