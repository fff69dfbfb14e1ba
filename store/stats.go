// ABOUTME: Derived statistics and renewal alerts over the policy collection
// ABOUTME: Malformed records are skipped per bucket rather than failing the whole computation
package store

import (
	"sort"
	"time"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
)

// Stats computes the dashboard aggregates as of now.
func (s *Store) Stats() models.PolicyStats {
	return ComputeStats(s.Policies(), s.now())
}

// ComputeStats aggregates policies as of now.
func ComputeStats(policies []models.Policy, now time.Time) models.PolicyStats {
	stats := models.PolicyStats{
		TotalPolicies:                len(policies),
		CategoryDistribution:         make(map[string]int),
		AgeGroupDistribution:         make(map[string]int),
		MonthlyRenewals:              make(map[string]int),
		RenewalFrequencyDistribution: make(map[string]int),
	}

	for _, p := range policies {
		premium := p.PolicyPremiumAmount
		stats.TotalPremium += premium

		stats.CategoryDistribution[string(p.InsuranceCategory)]++

		if dob, err := dates.Parse(p.DateOfBirth); err == nil {
			stats.AgeGroupDistribution[dates.AgeGroup(dates.CalculateAgeAt(dob, now))]++
		}

		if renewal, err := dates.Parse(p.PolicyRenewalDate); err == nil {
			stats.MonthlyRenewals[dates.MonthKey(renewal)]++
		}

		freq := p.RenewalFrequency.OrDefault()
		stats.RenewalFrequencyDistribution[string(freq)]++

		if freq == models.FrequencyMonthly {
			stats.MonthlyPremiumTotal += premium
			stats.YearlyPremiumTotal += premium * 12
		} else {
			stats.MonthlyPremiumTotal += premium / 12
			stats.YearlyPremiumTotal += premium
		}

		if !p.UpdatedAt.IsZero() && (stats.LastUpdated == nil || p.UpdatedAt.After(*stats.LastUpdated)) {
			updated := p.UpdatedAt
			stats.LastUpdated = &updated
		}
	}

	if stats.TotalPolicies > 0 {
		stats.AvgPremium = stats.TotalPremium / float64(stats.TotalPolicies)
	}
	return stats
}

// RenewalAlerts lists policies renewing within the due-soon window, most urgent first.
// Overdue renewals are excluded.
func (s *Store) RenewalAlerts() []models.RenewalAlert {
	return RenewalAlerts(s.Policies(), s.now(), dates.DefaultDueSoonDays)
}

// RenewalAlerts filters policies to those renewing within thresholdDays of now.
func RenewalAlerts(policies []models.Policy, now time.Time, thresholdDays int) []models.RenewalAlert {
	alerts := []models.RenewalAlert{}
	for _, p := range policies {
		renewal, err := dates.Parse(p.PolicyRenewalDate)
		if err != nil {
			continue
		}
		if !dates.IsRenewalDueSoonAt(renewal, now, thresholdDays) {
			continue
		}
		alerts = append(alerts, models.RenewalAlert{
			Policy:           p,
			DaysUntilRenewal: dates.DaysUntilRenewalAt(renewal, now),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysUntilRenewal < alerts[j].DaysUntilRenewal
	})
	return alerts
}
