// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides ASCII dashboard for the policy portfolio overview
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/store"
)

type DashboardStats struct {
	Stats  models.PolicyStats
	Alerts []models.RenewalAlert

	GeneratedAt time.Time
}

func GenerateDashboardStats(s *store.Store) *DashboardStats {
	return &DashboardStats{
		Stats:       s.Stats(),
		Alerts:      s.RenewalAlerts(),
		GeneratedAt: time.Now(),
	}
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder
	s := stats.Stats

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  INSURETRACK DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📄 %d policies  💰 %s total  📊 %s average\n",
		s.TotalPolicies, FormatINR(s.TotalPremium), FormatINR(s.AvgPremium)))
	out.WriteString(fmt.Sprintf("  Monthly outlay %s  Yearly outlay %s\n",
		FormatINR(s.MonthlyPremiumTotal), FormatINR(s.YearlyPremiumTotal)))
	if s.LastUpdated != nil {
		out.WriteString(fmt.Sprintf("  Last updated %s\n", s.LastUpdated.Local().Format("Jan 2, 2006 15:04")))
	}
	out.WriteString("\n")

	if s.TotalPolicies == 0 {
		out.WriteString("No policies yet. Add one with: insuretrack policy add\n")
		return out.String()
	}

	out.WriteString("BY CATEGORY\n")
	categories := make([]bar, 0, len(models.Categories))
	for _, c := range models.Categories {
		categories = append(categories, bar{Label: c.Label(), Count: s.CategoryDistribution[string(c)]})
	}
	renderBars(&out, categories)
	out.WriteString("\n")

	out.WriteString("BY AGE GROUP\n")
	ages := make([]bar, 0, len(dates.AgeGroups))
	for _, g := range dates.AgeGroups {
		ages = append(ages, bar{Label: g, Count: s.AgeGroupDistribution[g]})
	}
	renderBars(&out, ages)
	out.WriteString("\n")

	if len(s.MonthlyRenewals) > 0 {
		out.WriteString("RENEWALS BY MONTH\n")
		renderBars(&out, monthBars(s.MonthlyRenewals))
		out.WriteString("\n")
	}

	if len(stats.Alerts) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		for _, a := range stats.Alerts {
			out.WriteString(fmt.Sprintf("  ⚠️  %s (%s) - %s, %s\n",
				a.Policy.PolicyholderName, a.Policy.PolicyNumber, RenewalBadge(a.DaysUntilRenewal),
				FormatINR(a.Policy.PolicyPremiumAmount)))
		}
	}

	return out.String()
}

// RenewalBadge is the short countdown text shown next to a due policy.
func RenewalBadge(days int) string {
	switch days {
	case 0:
		return "renews today"
	case 1:
		return "renews tomorrow"
	default:
		return fmt.Sprintf("renews in %d days", days)
	}
}

type bar struct {
	Label string
	Count int
}

// monthBars orders "Jan 2030" style buckets chronologically.
func monthBars(monthly map[string]int) []bar {
	type keyed struct {
		at  time.Time
		bar bar
	}
	rows := make([]keyed, 0, len(monthly))
	for label, count := range monthly {
		at, err := time.Parse("Jan 2006", label)
		if err != nil {
			continue
		}
		rows = append(rows, keyed{at: at, bar: bar{Label: label, Count: count}})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].at.Before(rows[j].at) })

	bars := make([]bar, len(rows))
	for i, r := range rows {
		bars[i] = r.bar
	}
	return bars
}

func renderBars(out *strings.Builder, bars []bar) {
	// Find max count for scaling
	maxCount := 0
	for _, b := range bars {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, b := range bars {
		// Calculate bar length (0-10 blocks)
		barLength := (b.Count * 10) / maxCount
		line := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-10s %s  %2d\n", b.Label, line, b.Count))
	}
}
