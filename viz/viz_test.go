package viz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/store"
)

type policyList []models.Policy

func (l policyList) Policies() []models.Policy { return l }

func fixture() policyList {
	return policyList{
		{ID: "a", PolicyNumber: "POL000001AAAA", PolicyholderName: "Asha Rao", DateOfBirth: "1990-05-01",
			PolicyRenewalDate: "2026-10-20", RenewalFrequency: models.FrequencyYearly, MobileNumber: "9876543210",
			PolicyPremiumAmount: 12000, InsuranceCategory: models.CategoryLife},
		{ID: "b", PolicyNumber: "POL000002BBBB", PolicyholderName: "Asha Rao", DateOfBirth: "1990-05-01",
			PolicyRenewalDate: "2027-03-15", RenewalFrequency: models.FrequencyMonthly, MobileNumber: "9876543210",
			PolicyPremiumAmount: 1500, InsuranceCategory: models.CategoryCar},
		{ID: "c", PolicyNumber: "POL000003CCCC", PolicyholderName: "Vikram Shah", DateOfBirth: "1960-01-10",
			PolicyRenewalDate: "not a date", RenewalFrequency: models.FrequencyYearly, MobileNumber: "9123456780",
			PolicyPremiumAmount: 30000.5, InsuranceCategory: models.CategoryMedical},
	}
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹12,000.00", FormatINR(12000))
	assert.Equal(t, "₹1,234,567.50", FormatINR(1234567.5))
	assert.Equal(t, "₹0.00", FormatINR(0))
	assert.Equal(t, "₹0.13", FormatINR(0.125))
}

func TestRenderDashboard(t *testing.T) {
	now := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.Local)
	policies := fixture()
	out := RenderDashboard(&DashboardStats{
		Stats:  store.ComputeStats(policies, now),
		Alerts: store.RenewalAlerts(policies, now, 7),
	})

	assert.Contains(t, out, "INSURETRACK DASHBOARD")
	assert.Contains(t, out, "3 policies")
	assert.Contains(t, out, "₹43,500.50 total")
	assert.Contains(t, out, "Life       ██████████   1")
	assert.Contains(t, out, "Term       ░░░░░░░░░░   0")
	assert.Contains(t, out, "NEEDS ATTENTION")
	assert.Contains(t, out, "Asha Rao (POL000001AAAA) - renews in 4 days, ₹12,000.00")

	oct := strings.Index(out, "Oct 2026")
	mar := strings.Index(out, "Mar 2027")
	require.NotEqual(t, -1, oct)
	require.NotEqual(t, -1, mar)
	assert.Less(t, oct, mar, "months are listed chronologically")
}

func TestRenderDashboardEmpty(t *testing.T) {
	out := RenderDashboard(&DashboardStats{Stats: store.ComputeStats(nil, time.Now())})
	assert.Contains(t, out, "0 policies")
	assert.Contains(t, out, "No policies yet")
	assert.NotContains(t, out, "NEEDS ATTENTION")
}

func TestRenewalBadge(t *testing.T) {
	assert.Equal(t, "renews today", RenewalBadge(0))
	assert.Equal(t, "renews tomorrow", RenewalBadge(1))
	assert.Equal(t, "renews in 5 days", RenewalBadge(5))
}

func TestGenerateRenewalGraph(t *testing.T) {
	g := NewGraphGenerator(fixture())
	dot, err := g.GenerateRenewalGraph(context.Background())
	require.NoError(t, err)

	assert.Contains(t, dot, "Policy Renewals")
	assert.Contains(t, dot, "Oct 2026")
	assert.Contains(t, dot, "Mar 2027")
	assert.Contains(t, dot, "Medical")
}

func TestGenerateHolderGraphFilters(t *testing.T) {
	g := NewGraphGenerator(fixture())
	dot, err := g.GenerateHolderGraph(context.Background(), "asha")
	require.NoError(t, err)

	assert.Contains(t, dot, "POL000001AAAA")
	assert.Contains(t, dot, "POL000002BBBB")
	assert.NotContains(t, dot, "POL000003CCCC")
}
