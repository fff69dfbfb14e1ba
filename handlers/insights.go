// ABOUTME: Portfolio insight MCP tool handlers
// ABOUTME: Implements get_stats, get_renewal_alerts, export_policies and send_renewal_reminder tools
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/notify"
	"github.com/harperreed/insuretrack/storage"
	"github.com/harperreed/insuretrack/store"
	"github.com/harperreed/insuretrack/viz"
)

type InsightHandlers struct {
	store *store.Store
	sms   *notify.SMS
}

// NewInsightHandlers wires the insight tools. sms may be nil, which disables send_renewal_reminder.
func NewInsightHandlers(s *store.Store, sms *notify.SMS) *InsightHandlers {
	return &InsightHandlers{store: s, sms: sms}
}

type GetStatsInput struct{}

type StatsOutput struct {
	TotalPolicies        int            `json:"total_policies"`
	TotalPremium         float64        `json:"total_premium"`
	TotalPremiumDisplay  string         `json:"total_premium_display"`
	AvgPremium           float64        `json:"avg_premium"`
	MonthlyPremiumTotal  float64        `json:"monthly_premium_total"`
	YearlyPremiumTotal   float64        `json:"yearly_premium_total"`
	CategoryDistribution map[string]int `json:"category_distribution"`
	AgeGroups            map[string]int `json:"age_groups"`
	MonthlyRenewals      map[string]int `json:"monthly_renewals"`
	Frequencies          map[string]int `json:"frequencies"`
	LastUpdated          string         `json:"last_updated,omitempty"`
}

func (h *InsightHandlers) GetStats(_ context.Context, request *mcp.CallToolRequest, input GetStatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	stats := h.store.Stats()
	out := StatsOutput{
		TotalPolicies:        stats.TotalPolicies,
		TotalPremium:         stats.TotalPremium,
		TotalPremiumDisplay:  viz.FormatINR(stats.TotalPremium),
		AvgPremium:           stats.AvgPremium,
		MonthlyPremiumTotal:  stats.MonthlyPremiumTotal,
		YearlyPremiumTotal:   stats.YearlyPremiumTotal,
		CategoryDistribution: stats.CategoryDistribution,
		AgeGroups:            stats.AgeGroupDistribution,
		MonthlyRenewals:      stats.MonthlyRenewals,
		Frequencies:          stats.RenewalFrequencyDistribution,
	}
	if stats.LastUpdated != nil {
		out.LastUpdated = stats.LastUpdated.Format(time.RFC3339)
	}
	return nil, out, nil
}

type GetRenewalAlertsInput struct {
	WithinDays int `json:"within_days,omitempty" jsonschema:"Window in days (default 7)"`
}

type RenewalAlertOutput struct {
	Policy           PolicyOutput `json:"policy"`
	DaysUntilRenewal int          `json:"days_until_renewal"`
	Badge            string       `json:"badge"`
}

type RenewalAlertsOutput struct {
	Alerts []RenewalAlertOutput `json:"alerts"`
}

func (h *InsightHandlers) GetRenewalAlerts(_ context.Context, request *mcp.CallToolRequest, input GetRenewalAlertsInput) (*mcp.CallToolResult, RenewalAlertsOutput, error) {
	var alerts []models.RenewalAlert
	if input.WithinDays <= 0 || input.WithinDays == dates.DefaultDueSoonDays {
		alerts = h.store.RenewalAlerts()
	} else {
		alerts = store.RenewalAlerts(h.store.Policies(), time.Now(), input.WithinDays)
	}

	out := RenewalAlertsOutput{Alerts: make([]RenewalAlertOutput, len(alerts))}
	for i, a := range alerts {
		out.Alerts[i] = RenewalAlertOutput{
			Policy:           policyToOutput(a.Policy),
			DaysUntilRenewal: a.DaysUntilRenewal,
			Badge:            viz.RenewalBadge(a.DaysUntilRenewal),
		}
	}
	return nil, out, nil
}

type ExportPoliciesInput struct {
	Format string `json:"format,omitempty" jsonschema:"csv or json (default json)"`
}

type ExportPoliciesOutput struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

func (h *InsightHandlers) ExportPolicies(_ context.Context, request *mcp.CallToolRequest, input ExportPoliciesInput) (*mcp.CallToolResult, ExportPoliciesOutput, error) {
	format := strings.ToLower(input.Format)
	if format == "" {
		format = "json"
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "csv":
		err = storage.ExportCSV(&buf, h.store.Policies())
	case "json":
		err = storage.ExportJSON(&buf, h.store.Policies())
	default:
		return nil, ExportPoliciesOutput{}, fmt.Errorf("unknown export format %q (want csv or json)", input.Format)
	}
	if err != nil {
		return nil, ExportPoliciesOutput{}, err
	}

	return nil, ExportPoliciesOutput{
		FileName: storage.ExportFileName(format, time.Now()),
		Content:  buf.String(),
	}, nil
}

type SendRenewalReminderInput struct {
	ID string `json:"id" jsonschema:"Policy ID (required)"`
}

type SendRenewalReminderOutput struct {
	Sent    bool   `json:"sent"`
	To      string `json:"to"`
	Message string `json:"message"`
}

func (h *InsightHandlers) SendRenewalReminder(ctx context.Context, request *mcp.CallToolRequest, input SendRenewalReminderInput) (*mcp.CallToolResult, SendRenewalReminderOutput, error) {
	if h.sms == nil {
		return nil, SendRenewalReminderOutput{}, fmt.Errorf("SMS service is not available")
	}
	p, ok := h.store.Get(input.ID)
	if !ok {
		return nil, SendRenewalReminderOutput{}, fmt.Errorf("%w: %s", store.ErrPolicyNotFound, input.ID)
	}
	renewal, err := dates.Parse(p.PolicyRenewalDate)
	if err != nil {
		return nil, SendRenewalReminderOutput{}, fmt.Errorf("policy %s has an unreadable renewal date", p.PolicyNumber)
	}

	days := dates.DaysUntilRenewal(renewal)
	sent := h.sms.SendRenewalReminder(ctx, p, days)
	return nil, SendRenewalReminderOutput{
		Sent:    sent,
		To:      notify.FormatPhoneNumber(p.MobileNumber),
		Message: notify.Render(models.MessageRenewalReminder, p, days),
	}, nil
}
