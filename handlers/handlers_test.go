// ABOUTME: Tests for policy MCP tool, resource and prompt handlers
// ABOUTME: Validates tool input/output and error handling against an in-memory store
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/notify"
	"github.com/harperreed/insuretrack/store"
)

type memRepo struct {
	mu       sync.Mutex
	policies []models.Policy
}

func (r *memRepo) Load() []models.Policy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Policy{}, r.policies...)
}

func (r *memRepo) Save(policies []models.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies = append([]models.Policy{}, policies...)
	return nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(&memRepo{}, store.WithLogger(log.New(io.Discard)))
}

// inDays returns a date string n days from today.
func inDays(n int) string {
	return dates.Format(dates.Today().AddDate(0, 0, n))
}

func ashaInput() AddPolicyInput {
	return AddPolicyInput{
		PolicyholderName: "Asha Rao",
		DateOfBirth:      "1990-05-01",
		RenewalDate:      inDays(3),
		MobileNumber:     "9876543210",
		Premium:          12000,
		Category:         "Life",
	}
}

func TestAddPolicyGeneratesNumber(t *testing.T) {
	h := NewPolicyHandlers(newTestStore(t))

	_, out, err := h.AddPolicy(context.Background(), nil, ashaInput())
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Regexp(t, `^POL\d{6}[0-9A-Z]{4}$`, out.PolicyNumber)
	assert.Equal(t, "life", out.Category)
	assert.Equal(t, "yearly", out.RenewalFrequency)
	require.NotNil(t, out.DaysUntilRenewal)
	assert.Equal(t, 3, *out.DaysUntilRenewal)
}

func TestAddPolicyValidation(t *testing.T) {
	h := NewPolicyHandlers(newTestStore(t))

	input := ashaInput()
	input.MobileNumber = "12"
	_, _, err := h.AddPolicy(context.Background(), nil, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter a valid 10-digit mobile number")

	input = ashaInput()
	input.Category = "pet"
	_, _, err = h.AddPolicy(context.Background(), nil, input)
	assert.ErrorContains(t, err, "unknown insurance category")
}

func TestFindAndGetPolicies(t *testing.T) {
	s := newTestStore(t)
	h := NewPolicyHandlers(s)
	_, added, err := h.AddPolicy(context.Background(), nil, ashaInput())
	require.NoError(t, err)

	_, found, err := h.FindPolicies(context.Background(), nil, FindPoliciesInput{Query: "asha", Category: "life"})
	require.NoError(t, err)
	require.Len(t, found.Policies, 1)
	assert.Equal(t, 1, found.Total)

	_, found, err = h.FindPolicies(context.Background(), nil, FindPoliciesInput{Category: "car"})
	require.NoError(t, err)
	assert.Empty(t, found.Policies)

	_, _, err = h.FindPolicies(context.Background(), nil, FindPoliciesInput{Sort: "age"})
	assert.Error(t, err)

	_, got, err := h.GetPolicy(context.Background(), nil, GetPolicyInput{PolicyNumber: added.PolicyNumber})
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)

	_, _, err = h.GetPolicy(context.Background(), nil, GetPolicyInput{ID: "missing"})
	assert.ErrorIs(t, err, store.ErrPolicyNotFound)
}

func TestUpdatePolicy(t *testing.T) {
	h := NewPolicyHandlers(newTestStore(t))
	_, added, err := h.AddPolicy(context.Background(), nil, ashaInput())
	require.NoError(t, err)

	premium := 15000.0
	freq := "Monthly"
	_, updated, err := h.UpdatePolicy(context.Background(), nil, UpdatePolicyInput{ID: added.ID, Premium: &premium, RenewalFrequency: &freq})
	require.NoError(t, err)
	assert.Equal(t, 15000.0, updated.Premium)
	assert.Equal(t, "monthly", updated.RenewalFrequency)

	_, _, err = h.UpdatePolicy(context.Background(), nil, UpdatePolicyInput{ID: added.ID})
	assert.ErrorContains(t, err, "nothing to update")

	_, _, err = h.UpdatePolicy(context.Background(), nil, UpdatePolicyInput{ID: "missing", Premium: &premium})
	assert.ErrorIs(t, err, store.ErrPolicyNotFound)
}

func TestDeletePolicy(t *testing.T) {
	s := newTestStore(t)
	h := NewPolicyHandlers(s)
	_, added, err := h.AddPolicy(context.Background(), nil, ashaInput())
	require.NoError(t, err)

	_, out, err := h.DeletePolicy(context.Background(), nil, DeletePolicyInput{ID: added.ID})
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.Zero(t, s.Len())

	_, out, err = h.DeletePolicy(context.Background(), nil, DeletePolicyInput{ID: added.ID})
	require.NoError(t, err)
	assert.False(t, out.Deleted)
}

func TestInsightTools(t *testing.T) {
	s := newTestStore(t)
	_, _, err := NewPolicyHandlers(s).AddPolicy(context.Background(), nil, ashaInput())
	require.NoError(t, err)
	h := NewInsightHandlers(s, nil)

	_, stats, err := h.GetStats(context.Background(), nil, GetStatsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPolicies)
	assert.Equal(t, "₹12,000.00", stats.TotalPremiumDisplay)

	_, alerts, err := h.GetRenewalAlerts(context.Background(), nil, GetRenewalAlertsInput{})
	require.NoError(t, err)
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, "renews in 3 days", alerts.Alerts[0].Badge)

	_, alerts, err = h.GetRenewalAlerts(context.Background(), nil, GetRenewalAlertsInput{WithinDays: 2})
	require.NoError(t, err)
	assert.Empty(t, alerts.Alerts)

	_, export, err := h.ExportPolicies(context.Background(), nil, ExportPoliciesInput{Format: "csv"})
	require.NoError(t, err)
	assert.Contains(t, export.FileName, ".csv")
	assert.Contains(t, export.Content, `"Asha Rao"`)

	_, _, err = h.ExportPolicies(context.Background(), nil, ExportPoliciesInput{Format: "xml"})
	assert.Error(t, err)

	_, _, err = h.SendRenewalReminder(context.Background(), nil, SendRenewalReminderInput{ID: "x"})
	assert.ErrorContains(t, err, "not available")
}

type staticSMSConfig models.SMSConfig

func (c staticSMSConfig) LoadSMSConfig() models.SMSConfig { return models.SMSConfig(c) }

func TestSendRenewalReminder(t *testing.T) {
	s := newTestStore(t)
	_, added, err := NewPolicyHandlers(s).AddPolicy(context.Background(), nil, ashaInput())
	require.NoError(t, err)

	quiet := log.New(io.Discard)
	sms := notify.NewSMS(staticSMSConfig{AccountSID: "AC1", AuthToken: "tok", FromNumber: "+1555", Enabled: true},
		notify.NewStubProvider(0, quiet), notify.WithSMSLogger(quiet))
	h := NewInsightHandlers(s, sms)

	_, out, err := h.SendRenewalReminder(context.Background(), nil, SendRenewalReminderInput{ID: added.ID})
	require.NoError(t, err)
	assert.True(t, out.Sent)
	assert.Equal(t, "+919876543210", out.To)
	assert.Contains(t, out.Message, "expires in 3 days")
}

func TestReadResources(t *testing.T) {
	s := newTestStore(t)
	_, added, err := NewPolicyHandlers(s).AddPolicy(context.Background(), nil, ashaInput())
	require.NoError(t, err)
	h := NewResourceHandlers(s)

	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	res, err := read("insuretrack://policies")
	require.NoError(t, err)
	var all []PolicyOutput
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &all))
	assert.Len(t, all, 1)

	res, err = read("insuretrack://policies/" + added.ID)
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, added.PolicyNumber)

	_, err = read("insuretrack://policies/missing")
	assert.Error(t, err)

	res, err = read("insuretrack://stats")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"totalPolicies": 1`)

	_, err = read("insuretrack://contacts")
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	s := newTestStore(t)
	_, _, err := NewPolicyHandlers(s).AddPolicy(context.Background(), nil, ashaInput())
	require.NoError(t, err)
	h := NewPromptHandlers(s)

	get := func(name string, args map[string]string) (*mcp.GetPromptResult, error) {
		return h.GetPrompt(context.Background(), &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
	}

	res, err := get("renewal-outreach", nil)
	require.NoError(t, err)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Asha Rao")
	assert.Contains(t, text, "renews in 3 days")

	res, err = get("policyholder-review", map[string]string{"name": "asha"})
	require.NoError(t, err)
	assert.Contains(t, res.Messages[0].Content.(*mcp.TextContent).Text, "Combined premium: ₹12,000.00")

	_, err = get("policyholder-review", map[string]string{})
	assert.Error(t, err)
	_, err = get("nope", nil)
	assert.Error(t, err)
}

