// ABOUTME: MCP prompt handlers for reusable policy workflow templates
// ABOUTME: Provides renewal outreach and policyholder review prompts
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/insuretrack/store"
	"github.com/harperreed/insuretrack/viz"
)

type PromptHandlers struct {
	store *store.Store
}

func NewPromptHandlers(s *store.Store) *PromptHandlers {
	return &PromptHandlers{store: s}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "renewal-outreach":
		return h.getRenewalOutreachPrompt()
	case "policyholder-review":
		return h.getPolicyholderReviewPrompt(request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) getRenewalOutreachPrompt() (*mcp.GetPromptResult, error) {
	alerts := h.store.RenewalAlerts()

	var promptText strings.Builder
	if len(alerts) == 0 {
		promptText.WriteString("No policies renew in the next 7 days. Summarise the upcoming renewal calendar instead ")
		promptText.WriteString("using the insuretrack://stats resource.\n")
		return userPrompt("Renewal outreach", promptText.String()), nil
	}

	promptText.WriteString("Draft a short, friendly renewal reminder for each of these policyholders. ")
	promptText.WriteString("Mention the policy number, the renewal date and the premium. Keep each message under 160 characters.\n\n")
	for _, a := range alerts {
		promptText.WriteString(fmt.Sprintf("- %s, %s insurance %s, %s, premium %s (id %s)\n",
			a.Policy.PolicyholderName, a.Policy.InsuranceCategory.Label(), a.Policy.PolicyNumber,
			viz.RenewalBadge(a.DaysUntilRenewal), viz.FormatINR(a.Policy.PolicyPremiumAmount), a.Policy.ID))
	}
	promptText.WriteString("\nUse send_renewal_reminder to send the standard message once the user approves.\n")

	return userPrompt(fmt.Sprintf("Renewal outreach for %d policies", len(alerts)), promptText.String()), nil
}

func (h *PromptHandlers) getPolicyholderReviewPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	name, ok := args["name"]
	if !ok || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required")
	}

	policies := h.store.Find(store.Query{Search: name, Sort: store.SortByRenewal})
	if len(policies) == 0 {
		return nil, fmt.Errorf("no policies found for %q", name)
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Review the insurance coverage held by %s. ", name))
	promptText.WriteString("Point out gaps between categories, renewals that cluster together and premiums that look unusual.\n\n")
	total := 0.0
	for _, p := range policies {
		total += p.PolicyPremiumAmount
		promptText.WriteString(fmt.Sprintf("- %s: %s, %s %s, renews %s\n",
			p.PolicyNumber, p.InsuranceCategory.Label(), viz.FormatINR(p.PolicyPremiumAmount),
			p.RenewalFrequency.OrDefault(), p.PolicyRenewalDate))
	}
	promptText.WriteString(fmt.Sprintf("\nCombined premium: %s\n", viz.FormatINR(total)))

	return userPrompt(fmt.Sprintf("Coverage review for %s", name), promptText.String()), nil
}
