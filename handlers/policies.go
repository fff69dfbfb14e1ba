// ABOUTME: Policy MCP tool handlers
// ABOUTME: Implements add_policy, find_policies, get_policy, update_policy and delete_policy tools
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/store"
)

type PolicyHandlers struct {
	store *store.Store
}

func NewPolicyHandlers(s *store.Store) *PolicyHandlers {
	return &PolicyHandlers{store: s}
}

type PolicyOutput struct {
	ID               string  `json:"id"`
	PolicyNumber     string  `json:"policy_number"`
	PolicyholderName string  `json:"policyholder_name"`
	DateOfBirth      string  `json:"date_of_birth"`
	Age              *int    `json:"age,omitempty"`
	RenewalDate      string  `json:"renewal_date"`
	DaysUntilRenewal *int    `json:"days_until_renewal,omitempty"`
	RenewalFrequency string  `json:"renewal_frequency"`
	MobileNumber     string  `json:"mobile_number"`
	Premium          float64 `json:"premium"`
	Category         string  `json:"category"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func policyToOutput(p models.Policy) PolicyOutput {
	out := PolicyOutput{
		ID:               p.ID,
		PolicyNumber:     p.PolicyNumber,
		PolicyholderName: p.PolicyholderName,
		DateOfBirth:      p.DateOfBirth,
		RenewalDate:      p.PolicyRenewalDate,
		RenewalFrequency: string(p.RenewalFrequency.OrDefault()),
		MobileNumber:     p.MobileNumber,
		Premium:          p.PolicyPremiumAmount,
		Category:         string(p.InsuranceCategory),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}

	if dob, err := dates.Parse(p.DateOfBirth); err == nil {
		age := dates.CalculateAge(dob)
		out.Age = &age
	}
	if renewal, err := dates.Parse(p.PolicyRenewalDate); err == nil {
		days := dates.DaysUntilRenewal(renewal)
		out.DaysUntilRenewal = &days
	}
	return out
}

// toolError flattens validation failures into one readable message for the agent.
func toolError(action string, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("failed to %s: %s", action, verr.Error())
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

type AddPolicyInput struct {
	PolicyNumber     string  `json:"policy_number,omitempty" jsonschema:"Policy number (generated when omitted)"`
	PolicyholderName string  `json:"policyholder_name" jsonschema:"Full name of the policyholder (required)"`
	DateOfBirth      string  `json:"date_of_birth" jsonschema:"Date of birth as YYYY-MM-DD; age must be 18 to 100 (required)"`
	RenewalDate      string  `json:"renewal_date" jsonschema:"Next renewal date as YYYY-MM-DD, today or later (required)"`
	RenewalFrequency string  `json:"renewal_frequency,omitempty" jsonschema:"monthly or yearly (default yearly)"`
	MobileNumber     string  `json:"mobile_number" jsonschema:"10-digit mobile number (required)"`
	Premium          float64 `json:"premium" jsonschema:"Premium amount in rupees, greater than 0 (required)"`
	Category         string  `json:"category" jsonschema:"One of life, term, car, bike, medical (required)"`
}

func (h *PolicyHandlers) AddPolicy(_ context.Context, request *mcp.CallToolRequest, input AddPolicyInput) (*mcp.CallToolResult, PolicyOutput, error) {
	category, err := models.ParseCategory(input.Category)
	if err != nil {
		return nil, PolicyOutput{}, err
	}
	frequency, err := models.ParseFrequency(input.RenewalFrequency)
	if err != nil {
		return nil, PolicyOutput{}, err
	}

	number := input.PolicyNumber
	if number == "" {
		number = h.store.NextPolicyNumber()
	}

	p, err := h.store.Add(models.PolicyInput{
		PolicyNumber:        number,
		PolicyholderName:    input.PolicyholderName,
		DateOfBirth:         input.DateOfBirth,
		PolicyRenewalDate:   input.RenewalDate,
		RenewalFrequency:    frequency,
		MobileNumber:        input.MobileNumber,
		PolicyPremiumAmount: input.Premium,
		InsuranceCategory:   category,
	})
	if err != nil {
		return nil, PolicyOutput{}, toolError("add policy", err)
	}

	return nil, policyToOutput(p), nil
}

type FindPoliciesInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Search policyholder name, policy number or mobile number"`
	Category string `json:"category,omitempty" jsonschema:"Filter by category (life, term, car, bike, medical)"`
	Sort     string `json:"sort,omitempty" jsonschema:"Sort order: name, renewal, premium, category or recent (default name)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type FindPoliciesOutput struct {
	Policies []PolicyOutput `json:"policies"`
	Total    int            `json:"total"`
}

func (h *PolicyHandlers) FindPolicies(_ context.Context, request *mcp.CallToolRequest, input FindPoliciesInput) (*mcp.CallToolResult, FindPoliciesOutput, error) {
	q := store.Query{Search: input.Query, Limit: input.Limit}
	if q.Limit == 0 {
		q.Limit = 20
	}

	if input.Category != "" {
		category, err := models.ParseCategory(input.Category)
		if err != nil {
			return nil, FindPoliciesOutput{}, err
		}
		q.Category = category
	}

	order, err := store.ParseSortOrder(input.Sort)
	if err != nil {
		return nil, FindPoliciesOutput{}, err
	}
	q.Sort = order

	policies := h.store.Find(q)
	result := make([]PolicyOutput, len(policies))
	for i, p := range policies {
		result[i] = policyToOutput(p)
	}

	return nil, FindPoliciesOutput{Policies: result, Total: h.store.Len()}, nil
}

type GetPolicyInput struct {
	ID           string `json:"id,omitempty" jsonschema:"Policy ID"`
	PolicyNumber string `json:"policy_number,omitempty" jsonschema:"Policy number, used when id is empty"`
}

func (h *PolicyHandlers) lookup(id, number string) (models.Policy, error) {
	switch {
	case id != "":
		if p, ok := h.store.Get(id); ok {
			return p, nil
		}
		return models.Policy{}, fmt.Errorf("%w: %s", store.ErrPolicyNotFound, id)
	case number != "":
		if p, ok := h.store.FindByNumber(number); ok {
			return p, nil
		}
		return models.Policy{}, fmt.Errorf("%w: %s", store.ErrPolicyNotFound, number)
	default:
		return models.Policy{}, fmt.Errorf("id or policy_number is required")
	}
}

func (h *PolicyHandlers) GetPolicy(_ context.Context, request *mcp.CallToolRequest, input GetPolicyInput) (*mcp.CallToolResult, PolicyOutput, error) {
	p, err := h.lookup(input.ID, input.PolicyNumber)
	if err != nil {
		return nil, PolicyOutput{}, err
	}
	return nil, policyToOutput(p), nil
}

type UpdatePolicyInput struct {
	ID               string   `json:"id" jsonschema:"Policy ID (required)"`
	PolicyNumber     *string  `json:"policy_number,omitempty" jsonschema:"Updated policy number"`
	PolicyholderName *string  `json:"policyholder_name,omitempty" jsonschema:"Updated policyholder name"`
	DateOfBirth      *string  `json:"date_of_birth,omitempty" jsonschema:"Updated date of birth (YYYY-MM-DD)"`
	RenewalDate      *string  `json:"renewal_date,omitempty" jsonschema:"Updated renewal date (YYYY-MM-DD)"`
	RenewalFrequency *string  `json:"renewal_frequency,omitempty" jsonschema:"Updated frequency: monthly or yearly"`
	MobileNumber     *string  `json:"mobile_number,omitempty" jsonschema:"Updated 10-digit mobile number"`
	Premium          *float64 `json:"premium,omitempty" jsonschema:"Updated premium amount"`
	Category         *string  `json:"category,omitempty" jsonschema:"Updated category"`
}

func (h *PolicyHandlers) UpdatePolicy(_ context.Context, request *mcp.CallToolRequest, input UpdatePolicyInput) (*mcp.CallToolResult, PolicyOutput, error) {
	if input.ID == "" {
		return nil, PolicyOutput{}, fmt.Errorf("id is required")
	}

	patch := models.PolicyPatch{
		PolicyNumber:        input.PolicyNumber,
		PolicyholderName:    input.PolicyholderName,
		DateOfBirth:         input.DateOfBirth,
		PolicyRenewalDate:   input.RenewalDate,
		MobileNumber:        input.MobileNumber,
		PolicyPremiumAmount: input.Premium,
	}
	if input.RenewalFrequency != nil {
		f, err := models.ParseFrequency(*input.RenewalFrequency)
		if err != nil {
			return nil, PolicyOutput{}, err
		}
		patch.RenewalFrequency = &f
	}
	if input.Category != nil {
		c, err := models.ParseCategory(*input.Category)
		if err != nil {
			return nil, PolicyOutput{}, err
		}
		patch.InsuranceCategory = &c
	}
	if patch.IsEmpty() {
		return nil, PolicyOutput{}, fmt.Errorf("nothing to update")
	}

	p, err := h.store.Update(input.ID, patch)
	if err != nil {
		return nil, PolicyOutput{}, toolError("update policy", err)
	}
	return nil, policyToOutput(p), nil
}

type DeletePolicyInput struct {
	ID string `json:"id" jsonschema:"Policy ID (required)"`
}

type DeletePolicyOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (h *PolicyHandlers) DeletePolicy(_ context.Context, request *mcp.CallToolRequest, input DeletePolicyInput) (*mcp.CallToolResult, DeletePolicyOutput, error) {
	if input.ID == "" {
		return nil, DeletePolicyOutput{}, fmt.Errorf("id is required")
	}
	if _, ok := h.store.Get(input.ID); !ok {
		return nil, DeletePolicyOutput{ID: input.ID}, nil
	}
	if err := h.store.Remove(input.ID); err != nil {
		return nil, DeletePolicyOutput{}, toolError("delete policy", err)
	}
	return nil, DeletePolicyOutput{ID: input.ID, Deleted: true}, nil
}
