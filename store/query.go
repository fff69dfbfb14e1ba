// ABOUTME: Search, filter and sort over the policy collection
// ABOUTME: Backs the policy list views of the CLI, TUI, web and MCP surfaces
package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/insuretrack/models"
)

// SortOrder selects how Find orders its results.
type SortOrder string

const (
	SortByName     SortOrder = "name"
	SortByRenewal  SortOrder = "renewal"
	SortByPremium  SortOrder = "premium"
	SortByCategory SortOrder = "category"
	SortByRecent   SortOrder = "recent"
)

// SortOrders lists every accepted sort order.
var SortOrders = []SortOrder{SortByName, SortByRenewal, SortByPremium, SortByCategory, SortByRecent}

// ParseSortOrder accepts a sort order name; empty means name.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortByName, nil
	}
	for _, o := range SortOrders {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q (want name, renewal, premium, category or recent)", s)
}

// Query narrows and orders the policy list.
type Query struct {
	// Search matches name and policy number case-insensitively, or a mobile substring.
	Search string
	// Category filters to one category; empty means all.
	Category models.Category
	Sort     SortOrder
	Limit    int
}

// Matches reports whether p passes the search and category filter.
func (q Query) Matches(p models.Policy) bool {
	if q.Category != "" && p.InsuranceCategory != q.Category {
		return false
	}

	term := strings.TrimSpace(q.Search)
	if term == "" {
		return true
	}
	lower := strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.PolicyholderName), lower) ||
		strings.Contains(strings.ToLower(p.PolicyNumber), lower) ||
		strings.Contains(p.MobileNumber, term)
}

// Find returns the policies matching q in the requested order.
func (s *Store) Find(q Query) []models.Policy {
	all := s.Policies()

	out := make([]models.Policy, 0, len(all))
	for _, p := range all {
		if q.Matches(p) {
			out = append(out, p)
		}
	}

	sortPolicies(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func sortPolicies(policies []models.Policy, order SortOrder) {
	var less func(a, b models.Policy) bool
	switch order {
	case SortByRenewal:
		// ISO dates compare lexically
		less = func(a, b models.Policy) bool { return a.PolicyRenewalDate < b.PolicyRenewalDate }
	case SortByPremium:
		less = func(a, b models.Policy) bool { return a.PolicyPremiumAmount > b.PolicyPremiumAmount }
	case SortByCategory:
		less = func(a, b models.Policy) bool { return a.InsuranceCategory < b.InsuranceCategory }
	case SortByRecent:
		less = func(a, b models.Policy) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		less = func(a, b models.Policy) bool {
			return strings.ToLower(a.PolicyholderName) < strings.ToLower(b.PolicyholderName)
		}
	}

	sort.SliceStable(policies, func(i, j int) bool { return less(policies[i], policies[j]) })
}
