// ABOUTME: Policyholder graph: each person linked to the policies they hold
// ABOUTME: Holders are matched by name and date of birth
package viz

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz/cgraph"
)

// GenerateHolderGraph draws policyholders, their policies and the categories
// those policies belong to. An empty name matches everyone.
func (g *GraphGenerator) GenerateHolderGraph(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	return render(ctx, "Policyholders", func(graph *cgraph.Graph) error {
		holders := make(map[string]*cgraph.Node)
		categories := make(map[string]*cgraph.Node)

		for _, p := range g.source.Policies() {
			if name != "" && !strings.Contains(strings.ToLower(p.PolicyholderName), name) {
				continue
			}

			holderKey := strings.ToLower(p.PolicyholderName) + "|" + p.DateOfBirth
			holder, ok := holders[holderKey]
			if !ok {
				node, err := graph.CreateNodeByName(fmt.Sprintf("holder_%d", len(holders)))
				if err != nil {
					return fmt.Errorf("failed to create holder node: %w", err)
				}
				node.SetLabel(fmt.Sprintf("%s\n%s", p.PolicyholderName, p.MobileNumber))
				node.SetShape("ellipse")
				node.SetStyle("filled")
				node.SetFillColor("lightgreen")
				holders[holderKey] = node
				holder = node
			}

			policy, err := graph.CreateNodeByName("policy_" + p.ID)
			if err != nil {
				return fmt.Errorf("failed to create policy node: %w", err)
			}
			policy.SetLabel(fmt.Sprintf("%s\n%s\nrenews %s", p.PolicyNumber, FormatINR(p.PolicyPremiumAmount), p.PolicyRenewalDate))
			policy.SetShape("diamond")
			policy.SetStyle("filled")
			policy.SetFillColor("lightyellow")

			edge, err := graph.CreateEdgeByName("holds_"+p.ID, holder, policy)
			if err != nil {
				return fmt.Errorf("failed to create holder edge: %w", err)
			}
			edge.SetLabel("holds")

			category, ok := categories[string(p.InsuranceCategory)]
			if !ok {
				node, err := categoryNode(graph, p.InsuranceCategory)
				if err != nil {
					return err
				}
				categories[string(p.InsuranceCategory)] = node
				category = node
			}
			edge, err = graph.CreateEdgeByName("covers_"+p.ID, policy, category)
			if err != nil {
				return fmt.Errorf("failed to create category edge: %w", err)
			}
			edge.SetStyle("dashed")
		}
		return nil
	})
}
