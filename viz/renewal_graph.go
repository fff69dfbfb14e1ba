// ABOUTME: Renewal calendar graph: insurance categories linked to the months their policies renew
// ABOUTME: Edge labels carry the policy count and premium due for that category in that month
package viz

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
)

type renewalBucket struct {
	category models.Category
	month    time.Time
	count    int
	premium  float64
}

// GenerateRenewalGraph links each category to the months its policies renew in.
// Policies with an unreadable renewal date are left out.
func (g *GraphGenerator) GenerateRenewalGraph(ctx context.Context) (string, error) {
	buckets := make(map[string]*renewalBucket)
	var months []time.Time
	seenMonth := make(map[time.Time]bool)

	for _, p := range g.source.Policies() {
		renewal, err := dates.Parse(p.PolicyRenewalDate)
		if err != nil {
			continue
		}
		month := time.Date(renewal.Year(), renewal.Month(), 1, 0, 0, 0, 0, time.Local)
		if !seenMonth[month] {
			seenMonth[month] = true
			months = append(months, month)
		}

		key := string(p.InsuranceCategory) + "|" + dates.MonthKey(month)
		b, ok := buckets[key]
		if !ok {
			b = &renewalBucket{category: p.InsuranceCategory, month: month}
			buckets[key] = b
		}
		b.count++
		b.premium += p.PolicyPremiumAmount
	}

	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	return render(ctx, "Policy Renewals", func(graph *cgraph.Graph) error {
		categoryNodes := make(map[models.Category]*cgraph.Node)
		for _, c := range models.Categories {
			node, err := categoryNode(graph, c)
			if err != nil {
				return err
			}
			categoryNodes[c] = node
		}

		monthNodes := make(map[time.Time]*cgraph.Node)
		for _, m := range months {
			node, err := graph.CreateNodeByName("month_" + m.Format("2006_01"))
			if err != nil {
				return fmt.Errorf("failed to create month node: %w", err)
			}
			node.SetLabel(dates.MonthKey(m))
			node.SetShape("ellipse")
			monthNodes[m] = node
		}

		keys := make([]string, 0, len(buckets))
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b := buckets[k]
			from, ok := categoryNodes[b.category]
			if !ok {
				node, err := categoryNode(graph, b.category)
				if err != nil {
					return err
				}
				categoryNodes[b.category] = node
				from = node
			}
			edge, err := graph.CreateEdgeByName(k, from, monthNodes[b.month])
			if err != nil {
				return fmt.Errorf("failed to create renewal edge: %w", err)
			}
			edge.SetLabel(fmt.Sprintf("%d (%s)", b.count, FormatINR(b.premium)))
		}
		return nil
	})
}
