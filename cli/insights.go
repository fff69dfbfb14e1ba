// ABOUTME: Portfolio statistics and renewal alert CLI commands
// ABOUTME: Prints totals, distributions and policies renewing soon
package cli

import (
	"flag"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/store"
	"github.com/harperreed/insuretrack/viz"
)

// StatsCommand prints aggregate portfolio statistics.
func StatsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := app.Store.Stats()
	_, _ = fmt.Fprintln(app.Out, "Portfolio")
	_, _ = fmt.Fprintln(app.Out, "─────────")
	_, _ = fmt.Fprintf(app.Out, "Policies:        %d\n", s.TotalPolicies)
	_, _ = fmt.Fprintf(app.Out, "Total premium:   %s\n", viz.FormatINR(s.TotalPremium))
	_, _ = fmt.Fprintf(app.Out, "Average premium: %s\n", viz.FormatINR(s.AvgPremium))
	_, _ = fmt.Fprintf(app.Out, "Monthly outlay:  %s\n", viz.FormatINR(s.MonthlyPremiumTotal))
	_, _ = fmt.Fprintf(app.Out, "Yearly outlay:   %s\n", viz.FormatINR(s.YearlyPremiumTotal))
	if s.LastUpdated != nil {
		_, _ = fmt.Fprintf(app.Out, "Last updated:    %s\n", s.LastUpdated.Local().Format(time.RFC1123))
	}
	if s.TotalPolicies == 0 {
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\nCATEGORY\tPOLICIES")
	for _, c := range models.Categories {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c.Label(), s.CategoryDistribution[string(c)])
	}
	_, _ = fmt.Fprintln(w, "\nAGE GROUP\tPOLICIES")
	for _, g := range dates.AgeGroups {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", g, s.AgeGroupDistribution[g])
	}
	_, _ = fmt.Fprintln(w, "\nFREQUENCY\tPOLICIES")
	freqs := make([]string, 0, len(s.RenewalFrequencyDistribution))
	for f := range s.RenewalFrequencyDistribution {
		freqs = append(freqs, f)
	}
	sort.Strings(freqs)
	for _, f := range freqs {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", f, s.RenewalFrequencyDistribution[f])
	}
	return w.Flush()
}

// AlertsCommand lists policies renewing within the window, soonest first.
func AlertsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("alerts", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	days := fs.Int("days", dates.DefaultDueSoonDays, "Alert window in days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *days < 0 {
		return fmt.Errorf("--days must not be negative")
	}

	var alerts []models.RenewalAlert
	if *days == dates.DefaultDueSoonDays {
		alerts = app.Store.RenewalAlerts()
	} else {
		alerts = store.RenewalAlerts(app.Store.Policies(), time.Now(), *days)
	}

	if len(alerts) == 0 {
		_, _ = fmt.Fprintf(app.Out, "No renewals due in the next %d days\n", *days)
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DUE\tHOLDER\tNUMBER\tCATEGORY\tPREMIUM\tMOBILE")
	_, _ = fmt.Fprintln(w, "---\t------\t------\t--------\t-------\t------")
	for _, a := range alerts {
		p := a.Policy
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			viz.RenewalBadge(a.DaysUntilRenewal), p.PolicyholderName, p.PolicyNumber,
			p.InsuranceCategory.Label(), viz.FormatINR(p.PolicyPremiumAmount), p.MobileNumber)
	}
	return w.Flush()
}
