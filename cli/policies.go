// ABOUTME: Policy CLI commands
// ABOUTME: Human-friendly commands for adding, listing, updating and deleting policies
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/store"
	"github.com/harperreed/insuretrack/viz"
)

// describeError expands a validation failure into one line per field.
func describeError(action string, err error) error {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	fields := make([]string, 0, len(verr.Fields))
	for field := range verr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msg := fmt.Sprintf("failed to %s:", action)
	for _, field := range fields {
		msg += fmt.Sprintf("\n  %s: %s", field, verr.Fields[field])
	}
	return errors.New(msg)
}

func printPolicy(w io.Writer, p models.Policy) {
	_, _ = fmt.Fprintf(w, "  Number:    %s\n", p.PolicyNumber)
	_, _ = fmt.Fprintf(w, "  Holder:    %s\n", p.PolicyholderName)
	if dob, err := dates.Parse(p.DateOfBirth); err == nil {
		_, _ = fmt.Fprintf(w, "  Born:      %s (age %d)\n", dates.FormatDate(dob), dates.CalculateAge(dob))
	}
	if renewal, err := dates.Parse(p.PolicyRenewalDate); err == nil {
		_, _ = fmt.Fprintf(w, "  Renewal:   %s (%s)\n", dates.FormatDate(renewal), viz.RenewalBadge(dates.DaysUntilRenewal(renewal)))
	}
	_, _ = fmt.Fprintf(w, "  Premium:   %s %s\n", viz.FormatINR(p.PolicyPremiumAmount), p.RenewalFrequency.OrDefault())
	_, _ = fmt.Fprintf(w, "  Category:  %s\n", p.InsuranceCategory.Label())
	_, _ = fmt.Fprintf(w, "  Mobile:    %s\n", p.MobileNumber)
}

// PolicyAddCommand adds a new policy.
func PolicyAddCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("policy add", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	number := fs.String("number", "", "Policy number (generated when omitted)")
	name := fs.String("name", "", "Policyholder name (required)")
	dob := fs.String("dob", "", "Date of birth YYYY-MM-DD (required)")
	renewal := fs.String("renewal", "", "Next renewal date YYYY-MM-DD (required)")
	frequency := fs.String("frequency", "yearly", "Renewal frequency: monthly or yearly")
	mobile := fs.String("mobile", "", "10-digit mobile number (required)")
	premium := fs.Float64("premium", 0, "Premium amount in rupees (required)")
	category := fs.String("category", "", "life, term, car, bike or medical (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := models.ParseCategory(*category)
	if err != nil {
		return err
	}
	freq, err := models.ParseFrequency(*frequency)
	if err != nil {
		return err
	}

	policyNumber := *number
	if policyNumber == "" {
		policyNumber = app.Store.NextPolicyNumber()
	}

	p, err := app.Store.Add(models.PolicyInput{
		PolicyNumber:        policyNumber,
		PolicyholderName:    *name,
		DateOfBirth:         *dob,
		PolicyRenewalDate:   *renewal,
		RenewalFrequency:    freq,
		MobileNumber:        *mobile,
		PolicyPremiumAmount: *premium,
		InsuranceCategory:   cat,
	})
	if err != nil {
		return describeError("add policy", err)
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Policy added: %s (ID: %s)\n", p.PolicyNumber, p.ID)
	printPolicy(app.Out, p)
	return nil
}

// PolicyListCommand lists policies.
func PolicyListCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("policy list", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	query := fs.String("query", "", "Search by name, policy number or mobile")
	category := fs.String("category", "", "Filter by category")
	sortBy := fs.String("sort", "name", "Sort by name, renewal, premium, category or recent")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := store.Query{Search: *query, Limit: *limit}
	if *category != "" {
		cat, err := models.ParseCategory(*category)
		if err != nil {
			return err
		}
		q.Category = cat
	}
	order, err := store.ParseSortOrder(*sortBy)
	if err != nil {
		return err
	}
	q.Sort = order

	policies := app.Store.Find(q)
	if len(policies) == 0 {
		_, _ = fmt.Fprintln(app.Out, "No policies found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NUMBER\tHOLDER\tCATEGORY\tPREMIUM\tRENEWAL\tID")
	_, _ = fmt.Fprintln(w, "------\t------\t--------\t-------\t-------\t--")
	for _, p := range policies {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.PolicyNumber, p.PolicyholderName, p.InsuranceCategory.Label(),
			viz.FormatINR(p.PolicyPremiumAmount), p.PolicyRenewalDate, p.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(app.Out, "\n%d of %d policies\n", len(policies), app.Store.Len())
	return nil
}

// lookupPolicy accepts an id or a policy number.
func lookupPolicy(app *App, ref string) (models.Policy, error) {
	if p, ok := app.Store.Get(ref); ok {
		return p, nil
	}
	if p, ok := app.Store.FindByNumber(ref); ok {
		return p, nil
	}
	return models.Policy{}, fmt.Errorf("%w: %s", store.ErrPolicyNotFound, ref)
}

// PolicyShowCommand prints one policy.
func PolicyShowCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("policy show", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("policy ID or number required")
	}

	p, err := lookupPolicy(app, fs.Arg(0))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(app.Out, "Policy %s\n", p.ID)
	printPolicy(app.Out, p)
	return nil
}

// PolicyUpdateCommand updates the fields given as flags.
func PolicyUpdateCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("policy update", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	number := fs.String("number", "", "Policy number")
	name := fs.String("name", "", "Policyholder name")
	dob := fs.String("dob", "", "Date of birth YYYY-MM-DD")
	renewal := fs.String("renewal", "", "Renewal date YYYY-MM-DD")
	frequency := fs.String("frequency", "", "monthly or yearly")
	mobile := fs.String("mobile", "", "10-digit mobile number")
	premium := fs.String("premium", "", "Premium amount in rupees")
	category := fs.String("category", "", "Insurance category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("policy ID or number required")
	}

	existing, err := lookupPolicy(app, fs.Arg(0))
	if err != nil {
		return err
	}

	// Only flags that were set become part of the patch
	var patch models.PolicyPatch
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "number":
			patch.PolicyNumber = number
		case "name":
			patch.PolicyholderName = name
		case "dob":
			patch.DateOfBirth = dob
		case "renewal":
			patch.PolicyRenewalDate = renewal
		case "mobile":
			patch.MobileNumber = mobile
		case "premium":
			v, err := strconv.ParseFloat(*premium, 64)
			if err != nil {
				parseErr = fmt.Errorf("invalid premium %q", *premium)
				return
			}
			patch.PolicyPremiumAmount = &v
		case "frequency":
			freq, err := models.ParseFrequency(*frequency)
			if err != nil {
				parseErr = err
				return
			}
			patch.RenewalFrequency = &freq
		case "category":
			c, err := models.ParseCategory(*category)
			if err != nil {
				parseErr = err
				return
			}
			patch.InsuranceCategory = &c
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update: pass at least one field flag")
	}

	p, err := app.Store.Update(existing.ID, patch)
	if err != nil {
		return describeError("update policy", err)
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Policy updated: %s\n", p.PolicyNumber)
	printPolicy(app.Out, p)
	return nil
}

// PolicyDeleteCommand deletes a policy.
func PolicyDeleteCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("policy delete", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("policy ID or number required")
	}

	p, err := lookupPolicy(app, fs.Arg(0))
	if err != nil {
		return err
	}
	if err := app.Store.Remove(p.ID); err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Policy deleted: %s (%s)\n", p.PolicyNumber, p.PolicyholderName)
	return nil
}

// ClearCommand removes every policy. It only acts with --confirm.
func ClearCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	confirm := fs.Bool("confirm", false, "Confirm deleting all policies")
	if err := fs.Parse(args); err != nil {
		return err
	}

	count := app.Store.Len()
	if !*confirm {
		_, _ = fmt.Fprintf(app.Out, "WARNING: This will delete all %d policies!\n\n", count)
		_, _ = fmt.Fprintln(app.Out, "To confirm, run:")
		_, _ = fmt.Fprintln(app.Out, "  insuretrack clear --confirm")
		return nil
	}

	if err := app.Store.Clear(); err != nil {
		return fmt.Errorf("failed to clear policies: %w", err)
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Deleted %d policies\n", count)
	return nil
}
