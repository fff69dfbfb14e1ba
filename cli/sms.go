// ABOUTME: SMS settings, test message and delivery history CLI commands
// ABOUTME: The auth token is read from a hidden prompt and never printed
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/notify"
)

// tokenReader reads the auth token. Replaced in tests.
var tokenReader = readTokenFromTerminal

// readTokenFromTerminal hides input when stdin is a terminal and falls back to one plain line.
func readTokenFromTerminal(out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, "Auth token: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		token, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(out) // New line after hidden input
		if err != nil {
			return "", fmt.Errorf("failed to read auth token: %w", err)
		}
		return strings.TrimSpace(string(token)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read auth token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "********"
}

// SMSConfigCommand shows or changes the SMS provider settings.
func SMSConfigCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("sms config", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	sid := fs.String("sid", "", "Account SID")
	from := fs.String("from", "", "Sender phone number")
	setToken := fs.Bool("token", false, "Prompt for the auth token")
	enable := fs.Bool("enable", false, "Enable SMS notifications")
	disable := fs.Bool("disable", false, "Disable SMS notifications")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *enable && *disable {
		return fmt.Errorf("--enable and --disable are mutually exclusive")
	}

	cfg := app.Storage.LoadSMSConfig()
	changed := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sid":
			cfg.AccountSID = strings.TrimSpace(*sid)
			changed = true
		case "from":
			cfg.FromNumber = strings.TrimSpace(*from)
			changed = true
		case "enable", "disable":
			cfg.Enabled = *enable
			changed = true
		}
	})
	if *setToken {
		token, err := tokenReader(app.Out)
		if err != nil {
			return err
		}
		cfg.AuthToken = token
		changed = true
	}

	if changed {
		if err := app.Storage.SaveSMSConfig(cfg); err != nil {
			return fmt.Errorf("failed to save SMS settings: %w", err)
		}
		_, _ = fmt.Fprintln(app.Out, "✓ SMS settings saved")
	}

	_, _ = fmt.Fprintln(app.Out, "SMS Settings")
	_, _ = fmt.Fprintln(app.Out, "────────────")
	_, _ = fmt.Fprintf(app.Out, "Account SID: %s\n", orDash(cfg.AccountSID))
	_, _ = fmt.Fprintf(app.Out, "Auth token:  %s\n", maskSecret(cfg.AuthToken))
	_, _ = fmt.Fprintf(app.Out, "From:        %s\n", orDash(cfg.FromNumber))
	_, _ = fmt.Fprintf(app.Out, "Enabled:     %v\n", cfg.Enabled)
	if cfg.Enabled && !cfg.Configured() {
		_, _ = fmt.Fprintln(app.Out, "\nSMS is enabled but not fully configured; messages will be skipped.")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// SMSTestCommand sends the test message to a number.
func SMSTestCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("sms test", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("test phone number required")
	}

	to := notify.FormatPhoneNumber(fs.Arg(0))
	if !app.SMS.SendTest(context.Background(), fs.Arg(0)) {
		return fmt.Errorf("failed to send test SMS to %s, please check your configuration", to)
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Test SMS sent to %s\n", to)
	return nil
}

// SMSHistoryCommand lists recent send attempts from the SMS log.
func SMSHistoryCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("sms history", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	limit := fs.Int("limit", 20, "Maximum entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if app.SMSLog == nil {
		return fmt.Errorf("SMS history is not available")
	}

	ctx := context.Background()
	entries, err := app.SMSLog.Recent(ctx, *limit)
	if err != nil {
		return fmt.Errorf("failed to read SMS history: %w", err)
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(app.Out, "No SMS sent yet")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tTYPE\tTO\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintln(w, "----\t----\t--\t------\t------")
	for _, e := range entries {
		detail := e.ProviderSID
		if e.Error != "" {
			detail = e.Error
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Type, e.To, e.Status, orDash(detail))
	}
	_ = w.Flush()

	counts, err := app.SMSLog.CountByStatus(ctx)
	if err == nil {
		_, _ = fmt.Fprintf(app.Out, "\nsent %d, failed %d, skipped %d\n",
			counts[models.SMSSent], counts[models.SMSFailed], counts[models.SMSSkipped])
	}
	return nil
}
