// ABOUTME: Local desktop-style notifications rendered as terminal banners
// ABOUTME: One banner per tag, shown only when output goes to an interactive terminal
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
)

// DesktopNotification is one local alert. Tag makes repeated shows idempotent.
type DesktopNotification struct {
	Title string
	Body  string
	Tag   string
}

// Desktop shows local notifications. Show reports whether anything was displayed.
type Desktop interface {
	Show(n DesktopNotification) bool
}

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	bannerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214"))
)

// TerminalDesktop draws notifications as bordered banners on out.
type TerminalDesktop struct {
	out io.Writer

	mu        sync.Mutex
	permitted bool
	shown     map[string]bool
}

// NewTerminalDesktop grants permission only when out is an interactive terminal.
func NewTerminalDesktop(out io.Writer) *TerminalDesktop {
	d := &TerminalDesktop{out: out, shown: make(map[string]bool)}
	if f, ok := out.(*os.File); ok {
		d.permitted = term.IsTerminal(int(f.Fd()))
	}
	return d
}

// RequestPermission reports whether notifications may be shown.
func (d *TerminalDesktop) RequestPermission() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permitted
}

// SetPermission grants or revokes permission, e.g. for --notify on a non-TTY.
func (d *TerminalDesktop) SetPermission(granted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.permitted = granted
}

// Show draws n unless permission is missing or its tag was already shown.
func (d *TerminalDesktop) Show(n DesktopNotification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.permitted {
		return false
	}
	if n.Tag != "" {
		if d.shown[n.Tag] {
			return false
		}
		d.shown[n.Tag] = true
	}

	banner := bannerStyle.Render(bannerTitleStyle.Render("🔔 "+n.Title) + "\n" + n.Body)
	_, _ = fmt.Fprintln(d.out, banner)
	return true
}

// CheckRenewalNotifications shows one notification per policy renewing in 1 to 7 days
// and returns how many were displayed.
func CheckRenewalNotifications(d Desktop, policies []models.Policy, now time.Time) int {
	shown := 0
	for _, p := range policies {
		renewal, err := dates.Parse(p.PolicyRenewalDate)
		if err != nil {
			continue
		}
		days := dates.DaysUntilRenewalAt(renewal, now)
		if days <= 0 || days > dates.DefaultDueSoonDays {
			continue
		}

		if d.Show(DesktopNotification{
			Title: "Policy Renewal Reminder",
			Body: fmt.Sprintf("%s's %s insurance policy (%s) expires in %s",
				p.PolicyholderName, p.InsuranceCategory, p.PolicyNumber, pluralDays(days)),
			Tag: p.ID,
		}) {
			shown++
		}
	}
	return shown
}
