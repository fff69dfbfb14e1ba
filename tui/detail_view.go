package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/viz"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dueSoonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("POLICY DETAIL"))
	s.WriteString("\n\n")

	p, ok := m.store.Get(m.selectedID)
	if !ok {
		s.WriteString("Policy not found. It may have been deleted.")
	} else {
		s.WriteString(m.renderPolicyDetail(p))
	}

	s.WriteString("\n\n")

	// Help
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderPolicyDetail(p models.Policy) string {
	var s strings.Builder

	s.WriteString(m.renderField("Policy Number", p.PolicyNumber))
	s.WriteString(m.renderField("Policyholder", p.PolicyholderName))

	dob := displayDate(p.DateOfBirth)
	if t, err := dates.Parse(p.DateOfBirth); err == nil {
		dob = fmt.Sprintf("%s (age %d)", dob, dates.CalculateAge(t))
	}
	s.WriteString(m.renderField("Date of Birth", dob))
	s.WriteString(m.renderField("Mobile", p.MobileNumber))
	s.WriteString(m.renderField("Category", p.InsuranceCategory.Label()))
	s.WriteString(m.renderField("Premium", fmt.Sprintf("%s %s", viz.FormatINR(p.PolicyPremiumAmount), p.RenewalFrequency.OrDefault())))

	renewal := displayDate(p.PolicyRenewalDate)
	if t, err := dates.Parse(p.PolicyRenewalDate); err == nil {
		days := dates.DaysUntilRenewal(t)
		switch {
		case days < 0:
			renewal = fmt.Sprintf("%s (overdue by %d days)", renewal, -days)
		case dates.IsRenewalDueSoon(t, dates.DefaultDueSoonDays):
			renewal = fmt.Sprintf("%s %s", renewal, dueSoonStyle.Render("("+viz.RenewalBadge(days)+")"))
		default:
			renewal = fmt.Sprintf("%s (in %d days)", renewal, days)
		}
	}
	s.WriteString(m.renderField("Renewal", renewal))

	if !p.CreatedAt.IsZero() {
		s.WriteString(m.renderField("Created", p.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	if !p.UpdatedAt.IsZero() {
		s.WriteString(m.renderField("Updated", p.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"d: Delete",
		"g: View graph",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
	case "e":
		if _, ok := m.store.Get(m.selectedID); ok {
			m.viewMode = ViewEdit
			m.initFormInputs()
		}
	case "d":
		if _, ok := m.store.Get(m.selectedID); ok {
			m.viewMode = ViewConfirmDelete
		}
	case "g":
		m.viewMode = ViewGraph
		if err := m.generateGraph(); err != nil {
			m.err = err
		}
	}

	return m, nil
}
