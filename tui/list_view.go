package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/store"
	"github.com/harperreed/insuretrack/viz"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("INSURETRACK"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.tab {
	case TabPolicies:
		if m.searching || m.searchInput.Value() != "" {
			s.WriteString(m.searchInput.View())
			s.WriteString("\n\n")
		}
		s.WriteString(m.renderPoliciesTable())
	case TabDashboard:
		s.WriteString(viz.RenderDashboard(viz.GenerateDashboardStats(m.store)))
	case TabAlerts:
		s.WriteString(m.renderAlertsTable())
	case TabSettings:
		s.WriteString(m.renderSettingsView())
	}
	s.WriteString("\n\n")

	if m.statusMessage != "" {
		s.WriteString(statusStyle.Render(m.statusMessage))
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// visiblePolicies is the policy tab's content in display order.
func (m Model) visiblePolicies() []models.Policy {
	return m.store.Find(store.Query{Search: m.searchInput.Value(), Sort: m.sortOrder})
}

func (m Model) tableHeight() int {
	if h := m.height - 12; h > 3 {
		return h
	}
	return 3
}

func (m Model) renderPoliciesTable() string {
	policies := m.visiblePolicies()
	if len(policies) == 0 {
		if m.store.Len() == 0 {
			return "No policies yet. Press n to add one."
		}
		return "No policies match your search."
	}

	columns := []table.Column{
		{Title: "Number", Width: 15},
		{Title: "Policyholder", Width: 24},
		{Title: "Category", Width: 9},
		{Title: "Premium", Width: 14},
		{Title: "Renewal", Width: 13},
	}

	var rows []table.Row
	for _, p := range policies {
		rows = append(rows, table.Row{
			p.PolicyNumber,
			p.PolicyholderName,
			p.InsuranceCategory.Label(),
			viz.FormatINR(p.PolicyPremiumAmount),
			displayDate(p.PolicyRenewalDate),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View() + "\n" + statusStyle.Render(fmt.Sprintf("%d of %d policies • sorted by %s", len(policies), m.store.Len(), m.sortOrder))
}

func (m Model) renderAlertsTable() string {
	alerts := m.store.RenewalAlerts()
	if len(alerts) == 0 {
		return "No renewals due in the next 7 days."
	}

	columns := []table.Column{
		{Title: "Policyholder", Width: 24},
		{Title: "Number", Width: 15},
		{Title: "Renews", Width: 18},
		{Title: "Premium", Width: 14},
	}

	var rows []table.Row
	for _, a := range alerts {
		rows = append(rows, table.Row{
			a.Policy.PolicyholderName,
			a.Policy.PolicyNumber,
			viz.RenewalBadge(a.DaysUntilRenewal),
			viz.FormatINR(a.Policy.PolicyPremiumAmount),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t.View()
}

func displayDate(s string) string {
	t, err := dates.Parse(s)
	if err != nil {
		return s
	}
	return dates.FormatDate(t)
}

func (m Model) renderListHelp() string {
	var help []string
	switch {
	case m.searching:
		help = []string{"Type to search", "Enter: Done", "Esc: Clear"}
	case m.tab == TabPolicies:
		help = []string{"↑/↓: Navigate", "Tab: Switch tabs", "Enter: View details", "/: Search", "s: Sort", "n: New", "d: Delete", "q: Quit"}
	case m.tab == TabAlerts:
		help = []string{"↑/↓: Navigate", "Tab: Switch tabs", "Enter: View details", "q: Quit"}
	case m.tab == TabSettings:
		help = []string{"Tab: Switch tabs", "u: Sync now", "x: Clear all data", "q: Quit"}
	default:
		help = []string{"Tab: Switch tabs", "q: Quit"}
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

// rowCount is the number of selectable rows on the current tab.
func (m Model) rowCount() int {
	switch m.tab {
	case TabPolicies:
		return len(m.visiblePolicies())
	case TabAlerts:
		return len(m.store.RenewalAlerts())
	}
	return 0
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "enter":
		if id := m.getSelectedID(); id != "" {
			m.viewMode = ViewDetail
			m.selectedID = id
			m.statusMessage = ""
		}
	case "/":
		if m.tab == TabPolicies {
			m.searching = true
			m.searchInput.Focus()
		}
	case "s":
		if m.tab == TabPolicies {
			m.sortOrder = nextSortOrder(m.sortOrder)
			m.selectedRow = 0
		}
	case "n":
		// Switch to edit view (new)
		m.viewMode = ViewEdit
		m.selectedID = ""
		m.initFormInputs()
	case "d":
		if id := m.getSelectedID(); id != "" && m.tab == TabPolicies {
			m.selectedID = id
			m.viewMode = ViewConfirmDelete
		}
	case "x":
		if m.tab == TabSettings {
			m.viewMode = ViewConfirmClear
		}
	case "u":
		if m.tab == TabSettings {
			return m.startSync()
		}
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.selectedRow = 0
	return m, cmd
}

func nextSortOrder(current store.SortOrder) store.SortOrder {
	for i, o := range store.SortOrders {
		if o == current {
			return store.SortOrders[(i+1)%len(store.SortOrders)]
		}
	}
	return store.SortByName
}

func (m Model) getSelectedID() string {
	switch m.tab {
	case TabPolicies:
		policies := m.visiblePolicies()
		if m.selectedRow < len(policies) {
			return policies[m.selectedRow].ID
		}
	case TabAlerts:
		alerts := m.store.RenewalAlerts()
		if m.selectedRow < len(alerts) {
			return alerts[m.selectedRow].Policy.ID
		}
	}
	return ""
}
