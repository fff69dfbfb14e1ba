// ABOUTME: Delete confirmation views for TUI
// ABOUTME: Handles deletion of a single policy and clearing all data with confirmation dialogs
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDialog(title, message, info, confirm string) string {
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render(confirm+" (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		warningStyle.Render("⚠  "+title+"  ⚠"),
		"",
		message,
		info,
		"\nThis action cannot be undone!",
		"",
		buttons,
	)

	// Center the box on screen
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) renderConfirmDeleteView() string {
	p, ok := m.store.Get(m.selectedID)
	if !ok {
		return "Policy not found. Press esc to go back."
	}

	return m.renderConfirmDialog(
		"DELETE CONFIRMATION",
		"Are you sure you want to delete this policy?",
		fmt.Sprintf("\n%s: %s\n", p.PolicyNumber, p.PolicyholderName),
		"Yes, Delete",
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		// Confirm delete
		if err := m.store.Remove(m.selectedID); err != nil {
			m.err = err
			m.statusMessage = "Error: " + err.Error()
		} else {
			m.statusMessage = "Policy deleted"
			m.selectedID = "" // Clear selection
			if m.selectedRow > 0 && m.selectedRow >= m.rowCount() {
				m.selectedRow--
			}
		}
		m.viewMode = ViewList
	case "n", "N", "esc":
		// Cancel delete
		if _, ok := m.store.Get(m.selectedID); ok {
			m.viewMode = ViewDetail
		} else {
			m.viewMode = ViewList
		}
	}

	return m, nil
}

func (m Model) renderConfirmClearView() string {
	return m.renderConfirmDialog(
		"CLEAR ALL DATA",
		"Are you sure you want to delete every policy?",
		fmt.Sprintf("\n%d policies will be removed\n", m.store.Len()),
		"Yes, Clear",
	)
}

func (m Model) handleConfirmClearKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.store.Clear(); err != nil {
			m.err = err
			m.statusMessage = "Error: " + err.Error()
		} else {
			m.statusMessage = "All policies cleared"
			m.selectedRow = 0
		}
		m.viewMode = ViewList
	case "n", "N", "esc":
		m.viewMode = ViewList
	}
	return m, nil
}
