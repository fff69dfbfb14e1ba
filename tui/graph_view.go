package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/insuretrack/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("GRAPH VIEW"))
	s.WriteString("\n\n")

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.graphDOT == "":
		s.WriteString("Generating graph...\n")
	default:
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(m.graphDOT))
	}

	s.WriteString("\n\n")

	// Help
	s.WriteString(m.renderGraphHelp())

	return s.String()
}

func (m Model) renderGraphHelp() string {
	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewDetail
		m.graphDOT = ""
		m.err = nil
	}

	return m, nil
}

// generateGraph draws the selected policyholder's policies.
func (m *Model) generateGraph() error {
	p, ok := m.store.Get(m.selectedID)
	if !ok {
		return nil
	}

	dot, err := viz.NewGraphGenerator(m.store).GenerateHolderGraph(context.Background(), p.PolicyholderName)
	if err != nil {
		return err
	}

	m.graphDOT = dot
	return nil
}
