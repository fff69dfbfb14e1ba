// ABOUTME: TUI settings tab with storage health, SMS status and cloud sync
// ABOUTME: Sync runs in the background and reports back through SyncCompleteMsg
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	settingsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Underline(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	syncingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
)

// SyncCompleteMsg is sent when a sync operation completes.
type SyncCompleteMsg struct {
	Error error
}

func (m Model) renderSettingsView() string {
	var s strings.Builder

	s.WriteString(settingsHeaderStyle.Render("Storage"))
	s.WriteString("\n\n")
	if m.storage == nil {
		s.WriteString(statusStyle.Render("  Storage details unavailable"))
		s.WriteString("\n")
	} else {
		health := m.storage.Health()
		if health.Healthy {
			s.WriteString("  " + okStyle.Render("✓ "+health.Message) + "\n")
		} else {
			s.WriteString("  " + errorStyle.Render("✗ "+health.Message) + "\n")
		}
		s.WriteString(fmt.Sprintf("  Used: %s\n", humanize.Bytes(uint64(health.BytesUsed))))
	}

	stats := m.store.Stats()
	s.WriteString(fmt.Sprintf("  Policies: %d\n", stats.TotalPolicies))
	if stats.LastUpdated != nil {
		s.WriteString(fmt.Sprintf("  Last updated: %s (%s)\n",
			stats.LastUpdated.Local().Format("Jan 2, 2006 15:04"), humanize.Time(*stats.LastUpdated)))
	}

	if m.storage != nil {
		s.WriteString("\n")
		s.WriteString(settingsHeaderStyle.Render("SMS"))
		s.WriteString("\n\n")
		cfg := m.storage.LoadSMSConfig()
		switch {
		case cfg.Enabled && cfg.Configured():
			s.WriteString("  " + okStyle.Render("✓ Enabled") + fmt.Sprintf(" from %s\n", cfg.FromNumber))
		case cfg.Enabled:
			s.WriteString("  " + errorStyle.Render("✗ Enabled but not configured") + "\n")
		default:
			s.WriteString("  Disabled\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(settingsHeaderStyle.Render("Cloud Sync"))
	s.WriteString("\n\n")
	switch {
	case m.syncer == nil:
		s.WriteString(statusStyle.Render("  Sync is not available for this backend"))
	case m.syncing:
		s.WriteString("  " + syncingStyle.Render("⟳ Syncing..."))
	default:
		s.WriteString("  Press u to sync now")
	}
	s.WriteString("\n")

	return s.String()
}

func (m Model) startSync() (tea.Model, tea.Cmd) {
	if m.syncer == nil || m.syncing {
		return m, nil
	}
	m.syncing = true
	m.statusMessage = ""
	syncer := m.syncer
	return m, func() tea.Msg {
		return SyncCompleteMsg{Error: syncer.Sync()}
	}
}

func (m Model) handleSyncComplete(msg SyncCompleteMsg) (tea.Model, tea.Cmd) {
	m.syncing = false
	if msg.Error != nil {
		m.statusMessage = "Sync failed: " + msg.Error.Error()
		return m, nil
	}
	// Pull in anything the sync brought down
	m.store.Reload()
	m.statusMessage = "Sync complete"
	return m, nil
}
