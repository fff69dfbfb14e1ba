// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides interactive full-screen interface for policy operations
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/insuretrack/storage"
	"github.com/harperreed/insuretrack/store"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewGraph
	ViewConfirmDelete
	ViewConfirmClear
)

// Tab is one of the top-level screens of the list view
type Tab int

const (
	TabPolicies Tab = iota
	TabDashboard
	TabAlerts
	TabSettings
)

var tabNames = []string{"Policies", "Dashboard", "Alerts", "Settings"}

// Syncer pushes local changes to the cloud backend. *charm.Client implements it.
type Syncer interface {
	Sync() error
}

// Model is the main bubbletea model
type Model struct {
	store   *store.Store
	storage *storage.Adapter
	syncer  Syncer

	viewMode ViewMode
	tab      Tab

	// List view state
	selectedRow int
	searching   bool
	searchInput textinput.Model
	sortOrder   store.SortOrder

	// Detail view state
	selectedID string

	// Edit view state
	formInputs []textinput.Model
	focusIndex int
	formErrors map[string]string

	// Graph view state
	graphDOT string

	// Status line shown under the list (delete, save, sync results)
	statusMessage string
	syncing       bool

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model. adapter and syncer may be nil; the settings
// tab then hides storage health and the sync action.
func NewModel(s *store.Store, adapter *storage.Adapter, syncer Syncer) Model {
	search := textinput.New()
	search.Placeholder = "Search name, number or mobile"
	search.CharLimit = 100

	return Model{
		store:       s,
		storage:     adapter,
		syncer:      syncer,
		viewMode:    ViewList,
		tab:         TabPolicies,
		searchInput: search,
		sortOrder:   store.SortByName,
		width:       80,
		height:      24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case SyncCompleteMsg:
		return m.handleSyncComplete(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	case ViewConfirmClear:
		return m.renderConfirmClearView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Text entry swallows every other key
	typing := m.viewMode == ViewEdit || (m.viewMode == ViewList && m.searching)
	if !typing && msg.String() == "q" {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewConfirmClear:
		return m.handleConfirmClearKeys(msg)
	}

	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
