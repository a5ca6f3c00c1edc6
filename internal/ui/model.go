package ui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/weather-now/internal/history"
	"github.com/ngmaloney/weather-now/internal/lookup"
)

// AppState represents the current screen of the application
type AppState int

const (
	StateSearch AppState = iota // Search box with the lookup outcome below it
	StateRecent                 // List of recent searches
)

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int

	// Search
	searchInput textinput.Model
	spinner     spinner.Model

	// Lookup
	controller *lookup.Controller
	lookup     lookup.State
	generation uint64 // generation of the lookup whose outcome is awaited/shown

	// Recent searches (nil history disables the feature)
	history      *history.Repository
	historyLimit int
	recentList   list.Model
	notice       string

	logger *slog.Logger
}

// Option configures a Model
type Option func(*Model)

// WithHistory enables the recent searches list backed by repo
func WithHistory(repo *history.Repository, limit int) Option {
	return func(m *Model) {
		m.history = repo
		m.historyLimit = limit
	}
}

// WithLogger sets the model's logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewModel creates a new application model driving controller
func NewModel(controller *lookup.Controller, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter city name..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		state:        StateSearch,
		searchInput:  ti,
		spinner:      s,
		controller:   controller,
		lookup:       controller.State(),
		historyLimit: 10,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle window size
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		if m.state == StateRecent {
			m.recentList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil
	}

	// Handle custom messages
	switch msg := msg.(type) {
	case lookupResolvedMsg:
		if !msg.committed || msg.generation != m.generation {
			// A newer lookup has been started since; its outcome is the one to show
			return m, nil
		}
		m.lookup = msg.state
		if m.lookup.IsSucceeded() && m.history != nil {
			return m, recordSearch(m.history, *m.lookup.Location)
		}
		return m, nil

	case searchRecordedMsg:
		if msg.err != nil {
			m.logger.Warn("recording recent search failed", "error", msg.err)
		}
		return m, nil

	case recentLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("loading recent searches failed", "error", msg.err)
			m.notice = "Could not load recent searches"
			return m, nil
		}
		if len(msg.entries) == 0 {
			m.notice = "No recent searches yet"
			return m, nil
		}
		m.notice = ""
		m.recentList = createRecentList(msg.entries, m.width-4, m.height-6)
		m.state = StateRecent
		return m, nil

	case spinner.TickMsg:
		if !m.lookup.IsLoading() {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Handle keyboard input
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		// Global keys
		if keyMsg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.state {
		case StateSearch:
			return m.handleSearchInput(keyMsg)
		case StateRecent:
			return m.handleRecentList(keyMsg)
		}
	}

	// Update appropriate component based on state
	switch m.state {
	case StateSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case StateRecent:
		m.recentList, cmd = m.recentList.Update(msg)
	}

	return m, cmd
}

// handleSearchInput handles keyboard input in search state
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		return m.submit(m.searchInput.Value())

	case tea.KeyTab:
		if m.history == nil {
			return m, nil
		}
		return m, loadRecent(m.history, m.historyLimit)

	case tea.KeyEsc:
		return m, tea.Quit
	}

	m.notice = ""
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleRecentList handles keyboard input in recent searches state
func (m Model) handleRecentList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		m.state = StateSearch
		m.searchInput.Focus()
		if item, ok := m.recentList.SelectedItem().(recentItem); ok {
			// the stored coordinates are reused; the name alone can be ambiguous
			m.searchInput.SetValue(item.entry.Location.Name)
			return m.started(m.controller.StartLocation(item.entry.Location))
		}
		return m, textinput.Blink

	case tea.KeyEsc:
		m.state = StateSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	}

	m.recentList, cmd = m.recentList.Update(msg)
	return m, cmd
}

// submit starts a lookup for query. Blank queries are ignored.
func (m Model) submit(query string) (tea.Model, tea.Cmd) {
	ticket, ok := m.controller.Start(query)
	return m.started(ticket, ok)
}

// started shows the loading state of a lookup begun on the controller and
// schedules its resolution.
func (m Model) started(ticket lookup.Ticket, ok bool) (tea.Model, tea.Cmd) {
	if !ok {
		return m, nil
	}

	m.generation = ticket.Generation
	m.lookup = m.controller.State()
	m.notice = ""
	m.logger.Debug("submitted lookup", "query", ticket.Query, "generation", ticket.Generation)

	return m, tea.Batch(m.spinner.Tick, resolveLookup(m.controller, ticket))
}

// Lookup returns the lookup state currently shown
func (m Model) Lookup() lookup.State {
	return m.lookup
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateSearch:
		return m.viewSearch()
	case StateRecent:
		return m.viewRecent()
	}

	return ""
}

// viewSearch renders the search box and the outcome of the current lookup
func (m Model) viewSearch() string {
	title := titleStyle.Render("☀ Weather Now")
	subtitle := mutedStyle.Render("Current conditions from Open-Meteo")

	searchBox := searchBoxStyle.Render(m.searchInput.View())

	var sections []string
	sections = append(sections, title)
	sections = append(sections, subtitle)
	sections = append(sections, "")
	sections = append(sections, searchBox)

	if outcome := m.viewOutcome(); outcome != "" {
		sections = append(sections, "")
		sections = append(sections, outcome)
	}

	if m.notice != "" {
		sections = append(sections, "")
		sections = append(sections, mutedStyle.Render(m.notice))
	}

	helpItems := []string{"Enter: Search"}
	if m.history != nil {
		helpItems = append(helpItems, "Tab: Recent searches")
	}
	helpItems = append(helpItems, "Esc/Ctrl+C: Quit")
	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(strings.Join(helpItems, " • ")))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewOutcome renders exactly one of: spinner, error line, or result card
func (m Model) viewOutcome() string {
	switch m.lookup.Status {
	case lookup.StatusLoading:
		return fmt.Sprintf("%s Loading...", m.spinner.View())
	case lookup.StatusFailed:
		return errorStyle.Render("✗ " + m.lookup.Message)
	case lookup.StatusSucceeded:
		return RenderCard(*m.lookup.Location, *m.lookup.Weather)
	}
	return ""
}

// viewRecent renders the recent searches list
func (m Model) viewRecent() string {
	help := helpStyle.Render("↑/↓: Navigate • Enter: Look up • Esc: Back to search • Ctrl+C: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, m.recentList.View(), help)
}
