package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bedrockmgr/bsmctl/internal/api"
	"github.com/bedrockmgr/bsmctl/internal/coordinator"
	"github.com/bedrockmgr/bsmctl/internal/observe"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenServers   Screen = "servers"
	ScreenDashboard Screen = "dashboard"
)

// Messages for screen transitions
type screenTransitionMsg struct {
	screen Screen
}

type goBackMsg struct{}

// snapshotMsg carries one coordinator update into the event loop
type snapshotMsg coordinator.Update

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	ServersModel   ServersModel
	DashboardModel DashboardModel

	// Shared application state
	Client *api.Client
	Coord  *coordinator.Coordinator

	// UI state
	Width  int
	Height int
}

// NewAppModel creates a new application model starting at the server list
func NewAppModel(client *api.Client, coord *coordinator.Coordinator) AppModel {
	return AppModel{
		CurrentScreen: ScreenServers,
		Client:        client,
		Coord:         coord,
		ServersModel:  NewServersModel(),
	}
}

// waitForUpdate blocks on the coordinator's update channel and feeds
// the next published snapshot into the event loop.
func waitForUpdate(coord *coordinator.Coordinator) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-coord.Updates()
		if !ok {
			return nil
		}
		return snapshotMsg(update)
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.ServersModel.Init(),
		waitForUpdate(m.Coord),
	)
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.ServersModel.Width = msg.Width
		m.ServersModel.Height = msg.Height
		m.DashboardModel.Width = msg.Width
		m.DashboardModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case snapshotMsg:
		// Snapshots feed every screen, then the wait is re-armed
		m.ServersModel.ApplySnapshot(msg.SourceID, msg.Snapshot)
		if m.CurrentScreen == ScreenDashboard {
			m.DashboardModel.ApplySnapshot(msg.SourceID, msg.Snapshot)
		}
		return m, waitForUpdate(m.Coord)

	case screenTransitionMsg:
		return m.transitionTo(msg.screen)

	case goBackMsg:
		return m.goBack()
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenServers:
		updated, c := m.ServersModel.Update(msg)
		m.ServersModel = updated.(ServersModel)
		cmd = c

		if m.ServersModel.QuitRequested {
			return m, tea.Quit
		}
		if sourceID := m.ServersModel.SelectedSource(); sourceID != "" {
			m.ServersModel.ClearSelection()
			return m.openDashboard(sourceID)
		}

	case ScreenDashboard:
		updated, c := m.DashboardModel.Update(msg)
		m.DashboardModel = updated.(DashboardModel)
		cmd = c

		if m.DashboardModel.IsBackRequested() {
			return m.goBack()
		}
	}

	return m, cmd
}

// openDashboard wires a dashboard to the selected snapshot source
func (m AppModel) openDashboard(sourceID string) (tea.Model, tea.Cmd) {
	snap := m.Coord.Store().Get(sourceID)

	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = ScreenDashboard
	m.DashboardModel = NewDashboardModel(m.Client, m.Coord.Registry(), sourceID, snap)
	m.DashboardModel.Width = m.Width
	m.DashboardModel.Height = m.Height
	return m, m.DashboardModel.Init()
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen

	var cmd tea.Cmd
	switch screen {
	case ScreenServers:
		m.ServersModel.Selected = ""
		cmd = m.ServersModel.Init()
	}
	return m, cmd
}

// goBack returns to the previous screen
func (m AppModel) goBack() (tea.Model, tea.Cmd) {
	switch m.CurrentScreen {
	case ScreenServers:
		return m, tea.Quit
	case ScreenDashboard:
		return m.transitionTo(ScreenServers)
	default:
		return m, tea.Quit
	}
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenServers:
		return m.ServersModel.View()
	case ScreenDashboard:
		return m.DashboardModel.View()
	default:
		return "Unknown screen"
	}
}

// serverDisplayName pulls the human name out of a snapshot, falling
// back to the source identifier.
func serverDisplayName(sourceID string, snap *observe.Snapshot) string {
	if name := snap.StringAttr(observe.AttributeTargetKey); name != "" {
		return name
	}
	return sourceID
}
