package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bedrockmgr/bsmctl/internal/observe"
)

// serversKeyMap defines key bindings for the server list screen
type serversKeyMap struct {
	Navigate key.Binding
	Select   key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k serversKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Navigate, k.Select, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k serversKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Navigate, k.Select, k.Quit},
	}
}

// serverItem is one server card in the list
type serverItem struct {
	sourceID string
	snapshot *observe.Snapshot
}

// Implement list.Item interface
func (s serverItem) FilterValue() string {
	return serverDisplayName(s.sourceID, s.snapshot)
}

// Title returns the server name for list display
func (s serverItem) Title() string {
	return serverDisplayName(s.sourceID, s.snapshot)
}

// Description returns server details for list display
func (s serverItem) Description() string {
	version := s.snapshot.StringAttr("installed_version")
	if version == "" {
		version = "unknown"
	}
	return fmt.Sprintf("%s • v%s", s.snapshot.StringAttr("status"), version)
}

// serverDelegate is a custom list delegate for rendering server cards
type serverDelegate struct {
	width int
}

func (d serverDelegate) Height() int { return 8 } // Card height including borders

func (d serverDelegate) Spacing() int { return 1 } // Spacing between cards

func (d serverDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d serverDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	server, ok := item.(serverItem)
	if !ok {
		return
	}

	snap := server.snapshot
	selected := index == m.Index()
	name := serverDisplayName(server.sourceID, snap)

	version := snap.StringAttr("installed_version")
	if version == "" {
		version = "unknown"
	}
	world := snap.StringAttr("world_name")
	if world == "" {
		world = "unknown"
	}
	degraded := false
	if value, ok := snap.Attr("degraded"); ok {
		degraded, _ = value.(bool)
	}

	var content strings.Builder
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + name))
	} else {
		content.WriteString("  " + name)
	}
	content.WriteString("\n\n")

	content.WriteString(fmt.Sprintf("  Version: %s\n", version))
	content.WriteString(fmt.Sprintf("  World:   %s\n", world))
	content.WriteString(fmt.Sprintf("  Status:  %s", RenderStatus(snap.StringAttr("status"), degraded)))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	cardWidth := d.width - 6 // 2 for margin-left, 4 for border + padding
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}
	cardStyle = cardStyle.Width(cardWidth)

	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// ServersModel represents the server selection screen state
type ServersModel struct {
	// Snapshot state, keyed by source identifier
	snapshots map[string]*observe.Snapshot

	ServerList    list.Model
	Selected      string
	QuitRequested bool

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Keys    serversKeyMap
	Help    help.Model
	waiting bool
}

// NewServersModel creates a new server list screen model
func NewServersModel() ServersModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	delegate := serverDelegate{width: MinTerminalWidth}
	serverList := list.New([]list.Item{}, delegate, 0, 0)
	serverList.Title = "Servers"
	serverList.SetShowStatusBar(false)
	serverList.SetShowHelp(false)
	serverList.SetFilteringEnabled(false)

	keys := serversKeyMap{
		Navigate: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑/↓", "navigate"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return ServersModel{
		snapshots:  make(map[string]*observe.Snapshot),
		ServerList: serverList,
		Spinner:    s,
		Keys:       keys,
		Help:       help.New(),
		waiting:    true,
	}
}

// ApplySnapshot folds one coordinator update into the list. A nil
// snapshot removes the server.
func (m *ServersModel) ApplySnapshot(sourceID string, snap *observe.Snapshot) {
	if snap == nil {
		delete(m.snapshots, sourceID)
	} else {
		m.snapshots[sourceID] = snap
	}
	m.waiting = false
	m.rebuildList()
}

func (m *ServersModel) rebuildList() {
	sourceIDs := make([]string, 0, len(m.snapshots))
	for sourceID := range m.snapshots {
		sourceIDs = append(sourceIDs, sourceID)
	}
	sort.Strings(sourceIDs)

	items := make([]list.Item, 0, len(sourceIDs))
	for _, sourceID := range sourceIDs {
		items = append(items, serverItem{sourceID: sourceID, snapshot: m.snapshots[sourceID]})
	}
	m.ServerList.SetItems(items)
}

// SelectedSource returns the chosen source identifier, or "" when no
// selection has been made yet.
func (m ServersModel) SelectedSource() string {
	return m.Selected
}

// ClearSelection resets the selection after the app has acted on it
func (m *ServersModel) ClearSelection() {
	m.Selected = ""
}

// Init initializes the server list screen
func (m ServersModel) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update handles messages for the server list screen
func (m ServersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Select):
			if item, ok := m.ServerList.SelectedItem().(serverItem); ok {
				m.Selected = item.sourceID
			}
			return m, nil

		case key.Matches(msg, m.Keys.Quit):
			m.QuitRequested = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.ServerList, cmd = m.ServerList.Update(msg)
	return m, cmd
}

// View renders the server list screen
func (m ServersModel) View() string {
	content := m.buildContent()

	// Help text using bubbles/help
	helpText := m.Help.View(m.Keys)

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m ServersModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Servers"))
	b.WriteString("\n")

	if m.waiting {
		b.WriteString(fmt.Sprintf("\n  %s Waiting for the first refresh...\n", m.Spinner.View()))
		return b.String()
	}

	if len(m.snapshots) == 0 {
		b.WriteString(RenderSubtitle("  No servers configured on this manager."))
		b.WriteString("\n\n")
		b.WriteString(MenuItemStyle.Render("Install one with 'bsmctl install <name>'."))
		b.WriteString("\n")
		return b.String()
	}

	listHeight := m.Height - 10
	if listHeight < 10 {
		listHeight = 10
	}
	m.ServerList.SetSize(m.Width-6, listHeight)
	b.WriteString(m.ServerList.View())
	return b.String()
}
