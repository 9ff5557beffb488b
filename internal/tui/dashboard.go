package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bedrockmgr/bsmctl/internal/card"
	"github.com/bedrockmgr/bsmctl/internal/invoke"
	"github.com/bedrockmgr/bsmctl/internal/observe"
)

// applyCompleteMsg signals that a card commit finished
type applyCompleteMsg struct {
	section DashSection
	err     error
}

// DashSection identifies one card panel on the dashboard
type DashSection int

const (
	SectionProperties DashSection = iota
	SectionAllowlist
	SectionPermissions
	SectionBackups
	SectionCommand
	sectionCount
)

func (s DashSection) String() string {
	switch s {
	case SectionProperties:
		return "Properties"
	case SectionAllowlist:
		return "Allowlist"
	case SectionPermissions:
		return "Permissions"
	case SectionBackups:
		return "Backups"
	case SectionCommand:
		return "Console"
	default:
		return "Unknown"
	}
}

// editMode tracks what the inline editor is doing
type editMode int

const (
	modeNormal editMode = iota
	modeEditText   // free text via textinput
	modeEditSelect // cycle through fixed options
)

// dashboardKeyMap defines key bindings for the dashboard
type dashboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Section key.Binding
	Edit    key.Binding
	Add     key.Binding
	Delete  key.Binding
	Apply   key.Binding
	Discard key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Section, k.Edit, k.Apply, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Section, k.Edit},
		{k.Add, k.Delete, k.Apply, k.Discard},
		{k.Back, k.Quit},
	}
}

// DashboardModel shows one server's state and stages edits against it
type DashboardModel struct {
	sourceID string
	snapshot *observe.Snapshot

	// Cards
	Properties  *card.PropertiesCard
	Allowlist   *card.AllowlistCard
	Permissions *card.PermissionsCard
	Restore     *card.RestoreCard
	Command     *card.CommandCard

	// Navigation state
	Section DashSection
	Cursor  int

	// Inline editor state
	Mode         editMode
	Input        textinput.Model
	EditKey      string
	EditOptions  []string
	OptionCursor int
	EditError    string

	// Result of the last apply, per section
	backRequested bool

	// UI state
	Width  int
	Height int
	Keys   dashboardKeyMap
	Help   help.Model
}

// NewDashboardModel wires cards for the given snapshot source
func NewDashboardModel(client card.ActionClient, registry observe.TargetLookup, sourceID string, snap *observe.Snapshot) DashboardModel {
	input := textinput.New()
	input.CharLimit = 64
	input.Width = 32

	keys := dashboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Section: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit/run"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Apply: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "apply"),
		),
		Discard: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "discard"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	m := DashboardModel{
		sourceID:    sourceID,
		Properties:  card.NewPropertiesCard(client, registry, sourceID),
		Allowlist:   card.NewAllowlistCard(client, registry, sourceID),
		Permissions: card.NewPermissionsCard(client, registry, sourceID),
		Restore:     card.NewRestoreCard(client, registry, sourceID, serverDisplayName(sourceID, snap)),
		Command:     card.NewCommandCard(client, registry, sourceID),
		Input:       input,
		Keys:        keys,
		Help:        help.New(),
	}
	m.ApplySnapshot(sourceID, snap)
	return m
}

// ApplySnapshot feeds a coordinator update into every card. Updates
// for other sources are ignored.
func (m *DashboardModel) ApplySnapshot(sourceID string, snap *observe.Snapshot) {
	if sourceID != m.sourceID {
		return
	}
	m.snapshot = snap
	m.Properties.Observe(snap)
	m.Allowlist.Observe(snap)
	m.Permissions.Observe(snap)
	m.Restore.Observe(snap)
	m.Command.Observe(snap)
}

// IsBackRequested reports whether the user asked to leave the dashboard
func (m DashboardModel) IsBackRequested() bool {
	return m.backRequested
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the dashboard
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case applyCompleteMsg:
		// Card state already carries the outcome; nothing extra to do
		return m, nil

	case tea.KeyMsg:
		if m.Mode != modeNormal {
			return m.updateEditor(msg)
		}
		return m.updateNormalMode(msg)
	}

	return m, nil
}

func (m DashboardModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Back):
		m.backRequested = true
		return m, nil

	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Section):
		m.Section = (m.Section + 1) % sectionCount
		m.Cursor = 0
		m.EditError = ""
		return m, nil

	case key.Matches(msg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case key.Matches(msg, m.Keys.Down):
		if m.Cursor < m.sectionRowCount()-1 {
			m.Cursor++
		}
		return m, nil

	case key.Matches(msg, m.Keys.Edit):
		return m.startEditing()

	case key.Matches(msg, m.Keys.Add):
		return m.startAdding()

	case key.Matches(msg, m.Keys.Delete):
		return m.removeCurrent()

	case key.Matches(msg, m.Keys.Apply):
		return m.applySection()

	case key.Matches(msg, m.Keys.Discard):
		return m.discardCurrent()
	}

	return m, nil
}

// sectionRowCount returns how many selectable rows the active panel has
func (m DashboardModel) sectionRowCount() int {
	switch m.Section {
	case SectionProperties:
		return len(m.Properties.Keys())
	case SectionAllowlist:
		return len(m.Allowlist.Players())
	case SectionPermissions:
		return len(m.Permissions.XUIDs())
	case SectionBackups:
		return len(m.Restore.Entries())
	case SectionCommand:
		return 1
	default:
		return 0
	}
}

// startEditing opens the inline editor for the selected row
func (m DashboardModel) startEditing() (tea.Model, tea.Cmd) {
	m.EditError = ""

	switch m.Section {
	case SectionProperties:
		keys := m.Properties.Keys()
		if m.Cursor >= len(keys) {
			return m, nil
		}
		propKey := keys[m.Cursor]
		spec, known := card.FieldSpecFor(propKey)
		current, _ := m.Properties.Value(propKey)

		if known && (spec.Type == card.FieldSelect || spec.Type == card.FieldBool) {
			options := spec.Options
			if spec.Type == card.FieldBool {
				options = []string{"true", "false"}
			}
			m.Mode = modeEditSelect
			m.EditKey = propKey
			m.EditOptions = options
			m.OptionCursor = indexOf(options, current)
			return m, nil
		}

		m.Mode = modeEditText
		m.EditKey = propKey
		m.Input.SetValue(current)
		m.Input.Focus()
		return m, textinput.Blink

	case SectionPermissions:
		xuids := m.Permissions.XUIDs()
		if m.Cursor >= len(xuids) {
			return m, nil
		}
		xuid := xuids[m.Cursor]
		level, _ := m.Permissions.Level(xuid)
		m.Mode = modeEditSelect
		m.EditKey = xuid
		m.EditOptions = card.PermissionLevels
		m.OptionCursor = indexOf(card.PermissionLevels, level)
		return m, nil

	case SectionBackups:
		entries := m.Restore.Entries()
		if m.Cursor >= len(entries) {
			return m, nil
		}
		label := entries[m.Cursor].Label
		return m, m.applyCmd(SectionBackups, func(ctx context.Context) (func() error, error) {
			return m.Restore.PrepareRestore(ctx, label)
		})

	case SectionCommand:
		m.Mode = modeEditText
		m.EditKey = ""
		m.Input.SetValue("")
		m.Input.Placeholder = "say Hello"
		m.Input.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// startAdding opens the add editor for list panels
func (m DashboardModel) startAdding() (tea.Model, tea.Cmd) {
	m.EditError = ""

	switch m.Section {
	case SectionAllowlist:
		m.Mode = modeEditText
		m.EditKey = "add-player"
		m.Input.SetValue("")
		m.Input.Placeholder = "Gamertag"
		m.Input.Focus()
		return m, textinput.Blink

	case SectionPermissions:
		m.Mode = modeEditText
		m.EditKey = "add-xuid"
		m.Input.SetValue("")
		m.Input.Placeholder = "XUID"
		m.Input.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// removeCurrent stages a removal on list panels
func (m DashboardModel) removeCurrent() (tea.Model, tea.Cmd) {
	if m.Section != SectionAllowlist {
		return m, nil
	}
	players := m.Allowlist.Players()
	if m.Cursor >= len(players) {
		return m, nil
	}
	if err := m.Allowlist.Remove(players[m.Cursor]); err != nil {
		m.EditError = err.Error()
	}
	if m.Cursor >= m.sectionRowCount() && m.Cursor > 0 {
		m.Cursor--
	}
	return m, nil
}

// discardCurrent drops the staged edit on the selected property
func (m DashboardModel) discardCurrent() (tea.Model, tea.Cmd) {
	if m.Section != SectionProperties {
		return m, nil
	}
	keys := m.Properties.Keys()
	if m.Cursor < len(keys) {
		m.Properties.Discard(keys[m.Cursor])
	}
	return m, nil
}

// applySection commits the active panel's staged changes
func (m DashboardModel) applySection() (tea.Model, tea.Cmd) {
	switch m.Section {
	case SectionProperties:
		if !m.Properties.HasChanges() {
			return m, nil
		}
		return m, m.applyCmd(SectionProperties, m.Properties.PrepareCommit)

	case SectionAllowlist:
		if !m.Allowlist.HasChanges() {
			return m, nil
		}
		return m, m.applyCmd(SectionAllowlist, m.Allowlist.PrepareCommit)

	case SectionPermissions:
		if !m.Permissions.HasChanges() {
			return m, nil
		}
		return m, m.applyCmd(SectionPermissions, m.Permissions.PrepareCommit)
	}

	return m, nil
}

// applyCmd stages a card action. prepare runs here, on the event
// loop, where it snapshots the payload and marks the card in flight;
// the tea.Cmd goroutine then carries only the prebuilt network call,
// so it never touches card state that Observe mutates.
func (m DashboardModel) applyCmd(section DashSection, prepare func(context.Context) (func() error, error)) tea.Cmd {
	do, err := prepare(context.Background())
	if err != nil {
		return func() tea.Msg {
			return applyCompleteMsg{section: section, err: err}
		}
	}
	return func() tea.Msg {
		return applyCompleteMsg{section: section, err: do()}
	}
}

// updateEditor handles key input while the inline editor is open
func (m DashboardModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Mode = modeNormal
		m.Input.Blur()
		m.EditError = ""
		return m, nil

	case "enter":
		return m.commitEditor()
	}

	switch m.Mode {
	case modeEditSelect:
		switch msg.String() {
		case "left", "h", "up", "k":
			if m.OptionCursor > 0 {
				m.OptionCursor--
			}
		case "right", "l", "down", "j":
			if m.OptionCursor < len(m.EditOptions)-1 {
				m.OptionCursor++
			}
		}
		return m, nil

	case modeEditText:
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// commitEditor stages (or runs) the edited value
func (m DashboardModel) commitEditor() (tea.Model, tea.Cmd) {
	var err error
	var cmd tea.Cmd

	switch m.Section {
	case SectionProperties:
		value := m.Input.Value()
		if m.Mode == modeEditSelect {
			value = m.EditOptions[m.OptionCursor]
		}
		err = m.Properties.Stage(m.EditKey, value)

	case SectionAllowlist:
		err = m.Allowlist.Add(strings.TrimSpace(m.Input.Value()))

	case SectionPermissions:
		if m.EditKey == "add-xuid" {
			err = m.Permissions.AddPlayer(strings.TrimSpace(m.Input.Value()), "member")
		} else {
			err = m.Permissions.SetLevel(m.EditKey, m.EditOptions[m.OptionCursor])
		}

	case SectionCommand:
		command := strings.TrimSpace(m.Input.Value())
		cmd = m.applyCmd(SectionCommand, func(ctx context.Context) (func() error, error) {
			return m.Command.PrepareSend(ctx, command)
		})
	}

	if err != nil {
		m.EditError = err.Error()
		return m, nil
	}

	m.Mode = modeNormal
	m.Input.Blur()
	m.EditError = ""
	return m, cmd
}

// View renders the dashboard
func (m DashboardModel) View() string {
	content := m.buildContent()

	// Help text using bubbles/help
	helpText := m.Help.View(m.Keys)

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m DashboardModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle(serverDisplayName(m.sourceID, m.snapshot)))
	b.WriteString("\n")

	if m.snapshot == nil {
		b.WriteString(WarningBoxStyle.Render("⚠ This server is no longer reported by the manager."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	switch m.Section {
	case SectionProperties:
		b.WriteString(m.renderPropertiesSection())
	case SectionAllowlist:
		b.WriteString(m.renderAllowlistSection())
	case SectionPermissions:
		b.WriteString(m.renderPermissionsSection())
	case SectionBackups:
		b.WriteString(m.renderBackupsSection())
	case SectionCommand:
		b.WriteString(m.renderCommandSection())
	}

	if m.EditError != "" {
		b.WriteString("\n")
		b.WriteString(RenderError(m.EditError))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStatusBar shows the live process attributes and the panel tabs
func (m DashboardModel) renderStatusBar() string {
	snap := m.snapshot
	degraded := false
	if value, ok := snap.Attr("degraded"); ok {
		degraded, _ = value.(bool)
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("  Status:  %s", RenderStatus(snap.StringAttr("status"), degraded)))
	if snap.StringAttr("status") == "running" {
		if pid, ok := snap.Attr("pid"); ok {
			rows = append(rows, fmt.Sprintf("  PID:     %v", pid))
		}
		if uptime := snap.StringAttr("uptime"); uptime != "" {
			rows = append(rows, fmt.Sprintf("  Uptime:  %s", uptime))
		}
	}
	if version := snap.StringAttr("installed_version"); version != "" {
		rows = append(rows, fmt.Sprintf("  Version: %s", version))
	}
	if world := snap.StringAttr("world_name"); world != "" {
		rows = append(rows, fmt.Sprintf("  World:   %s", world))
	}

	var tabs []string
	for s := DashSection(0); s < sectionCount; s++ {
		label := s.String()
		if s == m.Section {
			tabs = append(tabs, SelectedMenuItemStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, MenuItemStyle.Render(label))
		}
	}

	return strings.Join(rows, "\n") + "\n\n" + strings.Join(tabs, " ")
}

// renderOperationState shows the card's in-flight/terminal status line
func renderOperationState(state invoke.OperationState) string {
	switch state.Phase {
	case invoke.PhaseInFlight:
		return SpinnerStyle.Render("… " + state.Message)
	case invoke.PhaseSucceeded:
		return SuccessBoxStyle.Render("✓ " + state.Message)
	case invoke.PhaseFailed:
		return ErrorBoxStyle.Render("✗ " + state.Message)
	default:
		return ""
	}
}

func (m DashboardModel) renderPropertiesSection() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle("  Server properties"))
	b.WriteString("\n\n")

	if err := m.Properties.IngestError(); err != nil {
		b.WriteString(WarningBoxStyle.Render("⚠ " + err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	changes := m.Properties.ChangeSet()
	for i, propKey := range m.Properties.Keys() {
		value, _ := m.Properties.Value(propKey)
		label := propKey
		if spec, ok := card.FieldSpecFor(propKey); ok {
			label = spec.Label
		}

		marker := "  "
		if _, pending := changes[propKey]; pending {
			marker = DegradedStyle.Render("* ")
		}

		row := fmt.Sprintf("%s%-28s %s", marker, label, value)
		if m.Mode != modeNormal && m.EditKey == propKey {
			b.WriteString(m.renderInlineEditor(label))
		} else {
			b.WriteString(RenderMenuItem(row, i == m.Cursor))
		}
		b.WriteString("\n")
	}

	if m.Properties.HasChanges() {
		b.WriteString("\n")
		b.WriteString(SelectedMenuItemStyle.Render(fmt.Sprintf("  [ Apply %d changes (s) ]", len(changes))))
		b.WriteString("\n")
	}

	if status := renderOperationState(m.Properties.State()); status != "" {
		b.WriteString("\n" + status + "\n")
	}
	return b.String()
}

func (m DashboardModel) renderAllowlistSection() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle("  Players allowed to join"))
	b.WriteString("\n\n")

	if err := m.Allowlist.IngestError(); err != nil {
		b.WriteString(WarningBoxStyle.Render("⚠ " + err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	players := m.Allowlist.Players()
	if len(players) == 0 {
		b.WriteString(MenuItemStyle.Render("  (empty; press a to add a player)"))
		b.WriteString("\n")
	}
	for i, player := range players {
		b.WriteString(RenderMenuItem(player, i == m.Cursor))
		b.WriteString("\n")
	}

	if m.Mode != modeNormal && m.EditKey == "add-player" {
		b.WriteString("\n")
		b.WriteString(m.renderInlineEditor("Add player"))
		b.WriteString("\n")
	}

	if m.Allowlist.HasChanges() {
		b.WriteString("\n")
		b.WriteString(SelectedMenuItemStyle.Render("  [ Apply changes (s) ]"))
		b.WriteString("\n")
	}

	if status := renderOperationState(m.Allowlist.State()); status != "" {
		b.WriteString("\n" + status + "\n")
	}
	return b.String()
}

func (m DashboardModel) renderPermissionsSection() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle("  Player permission levels"))
	b.WriteString("\n\n")

	if err := m.Permissions.IngestError(); err != nil {
		b.WriteString(WarningBoxStyle.Render("⚠ " + err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	xuids := m.Permissions.XUIDs()
	if len(xuids) == 0 {
		b.WriteString(MenuItemStyle.Render("  (no per-player permissions; press a to add)"))
		b.WriteString("\n")
	}
	for i, xuid := range xuids {
		level, _ := m.Permissions.Level(xuid)
		name := m.Permissions.Name(xuid)
		if name == "" {
			name = xuid
		}

		if m.Mode == modeEditSelect && m.EditKey == xuid {
			b.WriteString(m.renderInlineEditor(name))
		} else {
			b.WriteString(RenderMenuItem(fmt.Sprintf("%-24s %s", name, level), i == m.Cursor))
		}
		b.WriteString("\n")
	}

	if m.Mode != modeNormal && m.EditKey == "add-xuid" {
		b.WriteString("\n")
		b.WriteString(m.renderInlineEditor("Add XUID"))
		b.WriteString("\n")
	}

	if m.Permissions.HasChanges() {
		b.WriteString("\n")
		b.WriteString(SelectedMenuItemStyle.Render("  [ Apply changes (s) ]"))
		b.WriteString("\n")
	}

	if status := renderOperationState(m.Permissions.State()); status != "" {
		b.WriteString("\n" + status + "\n")
	}
	return b.String()
}

func (m DashboardModel) renderBackupsSection() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle("  Press enter to restore the selected backup"))
	b.WriteString("\n\n")

	if err := m.Restore.IngestError(); err != nil {
		b.WriteString(WarningBoxStyle.Render("⚠ " + err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	entries := m.Restore.Entries()
	if len(entries) == 0 {
		b.WriteString(MenuItemStyle.Render("  (no backups recorded)"))
		b.WriteString("\n")
	}
	for i, entry := range entries {
		b.WriteString(RenderMenuItem(entry.Label, i == m.Cursor))
		b.WriteString("\n")
	}

	if status := renderOperationState(m.Restore.State()); status != "" {
		b.WriteString("\n" + status + "\n")
	}
	return b.String()
}

func (m DashboardModel) renderCommandSection() string {
	var b strings.Builder
	b.WriteString(RenderSubtitle("  Send a console command to the server"))
	b.WriteString("\n\n")

	if m.Mode == modeEditText {
		b.WriteString(m.renderInlineEditor("Command"))
	} else {
		b.WriteString(MenuItemStyle.Render("  (press enter to type a command)"))
	}
	b.WriteString("\n")

	if status := renderOperationState(m.Command.State()); status != "" {
		b.WriteString("\n" + status + "\n")
	}
	return b.String()
}

// renderInlineEditor shows the active text input or option cycler
func (m DashboardModel) renderInlineEditor(label string) string {
	var inner string
	switch m.Mode {
	case modeEditText:
		inner = fmt.Sprintf("%s: %s", label, m.Input.View())
	case modeEditSelect:
		var options []string
		for i, option := range m.EditOptions {
			if i == m.OptionCursor {
				options = append(options, ExpandedFieldStyle().Render("▸"+option))
			} else {
				options = append(options, option)
			}
		}
		inner = fmt.Sprintf("%s: %s", label, strings.Join(options, "  "))
	}
	return InlineEditorStyle().Render(inner)
}

func indexOf(options []string, want string) int {
	for i, option := range options {
		if option == want {
			return i
		}
	}
	return 0
}
