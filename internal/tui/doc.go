// Package tui implements the interactive dashboard for bsmctl.
//
// This package provides a full-screen terminal interface for watching and
// controlling Bedrock servers through a manager instance. Built using the
// Bubble Tea framework, it follows the Elm architecture with immutable
// state updates and a clean Model-Update-View pattern.
//
// # Architecture
//
// The TUI is organized into two main screens:
//   - Servers: Pick a server from the manager's live list
//   - Dashboard: View the server's state and stage edits against it
//
// All screens use a unified container pattern (RenderApplicationContainer)
// for consistent layout with header, content area, and a context-sensitive
// footer.
//
// Live data arrives through the coordinator: each published snapshot is
// delivered into the event loop as a snapshotMsg, and the wait on the
// update channel is re-armed after every delivery. The dashboard never
// talks to the manager directly for reads; it only ever sees snapshots.
//
// Edits are staged through the card package. Each dashboard panel wraps
// one card; panels show pending markers for staged values, keep their
// per-panel Apply button, and run commits off the event loop as tea.Cmd
// functions. A snapshot that arrives mid-edit updates the panel without
// dropping the staged values.
//
// # Framework Components
//
// The TUI leverages Bubble Tea framework components throughout:
//   - bubbles/spinner: Loading indicators
//   - bubbles/textinput: Inline text entry
//   - bubbles/list: Server cards
//   - bubbles/key: Declarative key bindings
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	app := tui.NewAppModel(client, coord)
//	program := tea.NewProgram(app, tea.WithAltScreen())
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// The coordinator must already be running; the TUI only consumes its
// update channel.
package tui
