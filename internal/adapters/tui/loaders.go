// Package tui provides the terminal user interface for confnav.
// This file contains the commands that talk to the configuration store.
// Each one runs off the event loop and returns a typed message that
// Update applies.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrebassi/confnav/internal/usecase"
)

// loadNamespaces fetches the namespace list. Only the latest load is
// applied.
func (m *Model) loadNamespaces() tea.Cmd {
	uc := m.namespaces
	ticket := m.nsGate.Begin(usecase.ClassNamespaces)
	return func() tea.Msg {
		namespaces, err := uc.ListNamespaces(context.Background())
		return namespacesLoadedMsg{ticket: ticket, namespaces: namespaces, err: err}
	}
}

// saveNamespace creates or updates a namespace.
func (m *Model) saveNamespace(name, description string, editing bool) tea.Cmd {
	uc := m.namespaces
	return func() tea.Msg {
		err := uc.SaveNamespace(context.Background(), name, description)
		return namespaceSavedMsg{name: name, editing: editing, err: err}
	}
}

// loadGroups performs a group list request for the current session.
func (m *Model) loadGroups(req usecase.GroupsRequest) tea.Cmd {
	b := m.browser
	return func() tea.Msg {
		return groupsLoadedMsg{browser: b, result: b.FetchGroups(context.Background(), req)}
	}
}

// loadConfigs performs a configs page request.
func (m *Model) loadConfigs(req usecase.ConfigsRequest) tea.Cmd {
	b := m.browser
	return func() tea.Msg {
		return configsLoadedMsg{browser: b, result: b.FetchConfigs(context.Background(), req)}
	}
}

// loadDetail fetches one entry for the modal.
func (m *Model) loadDetail(req usecase.DetailRequest) tea.Cmd {
	b := m.browser
	return func() tea.Msg {
		return detailLoadedMsg{browser: b, result: b.FetchDetail(context.Background(), req)}
	}
}

// submit writes the draft.
func (m *Model) submit(req usecase.SubmitRequest) tea.Cmd {
	b := m.browser
	return func() tea.Msg {
		return submitDoneMsg{browser: b, result: b.ExecuteSubmit(context.Background(), req)}
	}
}

// waitForWatchEvent blocks until the watcher reports a change.
func (m *Model) waitForWatchEvent() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchStoppedMsg{}
		}
		return watchEventMsg{event: ev}
	}
}

// clearStatusAfter returns a command that clears the status message
// after the specified duration.
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
