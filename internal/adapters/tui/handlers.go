// Package tui provides the terminal user interface for confnav.
// This file contains the per-screen key handlers.
package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrebassi/confnav/internal/usecase"
)

// handleNamespaceKey handles keys on the namespace selector.
func (m *Model) handleNamespaceKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()
	case key.Matches(msg, m.keys.Back):
		if m.nsList.HasFilter() {
			m.nsList.ClearSearch()
		}
		return nil
	case key.Matches(msg, m.keys.New):
		return m.nsForm.Show(nil)
	case key.Matches(msg, m.keys.Edit):
		ns := m.nsList.Selected()
		if ns == nil {
			return nil
		}
		return m.nsForm.Show(ns)
	case key.Matches(msg, m.keys.Favorite):
		return m.toggleFavourite()
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m.loadNamespaces()
	}

	var cmd tea.Cmd
	m.nsList, cmd = m.nsList.Update(msg)
	return cmd
}

// handleBrowserKey handles keys on the group/entry browser.
func (m *Model) handleBrowserKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.handleBack()
	case key.Matches(msg, m.keys.NextPanel), key.Matches(msg, m.keys.PrevPanel):
		if m.panel == panelGroups {
			m.focusPanel(panelConfigs)
		} else {
			m.focusPanel(panelGroups)
		}
		return nil
	case key.Matches(msg, m.keys.Refresh):
		if m.panel == panelGroups {
			m.groups.SetLoading(true)
			return m.loadGroups(m.browser.LoadGroupsRequest())
		}
		return m.issueConfigs(m.browser.Refresh())
	case key.Matches(msg, m.keys.New):
		return m.openCreate()
	}

	if m.panel == panelGroups {
		return m.handleGroupsKey(msg)
	}
	return m.handleConfigsKey(msg)
}

func (m *Model) handleGroupsKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Enter) || key.Matches(msg, m.keys.Right) {
		return m.handleEnter()
	}
	var cmd tea.Cmd
	m.groups, cmd = m.groups.Update(msg)
	return cmd
}

func (m *Model) handleConfigsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.View):
		return m.handleEnter()
	case key.Matches(msg, m.keys.Edit):
		if sel := m.table.Selected(); sel != nil {
			return m.openEntry(sel.Key(), true)
		}
		return nil
	case key.Matches(msg, m.keys.Watch):
		return m.togglePin()
	case key.Matches(msg, m.keys.NextPage):
		return m.issueConfigs(m.browser.NextPage())
	case key.Matches(msg, m.keys.PrevPage):
		req, err := m.browser.PrevPage()
		if errors.Is(err, usecase.ErrPageOutOfRange) && msg.String() != "[" {
			// left on the first page moves back to the groups
			m.focusPanel(panelGroups)
			return nil
		}
		return m.issueConfigs(req, err)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// handleBack leaves the browser for the namespace selector.
func (m *Model) handleBack() tea.Cmd {
	if m.view != ViewBrowser {
		return nil
	}
	if m.panel == panelConfigs {
		m.focusPanel(panelGroups)
		return nil
	}
	m.closeBrowser()
	m.view = ViewNamespaces
	m.loading = true
	return m.loadNamespaces()
}

// handleEnter acts on the selection of the focused list.
func (m *Model) handleEnter() tea.Cmd {
	switch m.view {
	case ViewNamespaces:
		ns := m.nsList.Selected()
		if ns == nil {
			return nil
		}
		return m.openNamespace(ns.ID)

	case ViewBrowser:
		if m.panel == panelGroups {
			group := m.groups.Selected()
			if group == "" {
				return nil
			}
			m.focusPanel(panelConfigs)
			if group == m.browser.Pagination().SelectedGroup() {
				return nil
			}
			return m.selectGroup(group)
		}
		sel := m.table.Selected()
		if sel == nil {
			return m.setStatus("No entry selected", 2*time.Second)
		}
		return m.openEntry(sel.Key(), false)
	}
	return nil
}
