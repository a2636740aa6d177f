// Package tui provides the terminal user interface for confnav.
// This file contains the main View function that renders the application UI.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/andrebassi/confnav/internal/adapters/tui/style"
)

// View renders the current application state to a string.
//
// The rendering order (back to front):
// 1. Loading state before the first namespace list arrives
// 2. Main content: namespace selector or browser
// 3. Overlays: confirm dialog, namespace form, help, entry modal
func (m Model) View() string {
	if m.loading && m.view == ViewNamespaces && len(m.nsList.Filtered()) == 0 {
		loadingMsg := m.spinner.View() + " Loading namespaces..."
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, loadingMsg)
	}

	if overlay := m.renderOverlay(); overlay != "" {
		return overlay
	}

	contentHeight := m.height - 2 // border top/bottom
	contentWidth := m.width - 2   // border left/right

	var content string
	switch m.view {
	case ViewNamespaces:
		content = m.nsList.View()
	case ViewBrowser:
		content = m.renderBrowser(contentWidth)
	}
	return m.renderMainContent(content, contentWidth, contentHeight)
}

// renderBrowser lays out the group list on the left and the entry table on
// the right.
func (m Model) renderBrowser(contentWidth int) string {
	leftWidth := max(20, contentWidth/4)
	rightWidth := contentWidth - leftWidth - 3

	return lipgloss.JoinVertical(lipgloss.Left,
		m.breadcrumb.View(),
		"",
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			lipgloss.NewStyle().Width(leftWidth).Render(m.groups.View()),
			lipgloss.NewStyle().Foreground(style.Surface).Render(" │ "),
			lipgloss.NewStyle().Width(rightWidth).Render(m.table.View()),
		),
	)
}

// renderOverlay returns the topmost visible overlay, or "" when none is.
func (m Model) renderOverlay() string {
	place := func(hPos, vPos lipgloss.Position, s string) string {
		return lipgloss.Place(
			m.width, m.height,
			hPos, vPos,
			s,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(style.Background),
		)
	}

	switch {
	case m.confirm.IsVisible():
		return place(lipgloss.Center, lipgloss.Center, m.confirm.View())
	case m.nsForm.IsVisible():
		return place(lipgloss.Center, lipgloss.Center, m.nsForm.View())
	case m.help.IsVisible():
		return place(lipgloss.Center, lipgloss.Center, m.help.View())
	case m.modal.IsVisible():
		return place(lipgloss.Left, lipgloss.Top, m.modal.View())
	}
	return ""
}

// renderMainContent wraps content in a rounded border with the status bar
// below it.
func (m Model) renderMainContent(content string, contentWidth, contentHeight int) string {
	boxHeight := contentHeight - 1 // status bar

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Surface).
		Width(contentWidth).
		Height(boxHeight)

	statusStyle := lipgloss.NewStyle().
		Foreground(style.Warning).
		Bold(true).
		Padding(0, 2).
		Width(contentWidth + 2)

	return lipgloss.JoinVertical(lipgloss.Left,
		boxStyle.Render(content),
		statusStyle.Render(m.statusLine()),
	)
}

func (m Model) statusLine() string {
	status := m.statusMsg
	if m.busy() {
		status = m.spinner.View() + " " + status
	}
	if status != "" {
		return status
	}
	if m.view == ViewBrowser && m.browser != nil {
		p := m.browser.Pagination()
		if p.SelectedGroup() != "" {
			return style.StatusMuted.Render(fmt.Sprintf("%s · page %d/%d · %d entries",
				p.SelectedGroup(), p.CurrentPage(), max(1, p.TotalPages()), p.TotalCount()))
		}
	}
	return m.help.ShortHelp()
}
