package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrebassi/confnav/internal/adapters/tui/keys"
	"github.com/andrebassi/confnav/internal/adapters/tui/style"
)

// HelpEntry is one line of the help overlay.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpPanel is the keyboard shortcut overlay toggled with '?'.
type HelpPanel struct {
	entries [][]HelpEntry
	short   help.Model
	keys    keys.KeyMap
	visible bool
	width   int
	height  int
}

// NewHelpPanel creates a hidden help panel listing the default key map.
func NewHelpPanel() HelpPanel {
	h := help.New()
	h.Styles.ShortKey = style.HelpKeyStyle
	h.Styles.ShortDesc = style.HelpDescStyle
	h.Styles.ShortSeparator = style.HelpDescStyle

	return HelpPanel{
		entries: defaultHelpEntries(),
		short:   h,
		keys:    keys.DefaultKeyMap(),
	}
}

func defaultHelpEntries() [][]HelpEntry {
	columns := keys.DefaultKeyMap().FullHelp()
	entries := make([][]HelpEntry, 0, len(columns))
	for _, col := range columns {
		group := make([]HelpEntry, 0, len(col))
		for _, b := range col {
			h := b.Help()
			group = append(group, HelpEntry{Key: h.Key, Desc: h.Desc})
		}
		entries = append(entries, group)
	}
	return entries
}

func (h *HelpPanel) Toggle() { h.visible = !h.visible }
func (h *HelpPanel) Show()   { h.visible = true }
func (h *HelpPanel) Hide()   { h.visible = false }

func (h HelpPanel) IsVisible() bool { return h.visible }

func (h *HelpPanel) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.short.Width = width
}

// ShortHelp renders the one-line hint shown under the main view.
func (h HelpPanel) ShortHelp() string {
	return h.short.ShortHelpView(h.keys.ShortHelp())
}

func (h HelpPanel) View() string {
	if !h.visible {
		return ""
	}

	columns := make([]string, 0, len(h.entries))
	for _, group := range h.entries {
		var b strings.Builder
		for _, e := range group {
			b.WriteString(style.HelpKeyStyle.Render(style.PadRight(e.Key, 11)))
			b.WriteString(style.HelpDescStyle.Render(e.Desc))
			b.WriteString("\n")
		}
		columns = append(columns, lipgloss.NewStyle().MarginRight(3).Render(b.String()))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		style.TitleStyle.Render("Keyboard Shortcuts"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
		style.StatusMuted.Render("Press ? or esc to close"),
	)
	return style.ModalStyle.Render(body)
}
