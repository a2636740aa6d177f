// Package style holds the colour palette, lipgloss styles and text helpers
// shared by every TUI component.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Palette.
var (
	Primary    = lipgloss.Color("#7D56F4")
	Secondary  = lipgloss.Color("#43BF6D")
	Success    = lipgloss.Color("#04B575")
	Warning    = lipgloss.Color("#FFB86C")
	Error      = lipgloss.Color("#FF5555")
	Muted      = lipgloss.Color("#626262")
	Background = lipgloss.Color("#1A1A2E")
	Surface    = lipgloss.Color("#2D2D44")
	Text       = lipgloss.Color("#E0E0E0")
	TextMuted  = lipgloss.Color("#8B8B9E")
	Accent     = lipgloss.Color("#8BE9FD")
)

var (
	BaseStyle = lipgloss.NewStyle().Foreground(Text)

	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(TextMuted).
				Bold(true)

	CursorStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().Background(Surface)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface).
			Padding(0, 1)

	ActivePanelStyle = PanelStyle.
				BorderForeground(Primary)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	StatusRunning = lipgloss.NewStyle().Foreground(Success)
	StatusPending = lipgloss.NewStyle().Foreground(Warning)
	StatusError   = lipgloss.NewStyle().Foreground(Error).Bold(true)
	StatusMuted   = lipgloss.NewStyle().Foreground(TextMuted)

	FavoriteStyle = lipgloss.NewStyle().Foreground(Warning)

	BreadcrumbStyle       = lipgloss.NewStyle().Foreground(TextMuted)
	BreadcrumbActiveStyle = lipgloss.NewStyle().Foreground(Text).Bold(true)

	HelpKeyStyle  = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	HelpDescStyle = lipgloss.NewStyle().Foreground(TextMuted)

	InputLabelStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Width(12)

	FocusedLabelStyle = InputLabelStyle.
				Foreground(Primary).
				Bold(true)

	PageStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	PageCurrentStyle = lipgloss.NewStyle().
				Foreground(Background).
				Background(Primary).
				Bold(true).
				Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
)

// GetTypeStyle returns the colour used for a content format label.
func GetTypeStyle(configType string) lipgloss.Style {
	switch strings.ToLower(configType) {
	case "yaml", "json":
		return StatusRunning
	case "properties":
		return lipgloss.NewStyle().Foreground(Accent)
	case "xml", "html":
		return StatusPending
	default:
		return StatusMuted
	}
}

// RenderWithWidth renders content with s, fixed to width cells.
func RenderWithWidth(s lipgloss.Style, content string, width int) string {
	if width <= 0 {
		return s.Render(content)
	}
	return s.Width(width).Render(PadRight(content, width))
}

// Truncate shortens s to width display cells, ending with "..." when
// there is room for it.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// PadRight cuts or pads s to exactly width display cells.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, ""), width)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// Indent prefixes every line of s with n spaces.
func Indent(s string, n int) string {
	pad := spaces(n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
