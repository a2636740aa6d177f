package component

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrebassi/confnav/internal/adapters/tui/style"
)

// ConfirmResult is emitted when the dialog is answered.
type ConfirmResult struct {
	Confirmed bool
	Action    string
	Data      interface{}
}

// ConfirmDialog asks a yes/no question. It defaults to No.
type ConfirmDialog struct {
	title    string
	message  string
	action   string
	data     interface{}
	selected bool
	visible  bool
}

func NewConfirmDialog() ConfirmDialog {
	return ConfirmDialog{}
}

func (c ConfirmDialog) Init() tea.Cmd {
	return nil
}

// Show opens the dialog. action and data are echoed in the ConfirmResult.
func (c *ConfirmDialog) Show(title, message, action string, data interface{}) {
	c.title = title
	c.message = message
	c.action = action
	c.data = data
	c.selected = false
	c.visible = true
}

func (c *ConfirmDialog) Hide() {
	c.visible = false
}

func (c ConfirmDialog) IsVisible() bool {
	return c.visible
}

func (c ConfirmDialog) Update(msg tea.Msg) (ConfirmDialog, tea.Cmd) {
	if !c.visible {
		return c, nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch strings.ToLower(km.String()) {
	case "esc", "n":
		return c, c.answer(false)
	case "y":
		return c, c.answer(true)
	case "left", "right", "h", "l", "tab":
		c.selected = !c.selected
	case "enter":
		return c, c.answer(c.selected)
	}
	return c, nil
}

func (c *ConfirmDialog) answer(yes bool) tea.Cmd {
	c.visible = false
	res := ConfirmResult{Confirmed: yes, Action: c.action, Data: c.data}
	return func() tea.Msg { return res }
}

func (c ConfirmDialog) View() string {
	if !c.visible {
		return ""
	}

	active := lipgloss.NewStyle().
		Foreground(style.Background).
		Background(style.Primary).
		Bold(true).
		Padding(0, 2)
	inactive := lipgloss.NewStyle().
		Foreground(style.TextMuted).
		Padding(0, 2)

	yes, no := inactive.Render("Yes"), active.Render("No")
	if c.selected {
		yes, no = active.Render("Yes"), inactive.Render("No")
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		style.TitleStyle.Render(c.title),
		"",
		style.BaseStyle.Render(c.message),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no),
	)
	return style.ModalStyle.Render(body)
}
