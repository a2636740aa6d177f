package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrebassi/confnav/internal/adapters/tui/style"
	"github.com/andrebassi/confnav/internal/domain/entity"
)

// NamespaceFormSubmitted is emitted when the form is confirmed.
type NamespaceFormSubmitted struct {
	Name        string
	Description string
	Editing     bool
}

// NamespaceFormClosed is emitted when the form is dismissed.
type NamespaceFormClosed struct{}

const (
	nsFieldName = iota
	nsFieldDescription
	nsFieldCount
)

// NamespaceForm creates a namespace or edits an existing one. When editing
// the name is fixed.
type NamespaceForm struct {
	inputs  [nsFieldCount]textinput.Model
	focus   int
	editing bool
	visible bool
	errMsg  string
	width   int
}

func NewNamespaceForm() NamespaceForm {
	var f NamespaceForm
	for i := range f.inputs {
		ti := textinput.New()
		ti.CharLimit = 128
		ti.Width = 40
		f.inputs[i] = ti
	}
	f.inputs[nsFieldName].Placeholder = "namespace name"
	f.inputs[nsFieldDescription].Placeholder = "optional description"
	return f
}

func (f NamespaceForm) Init() tea.Cmd {
	return nil
}

// Show opens the form. A nil namespace opens it in create mode.
func (f *NamespaceForm) Show(ns *entity.Namespace) tea.Cmd {
	f.visible = true
	f.errMsg = ""
	f.editing = ns != nil
	f.inputs[nsFieldName].SetValue("")
	f.inputs[nsFieldDescription].SetValue("")
	if ns != nil {
		f.inputs[nsFieldName].SetValue(ns.DisplayName())
		f.inputs[nsFieldDescription].SetValue(ns.Description)
		return f.setFocus(nsFieldDescription)
	}
	return f.setFocus(nsFieldName)
}

func (f *NamespaceForm) Hide() {
	f.visible = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f NamespaceForm) IsVisible() bool { return f.visible }
func (f NamespaceForm) IsEditing() bool { return f.editing }

// SetError shows err under the inputs, keeping the form open.
func (f *NamespaceForm) SetError(msg string) { f.errMsg = msg }

func (f *NamespaceForm) SetWidth(width int) { f.width = width }

func (f *NamespaceForm) setFocus(i int) tea.Cmd {
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return textinput.Blink
}

func (f *NamespaceForm) nextField(step int) tea.Cmd {
	next := (f.focus + step + nsFieldCount) % nsFieldCount
	if f.editing && next == nsFieldName {
		next = nsFieldDescription
	}
	return f.setFocus(next)
}

func (f NamespaceForm) Update(msg tea.Msg) (NamespaceForm, tea.Cmd) {
	if !f.visible {
		return f, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	switch km.String() {
	case "esc":
		f.Hide()
		return f, func() tea.Msg { return NamespaceFormClosed{} }
	case "tab", "down":
		return f, f.nextField(1)
	case "shift+tab", "up":
		return f, f.nextField(-1)
	case "enter", "ctrl+s":
		if km.String() == "enter" && f.focus == nsFieldName && !f.editing {
			return f, f.nextField(1)
		}
		name := strings.TrimSpace(f.inputs[nsFieldName].Value())
		if name == "" {
			f.errMsg = "name is required"
			return f, f.setFocus(nsFieldName)
		}
		sub := NamespaceFormSubmitted{
			Name:        name,
			Description: strings.TrimSpace(f.inputs[nsFieldDescription].Value()),
			Editing:     f.editing,
		}
		return f, func() tea.Msg { return sub }
	}

	if f.editing && f.focus == nsFieldName {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(km)
	f.errMsg = ""
	return f, cmd
}

func (f NamespaceForm) View() string {
	if !f.visible {
		return ""
	}

	title := "New Namespace"
	if f.editing {
		title = "Edit Namespace"
	}

	labels := [nsFieldCount]string{"Name", "Description"}
	rows := make([]string, 0, nsFieldCount)
	for i, in := range f.inputs {
		label := style.InputLabelStyle.Render(labels[i])
		if i == f.focus {
			label = style.FocusedLabelStyle.Render(labels[i])
		}
		field := in.View()
		if f.editing && i == nsFieldName {
			field = style.StatusMuted.Render(in.Value())
		}
		rows = append(rows, label+field)
	}

	parts := []string{style.TitleStyle.Render(title), ""}
	parts = append(parts, rows...)
	if f.errMsg != "" {
		parts = append(parts, "", style.StatusError.Render(f.errMsg))
	}
	parts = append(parts, "", style.HelpDescStyle.Render("tab: next field • enter: save • esc: cancel"))

	return style.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
