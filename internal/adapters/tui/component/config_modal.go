package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrebassi/confnav/internal/adapters/tui/keys"
	"github.com/andrebassi/confnav/internal/adapters/tui/style"
	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/usecase"
)

// ConfigModalClosed is emitted when the modal is dismissed. Dirty reports
// unsaved changes to the draft.
type ConfigModalClosed struct {
	Dirty bool
}

// ConfigSaveRequested is emitted when the operator saves the draft.
type ConfigSaveRequested struct {
	Draft entity.ConfigEntry
}

// ConfigEditRequested is emitted from the read-only view to reopen the entry
// for editing.
type ConfigEditRequested struct {
	Key entity.ConfigKey
}

// ConfigCopied is emitted after the content was copied to the clipboard.
type ConfigCopied struct {
	Key entity.ConfigKey
	Err error
}

const (
	fieldDataID = iota
	fieldGroup
	fieldDescription
	fieldContent
	fieldCount
)

// ConfigModal shows a single entry. In viewing mode the content scrolls in
// a viewport; in editing and creating modes it is a form with a content
// editor. Group and dataId are only editable while creating.
type ConfigModal struct {
	mode     usecase.ModalMode
	original entity.ConfigEntry
	cfgType  entity.ConfigType

	viewport viewport.Model
	inputs   [fieldDescription + 1]textinput.Model
	content  textarea.Model
	focus    int

	visible       bool
	submitting    bool
	remoteChanged bool
	warning       string
	errMsg        string
	copied        bool
	width         int
	height        int
	keys          keys.KeyMap
}

func NewConfigModal() ConfigModal {
	m := ConfigModal{
		viewport: viewport.New(60, 20),
		keys:     keys.DefaultKeyMap(),
	}

	placeholders := [...]string{"app.yaml", "DEFAULT_GROUP", "optional description"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 48
		ti.Placeholder = placeholders[i]
		m.inputs[i] = ti
	}

	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = true
	ta.Placeholder = "content"
	m.content = ta
	return m
}

func (m ConfigModal) Init() tea.Cmd {
	return nil
}

// Show opens the modal on entry in mode.
func (m *ConfigModal) Show(mode usecase.ModalMode, entry entity.ConfigEntry) tea.Cmd {
	m.mode = mode
	m.original = entry.Clone()
	m.cfgType = entry.Type.Normalize()
	m.visible = true
	m.submitting = false
	m.remoteChanged = false
	m.errMsg = ""
	m.copied = false

	m.inputs[fieldDataID].SetValue(entry.DataID)
	m.inputs[fieldGroup].SetValue(entry.Group)
	m.inputs[fieldDescription].SetValue(entry.Description)
	m.content.SetValue(entry.Content)
	m.validate()
	m.resize()

	switch mode {
	case usecase.ModalViewing:
		m.viewport.SetContent(numberLines(entry.Content))
		m.viewport.GotoTop()
		m.blurAll()
		return nil
	case usecase.ModalCreating:
		if entry.Group == "" {
			return m.setFocus(fieldGroup)
		}
		return m.setFocus(fieldDataID)
	default:
		return m.setFocus(fieldContent)
	}
}

func (m *ConfigModal) Hide() {
	m.visible = false
	m.mode = usecase.ModalClosed
	m.blurAll()
}

func (m ConfigModal) IsVisible() bool          { return m.visible }
func (m ConfigModal) Mode() usecase.ModalMode  { return m.mode }
func (m ConfigModal) Key() entity.ConfigKey    { return m.original.Key() }
func (m ConfigModal) Warning() string          { return m.warning }
func (m ConfigModal) RemoteChanged() bool      { return m.remoteChanged }
func (m ConfigModal) Type() entity.ConfigType  { return m.cfgType }
func (m ConfigModal) Submitting() bool         { return m.submitting }
func (m *ConfigModal) SetSubmitting(b bool)    { m.submitting = b }
func (m *ConfigModal) SetError(msg string)     { m.errMsg = msg }
func (m *ConfigModal) SetRemoteChanged(b bool) { m.remoteChanged = b }

func (m *ConfigModal) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.resize()
}

func (m *ConfigModal) resize() {
	w := max(40, m.width-10)
	h := max(5, m.height-16)
	m.viewport.Width = w
	m.viewport.Height = h
	m.content.SetWidth(w)
	m.content.SetHeight(max(3, h-4))
	for i := range m.inputs {
		m.inputs[i].Width = max(20, w-16)
	}
}

// Draft returns the entry as currently edited.
func (m ConfigModal) Draft() entity.ConfigEntry {
	d := m.original.Clone()
	if m.mode == usecase.ModalCreating {
		d.DataID = strings.TrimSpace(m.inputs[fieldDataID].Value())
		d.Group = strings.TrimSpace(m.inputs[fieldGroup].Value())
	}
	d.Description = m.inputs[fieldDescription].Value()
	d.Content = m.content.Value()
	d.Type = m.cfgType
	return d
}

// Dirty reports whether the draft differs from what was loaded.
func (m ConfigModal) Dirty() bool {
	if m.mode != usecase.ModalEditing && m.mode != usecase.ModalCreating {
		return false
	}
	orig := m.original.Clone()
	orig.Type = orig.Type.Normalize()
	return m.Draft() != orig
}

func (m *ConfigModal) editable(field int) bool {
	switch m.mode {
	case usecase.ModalCreating:
		return true
	case usecase.ModalEditing:
		return field == fieldDescription || field == fieldContent
	}
	return false
}

func (m *ConfigModal) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.content.Blur()
}

func (m *ConfigModal) setFocus(field int) tea.Cmd {
	m.blurAll()
	m.focus = field
	if field == fieldContent {
		return m.content.Focus()
	}
	return m.inputs[field].Focus()
}

func (m *ConfigModal) cycleFocus(step int) tea.Cmd {
	next := m.focus
	for i := 0; i < fieldCount; i++ {
		next = (next + step + fieldCount) % fieldCount
		if m.editable(next) {
			break
		}
	}
	return m.setFocus(next)
}

func (m *ConfigModal) validate() {
	m.warning = ""
	if err := usecase.ValidateContent(m.cfgType, m.content.Value()); err != nil {
		m.warning = err.Error()
	}
}

func (m ConfigModal) Update(msg tea.Msg) (ConfigModal, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.mode == usecase.ModalViewing {
		return m.updateViewing(km)
	}
	return m.updateEditing(km)
}

func (m ConfigModal) updateViewing(km tea.KeyMsg) (ConfigModal, tea.Cmd) {
	switch {
	case key.Matches(km, m.keys.Back), km.String() == "q":
		m.Hide()
		return m, func() tea.Msg { return ConfigModalClosed{} }
	case key.Matches(km, m.keys.Edit):
		k := m.original.Key()
		return m, func() tea.Msg { return ConfigEditRequested{Key: k} }
	case key.Matches(km, m.keys.Copy):
		k := m.original.Key()
		err := CopyToClipboard(m.original.Content)
		m.copied = err == nil
		return m, func() tea.Msg { return ConfigCopied{Key: k, Err: err} }
	case key.Matches(km, m.keys.Home):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(km, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil
	}

	m.copied = false
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(km)
	return m, cmd
}

func (m ConfigModal) updateEditing(km tea.KeyMsg) (ConfigModal, tea.Cmd) {
	switch {
	case key.Matches(km, m.keys.Back):
		dirty := m.Dirty()
		return m, func() tea.Msg { return ConfigModalClosed{Dirty: dirty} }
	case key.Matches(km, m.keys.Save):
		if m.submitting {
			return m, nil
		}
		draft := m.Draft()
		return m, func() tea.Msg { return ConfigSaveRequested{Draft: draft} }
	case key.Matches(km, m.keys.CycleType):
		m.cfgType = m.cfgType.Next()
		m.validate()
		return m, nil
	case key.Matches(km, m.keys.NextPanel):
		return m, m.cycleFocus(1)
	case key.Matches(km, m.keys.PrevPanel):
		return m, m.cycleFocus(-1)
	}

	var cmd tea.Cmd
	if m.focus == fieldContent {
		m.content, cmd = m.content.Update(km)
		m.validate()
	} else if m.editable(m.focus) {
		if km.Type == tea.KeyEnter {
			return m, m.cycleFocus(1)
		}
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(km)
	}
	m.errMsg = ""
	return m, cmd
}

func numberLines(content string) string {
	if content == "" {
		return style.StatusMuted.Render("(empty)")
	}
	lines := strings.Split(content, "\n")
	width := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(style.StatusMuted.Render(fmt.Sprintf("%*d │ ", width, i+1)))
		b.WriteString(l)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m ConfigModal) View() string {
	if !m.visible {
		return ""
	}

	var body string
	if m.mode == usecase.ModalViewing {
		body = m.viewViewing()
	} else {
		body = m.viewEditing()
	}
	return style.ModalStyle.Width(max(44, m.width-6)).Render(body)
}

func (m ConfigModal) header(title string) string {
	t := style.TitleStyle.Render(title)
	typ := style.GetTypeStyle(string(m.cfgType)).Render("[" + string(m.cfgType) + "]")
	return t + " " + typ
}

func (m ConfigModal) viewViewing() string {
	e := m.original
	parts := []string{
		m.header(e.DataID),
		style.SubtitleStyle.Render(fmt.Sprintf("%s / %s", e.Namespace, e.Group)),
	}
	if e.Description != "" {
		parts = append(parts, style.BaseStyle.Render(e.Description))
	}
	if m.remoteChanged {
		parts = append(parts, style.StatusPending.Render("⚠ changed remotely since it was opened"))
	}
	parts = append(parts, "", m.viewport.View(), "")

	hint := "↑/↓ scroll • e: edit • y: copy • esc: close"
	if m.copied {
		hint = style.StatusRunning.Render("Copied to clipboard!") + style.HelpDescStyle.Render("  "+hint)
	} else {
		hint = style.HelpDescStyle.Render(hint)
	}
	parts = append(parts, hint)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m ConfigModal) viewEditing() string {
	title := "Edit " + m.original.DataID
	if m.mode == usecase.ModalCreating {
		title = "New Config"
	}

	parts := []string{m.header(title), ""}

	labels := [...]string{"Data ID", "Group", "Description"}
	for i, in := range m.inputs {
		label := style.InputLabelStyle.Render(labels[i])
		if i == m.focus {
			label = style.FocusedLabelStyle.Render(labels[i])
		}
		field := in.View()
		if !m.editable(i) {
			field = style.StatusMuted.Render(in.Value())
		}
		parts = append(parts, label+field)
	}

	typeLabel := style.InputLabelStyle.Render("Format")
	parts = append(parts, typeLabel+style.GetTypeStyle(string(m.cfgType)).Render(string(m.cfgType))+style.HelpDescStyle.Render("  (ctrl+t to change)"))

	contentLabel := "Content"
	if m.focus == fieldContent {
		contentLabel = style.FocusedLabelStyle.Render(contentLabel)
	} else {
		contentLabel = style.InputLabelStyle.Render(contentLabel)
	}
	parts = append(parts, "", contentLabel, m.content.View())

	if m.remoteChanged {
		parts = append(parts, style.StatusPending.Render("⚠ changed remotely since it was opened"))
	}
	if m.warning != "" {
		parts = append(parts, style.StatusPending.Render("⚠ "+m.warning))
	}
	if m.errMsg != "" {
		parts = append(parts, style.StatusError.Render(m.errMsg))
	}

	hint := "tab: next field • ctrl+s: save • esc: cancel"
	if m.submitting {
		hint = "saving..."
	}
	parts = append(parts, "", style.HelpDescStyle.Render(hint))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
