package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrebassi/confnav/internal/adapters/tui/keys"
	"github.com/andrebassi/confnav/internal/adapters/tui/style"
	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/usecase"
)

// ConfigFilterChanged is emitted when the dataId filter is committed.
type ConfigFilterChanged struct {
	Filter string
}

// ConfigTable lists one page of a group's entries with the page strip
// underneath.
type ConfigTable struct {
	entries     []entity.ConfigEntry
	cursor      int
	focused     bool
	loading     bool
	group       string
	strip       []usecase.PageItem
	currentPage int
	totalCount  int
	watched     map[entity.ConfigKey]bool
	searchInput textinput.Model
	searching   bool
	filter      string
	width       int
	height      int
	keys        keys.KeyMap
}

func NewConfigTable() ConfigTable {
	ti := textinput.New()
	ti.Placeholder = "filter by dataId..."
	ti.CharLimit = 128
	ti.Width = 30

	return ConfigTable{
		searchInput: ti,
		currentPage: 1,
		watched:     map[entity.ConfigKey]bool{},
		keys:        keys.DefaultKeyMap(),
	}
}

func (t ConfigTable) Update(msg tea.Msg) (ConfigTable, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}

	if t.searching {
		switch km.Type {
		case tea.KeyEnter, tea.KeyTab:
			t.searching = false
			t.searchInput.Blur()
			return t, t.commitFilter(strings.TrimSpace(t.searchInput.Value()))
		case tea.KeyEsc:
			t.searching = false
			t.searchInput.Blur()
			t.searchInput.SetValue(t.filter)
			return t, nil
		}
		var cmd tea.Cmd
		t.searchInput, cmd = t.searchInput.Update(km)
		return t, cmd
	}

	switch {
	case key.Matches(km, t.keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(km, t.keys.Down):
		if t.cursor < len(t.entries)-1 {
			t.cursor++
		}
	case key.Matches(km, t.keys.Home):
		t.cursor = 0
	case key.Matches(km, t.keys.End):
		t.cursor = max(0, len(t.entries)-1)
	case key.Matches(km, t.keys.Search):
		t.searching = true
		t.searchInput.SetValue(t.filter)
		t.searchInput.CursorEnd()
		t.searchInput.Focus()
		return t, textinput.Blink
	case key.Matches(km, t.keys.Clear):
		if t.filter != "" {
			t.searchInput.SetValue("")
			return t, t.commitFilter("")
		}
	}
	return t, nil
}

func (t *ConfigTable) commitFilter(filter string) tea.Cmd {
	if filter == t.filter {
		return nil
	}
	t.filter = filter
	t.cursor = 0
	return func() tea.Msg { return ConfigFilterChanged{Filter: filter} }
}

// SetPage shows a page of entries and its position in the listing.
func (t *ConfigTable) SetPage(group string, entries []entity.ConfigEntry, strip []usecase.PageItem, current, totalCount int) {
	if group != t.group {
		t.cursor = 0
	}
	t.group = group
	t.entries = entity.CloneEntries(entries)
	t.strip = strip
	t.currentPage = current
	t.totalCount = totalCount
	if t.cursor >= len(t.entries) {
		t.cursor = max(0, len(t.entries)-1)
	}
}

// SetWatched marks the keys flagged in the listing.
func (t *ConfigTable) SetWatched(keys []entity.ConfigKey) {
	t.watched = make(map[entity.ConfigKey]bool, len(keys))
	for _, k := range keys {
		t.watched[k] = true
	}
}

// SetFilter sets the filter without emitting a change.
func (t *ConfigTable) SetFilter(filter string) {
	t.filter = filter
	t.searchInput.SetValue(filter)
}

func (t *ConfigTable) SetFocused(f bool) { t.focused = f }
func (t *ConfigTable) SetLoading(l bool) { t.loading = l }

func (t *ConfigTable) SetSize(width, height int) {
	t.width = width
	t.height = height
}

func (t ConfigTable) Filter() string    { return t.filter }
func (t ConfigTable) IsSearching() bool { return t.searching }
func (t ConfigTable) Entries() int      { return len(t.entries) }

// Selected returns the entry under the cursor, or nil.
func (t ConfigTable) Selected() *entity.ConfigEntry {
	if t.cursor < 0 || t.cursor >= len(t.entries) {
		return nil
	}
	e := t.entries[t.cursor].Clone()
	return &e
}

func (t ConfigTable) View() string {
	var b strings.Builder

	title := "CONFIGS"
	if t.group != "" {
		title = fmt.Sprintf("CONFIGS · %s", t.group)
	}
	if t.focused {
		b.WriteString(style.PanelTitleStyle.Render("◆ " + title))
	} else {
		b.WriteString(style.TableHeaderStyle.Render("  " + title))
	}
	b.WriteString("\n")

	if t.searching {
		searchStyle := lipgloss.NewStyle().
			Foreground(style.Text).
			Background(style.Surface).
			Padding(0, 1)
		b.WriteString(searchStyle.Render("/ " + t.searchInput.View()))
	} else if t.filter != "" {
		filterStyle := lipgloss.NewStyle().Foreground(style.Secondary).Bold(true)
		b.WriteString(filterStyle.Render("Filter: " + t.filter))
		b.WriteString(style.HelpDescStyle.Render(" (c to clear)"))
	}
	b.WriteString("\n")

	if t.group == "" {
		b.WriteString(style.StatusMuted.Render("  Select a group"))
		return b.String()
	}
	if len(t.entries) == 0 {
		if t.loading {
			b.WriteString(style.StatusMuted.Render("  Loading..."))
		} else {
			b.WriteString(style.StatusMuted.Render("  No entries"))
		}
		b.WriteString("\n\n")
		b.WriteString(RenderPageStrip(t.strip, t.currentPage, t.totalCount))
		return b.String()
	}

	typeW := 11
	idW := max(16, (t.width-typeW-8)/2)
	descW := max(8, t.width-idW-typeW-8)

	header := fmt.Sprintf("  %s %s %s", style.PadRight("DATA ID", idW), style.PadRight("TYPE", typeW), "DESCRIPTION")
	b.WriteString(style.TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for i, e := range t.entries {
		mark := " "
		if t.watched[e.Key()] {
			mark = style.FavoriteStyle.Render("●")
		}
		typ := e.Type.Normalize()
		row := fmt.Sprintf("%s %s %s",
			style.PadRight(e.DataID, idW),
			style.GetTypeStyle(string(typ)).Render(style.PadRight(string(typ), typeW)),
			style.Truncate(e.Description, descW))

		if i == t.cursor && t.focused {
			b.WriteString(style.SelectedRowStyle.Render(style.CursorStyle.Render(">") + mark + row))
		} else {
			b.WriteString(" " + mark + row)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderPageStrip(t.strip, t.currentPage, t.totalCount))
	return b.String()
}
