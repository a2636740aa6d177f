package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrebassi/confnav/internal/adapters/tui/keys"
	"github.com/andrebassi/confnav/internal/adapters/tui/style"
)

// GroupList is the left panel of the browser: the groups of the open
// namespace, with the active one marked.
type GroupList struct {
	groups  []string
	cursor  int
	active  string
	focused bool
	loading bool
	width   int
	height  int
	keys    keys.KeyMap
}

func NewGroupList() GroupList {
	return GroupList{keys: keys.DefaultKeyMap()}
}

func (g GroupList) Update(msg tea.Msg) (GroupList, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return g, nil
	}
	switch {
	case key.Matches(km, g.keys.Up):
		if g.cursor > 0 {
			g.cursor--
		}
	case key.Matches(km, g.keys.Down):
		if g.cursor < len(g.groups)-1 {
			g.cursor++
		}
	case key.Matches(km, g.keys.Home):
		g.cursor = 0
	case key.Matches(km, g.keys.End):
		g.cursor = max(0, len(g.groups)-1)
	}
	return g, nil
}

// SetGroups replaces the list, keeping the cursor on the active group.
func (g *GroupList) SetGroups(groups []string) {
	g.groups = append([]string(nil), groups...)
	g.cursor = 0
	for i, name := range g.groups {
		if name == g.active {
			g.cursor = i
		}
	}
}

func (g *GroupList) SetActive(group string) { g.active = group }
func (g *GroupList) SetFocused(f bool)      { g.focused = f }
func (g *GroupList) SetLoading(l bool)      { g.loading = l }

func (g *GroupList) SetSize(width, height int) {
	g.width = width
	g.height = height
}

// Selected returns the group under the cursor.
func (g GroupList) Selected() string {
	if g.cursor < 0 || g.cursor >= len(g.groups) {
		return ""
	}
	return g.groups[g.cursor]
}

func (g GroupList) Len() int { return len(g.groups) }

func (g GroupList) View() string {
	var b strings.Builder

	title := fmt.Sprintf("GROUPS (%d)", len(g.groups))
	if g.focused {
		b.WriteString(style.PanelTitleStyle.Render("◆ " + title))
	} else {
		b.WriteString(style.TableHeaderStyle.Render("  " + title))
	}
	b.WriteString("\n\n")

	if len(g.groups) == 0 {
		if g.loading {
			b.WriteString(style.StatusMuted.Render("  Loading..."))
		} else {
			b.WriteString(style.StatusMuted.Render("  No groups"))
		}
		return b.String()
	}

	nameW := max(8, g.width-4)
	rows := max(3, g.height-4)
	start, end := visibleWindow(g.cursor, len(g.groups), rows)
	for i := start; i < end; i++ {
		name := style.PadRight(g.groups[i], nameW)
		if g.groups[i] == g.active {
			name = style.StatusRunning.Render(name)
		}
		if i == g.cursor && g.focused {
			b.WriteString(style.SelectedRowStyle.Render(style.CursorStyle.Render("> ") + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}
	return b.String()
}
