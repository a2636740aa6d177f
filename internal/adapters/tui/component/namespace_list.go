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

// NamespaceList is the namespace selector shown on start. It filters by
// id, name or description and lists favourites first.
type NamespaceList struct {
	namespaces  []entity.Namespace
	favourites  []string
	cursor      int
	width       int
	height      int
	searchInput textinput.Model
	searching   bool
	searchQuery string
	keys        keys.KeyMap
}

func NewNamespaceList() NamespaceList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 50
	ti.Width = 30

	return NamespaceList{
		searchInput: ti,
		keys:        keys.DefaultKeyMap(),
	}
}

func (n NamespaceList) Init() tea.Cmd {
	return nil
}

func (n NamespaceList) Update(msg tea.Msg) (NamespaceList, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return n, nil
	}

	if n.searching {
		switch km.Type {
		case tea.KeyTab, tea.KeyEnter:
			n.searching = false
			n.searchQuery = n.searchInput.Value()
			n.searchInput.Blur()
			return n, nil
		case tea.KeyEsc:
			if n.searchQuery != "" {
				n.ClearSearch()
			} else {
				n.searching = false
				n.searchInput.Blur()
			}
			return n, nil
		}
		var cmd tea.Cmd
		n.searchInput, cmd = n.searchInput.Update(km)
		n.searchQuery = n.searchInput.Value()
		n.cursor = 0
		return n, cmd
	}

	total := len(n.Filtered())
	switch {
	case key.Matches(km, n.keys.Up):
		if n.cursor > 0 {
			n.cursor--
		}
	case key.Matches(km, n.keys.Down):
		if n.cursor < total-1 {
			n.cursor++
		}
	case key.Matches(km, n.keys.Home):
		n.cursor = 0
	case key.Matches(km, n.keys.End):
		n.cursor = max(0, total-1)
	case key.Matches(km, n.keys.PageUp):
		n.cursor = max(0, n.cursor-n.visibleRows())
	case key.Matches(km, n.keys.PageDown):
		n.cursor = max(0, min(total-1, n.cursor+n.visibleRows()))
	case key.Matches(km, n.keys.Search):
		n.searching = true
		n.searchInput.SetValue(n.searchQuery)
		n.searchInput.Focus()
		return n, textinput.Blink
	case key.Matches(km, n.keys.Clear):
		n.ClearSearch()
	}
	return n, nil
}

// SetNamespaces replaces the list, keeping the cursor on the same id when
// it is still present.
func (n *NamespaceList) SetNamespaces(namespaces []entity.Namespace) {
	selected := n.Selected()
	n.namespaces = append([]entity.Namespace(nil), namespaces...)
	n.cursor = 0
	if selected != nil {
		n.SelectID(selected.ID)
	}
}

// SetFavourites sets the ids pinned to the top of the list.
func (n *NamespaceList) SetFavourites(ids []string) {
	selected := n.Selected()
	n.favourites = append([]string(nil), ids...)
	if selected != nil {
		n.SelectID(selected.ID)
	}
}

// SelectID moves the cursor to id if it is visible.
func (n *NamespaceList) SelectID(id string) bool {
	for i, ns := range n.Filtered() {
		if ns.ID == id {
			n.cursor = i
			return true
		}
	}
	return false
}

func (n *NamespaceList) SetSize(width, height int) {
	n.width = width
	n.height = height
}

// Filtered returns the namespaces matching the current filter, favourites
// first.
func (n NamespaceList) Filtered() []entity.Namespace {
	return usecase.FilterNamespaces(n.namespaces, n.searchQuery, n.favourites)
}

// Selected returns the namespace under the cursor, or nil.
func (n NamespaceList) Selected() *entity.Namespace {
	list := n.Filtered()
	if n.cursor < 0 || n.cursor >= len(list) {
		return nil
	}
	ns := list[n.cursor]
	return &ns
}

func (n NamespaceList) IsSearching() bool { return n.searching }
func (n NamespaceList) HasFilter() bool   { return n.searchQuery != "" }

func (n *NamespaceList) ClearSearch() {
	n.searchQuery = ""
	n.searchInput.SetValue("")
	n.cursor = 0
}

func (n NamespaceList) isFavourite(id string) bool {
	for _, f := range n.favourites {
		if f == id {
			return true
		}
	}
	return false
}

func (n NamespaceList) visibleRows() int {
	rows := n.height - 8
	if rows < 5 {
		rows = 15
	}
	return rows
}

func (n NamespaceList) View() string {
	var b strings.Builder

	iconStyle := lipgloss.NewStyle().Foreground(style.Primary).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(style.Text).Bold(true)
	b.WriteString(iconStyle.Render("◉") + " " + titleStyle.Render("SELECT NAMESPACE"))
	b.WriteString("\n")

	if n.searching {
		searchStyle := lipgloss.NewStyle().
			Foreground(style.Text).
			Background(style.Surface).
			Padding(0, 1)
		b.WriteString(searchStyle.Render("/ " + n.searchInput.View()))
		b.WriteString("\n\n")
	} else if n.searchQuery != "" {
		filterStyle := lipgloss.NewStyle().Foreground(style.Secondary).Bold(true)
		b.WriteString(filterStyle.Render("Filter: " + n.searchQuery))
		b.WriteString(style.HelpDescStyle.Render(" (c to clear)"))
		b.WriteString("\n\n")
	} else {
		b.WriteString("\n")
	}

	list := n.Filtered()
	if len(list) == 0 {
		b.WriteString(style.StatusMuted.Render("  No namespaces found"))
		return b.String()
	}

	idW, nameW := 24, 24
	descW := max(10, n.width-idW-nameW-22)

	header := fmt.Sprintf("  %-4s %-2s %s %s %-8s %s", "#", "", style.PadRight("ID", idW), style.PadRight("NAME", nameW), "CONFIGS", "DESCRIPTION")
	b.WriteString(style.TableHeaderStyle.Render(header))
	b.WriteString("\n")

	start, end := visibleWindow(n.cursor, len(list), n.visibleRows())
	for i := start; i < end; i++ {
		ns := list[i]
		star := "  "
		if n.isFavourite(ns.ID) {
			star = style.FavoriteStyle.Render("★ ")
		}
		id := ns.ID
		if id == "" {
			id = "public"
		}
		row := fmt.Sprintf("%-4d %s %s %s %-8d %s",
			i+1, star,
			style.PadRight(id, idW),
			style.PadRight(ns.DisplayName(), nameW),
			ns.ConfigCount,
			style.Truncate(ns.Description, descW))

		if i == n.cursor {
			b.WriteString(style.SelectedRowStyle.Render(style.CursorStyle.Render("> ") + row))
		} else {
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}

	b.WriteString(renderScrollIndicator(n.cursor, start, end, len(list)))
	return b.String()
}

// visibleWindow keeps cursor inside a window of rows lines, centred when
// possible.
func visibleWindow(cursor, total, rows int) (start, end int) {
	if total <= rows {
		return 0, total
	}
	start = max(0, cursor-rows/2)
	end = start + rows
	if end > total {
		end = total
		start = max(0, end-rows)
	}
	return start, end
}

func renderScrollIndicator(cursor, start, end, total int) string {
	if total == 0 {
		return ""
	}
	if start > 0 || end < total {
		percent := (cursor + 1) * 100 / total
		return style.StatusMuted.Render(fmt.Sprintf("\n  %d/%d (%d%%)", cursor+1, total, percent))
	}
	return style.StatusMuted.Render(fmt.Sprintf("\n  %d items", total))
}
