package component

import (
	"strings"

	"github.com/andrebassi/confnav/internal/adapters/tui/style"
)

// Breadcrumb displays the current location in the browsing hierarchy
// (namespace > group > dataId).
type Breadcrumb struct {
	items []string
	width int
}

// NewBreadcrumb creates a new empty breadcrumb component.
func NewBreadcrumb() Breadcrumb {
	return Breadcrumb{}
}

// SetItems updates the breadcrumb path. Empty items are skipped.
func (b *Breadcrumb) SetItems(items ...string) {
	b.items = b.items[:0]
	for _, it := range items {
		if it != "" {
			b.items = append(b.items, it)
		}
	}
}

// SetWidth sets the available width for rendering.
func (b *Breadcrumb) SetWidth(width int) {
	b.width = width
}

// View renders the path with separators, highlighting the last item.
// Leading items are dropped when the path does not fit the width.
func (b Breadcrumb) View() string {
	if len(b.items) == 0 {
		return ""
	}

	items := b.items
	if b.width > 0 {
		for len(items) > 1 && pathWidth(items) > b.width {
			items = items[1:]
		}
	}

	parts := make([]string, 0, len(items))
	for i, item := range items {
		if i == len(items)-1 {
			if b.width > 0 {
				item = style.Truncate(item, b.width)
			}
			parts = append(parts, style.BreadcrumbActiveStyle.Render(item))
		} else {
			parts = append(parts, style.BreadcrumbStyle.Render(item))
		}
	}

	sep := style.BreadcrumbStyle.Render(" > ")
	return strings.Join(parts, sep)
}

func pathWidth(items []string) int {
	w := 3 * (len(items) - 1)
	for _, it := range items {
		w += len([]rune(it))
	}
	return w
}
