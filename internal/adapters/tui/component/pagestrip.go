package component

import (
	"fmt"
	"strings"

	"github.com/andrebassi/confnav/internal/adapters/tui/style"
	"github.com/andrebassi/confnav/internal/usecase"
)

// RenderPageStrip draws the compressed page strip with the current page
// highlighted, followed by the entry count.
func RenderPageStrip(items []usecase.PageItem, current, totalCount int) string {
	if len(items) == 0 {
		return ""
	}

	cells := make([]string, 0, len(items)+2)
	cells = append(cells, style.StatusMuted.Render("‹"))
	for _, it := range items {
		switch {
		case it.Ellipsis:
			cells = append(cells, style.StatusMuted.Render(it.String()))
		case it.Page == current:
			cells = append(cells, style.PageCurrentStyle.Render(it.String()))
		default:
			cells = append(cells, style.PageStyle.Render(it.String()))
		}
	}
	cells = append(cells, style.StatusMuted.Render("›"))

	return strings.Join(cells, " ") + style.StatusMuted.Render(fmt.Sprintf("   %d entries", totalCount))
}
