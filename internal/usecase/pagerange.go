package usecase

import "strconv"

// DefaultDelta is the number of pages shown on each side of the current one.
const DefaultDelta = 2

// PageItem is one cell of the page strip: a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
}

// String renders the item as its page number or "...".
func (p PageItem) String() string {
	if p.Ellipsis {
		return "..."
	}
	return strconv.Itoa(p.Page)
}

// PageRange computes the compressed page strip for the given position.
// Page 1 and totalPages are always present, the pages within delta of
// currentPage fill the middle, and a single ellipsis marks each gap.
func PageRange(currentPage, totalPages, delta int) []PageItem {
	if totalPages <= 1 {
		return []PageItem{{Page: 1}}
	}
	if delta < 0 {
		delta = 0
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	left := max(2, currentPage-delta)
	right := min(totalPages-1, currentPage+delta)

	items := make([]PageItem, 0, right-left+5)
	items = append(items, PageItem{Page: 1})
	if left > 2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	for i := left; i <= right; i++ {
		items = append(items, PageItem{Page: i})
	}
	if right < totalPages-1 {
		items = append(items, PageItem{Ellipsis: true})
	}
	items = append(items, PageItem{Page: totalPages})
	return items
}
