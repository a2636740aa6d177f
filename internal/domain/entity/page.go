package entity

// Page is one slice of a paged listing.
type Page[T any] struct {
	Items          []T
	TotalCount     int
	PagesAvailable int
	PageNumber     int
}

// PagesFor returns max(1, ceil(total/pageSize)).
// A non-positive pageSize yields a single page.
func PagesFor(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate cuts page pageNo (1-based) of size pageSize out of items.
// Pages past the end come back empty with the real totals so callers can
// detect and clamp them.
func Paginate[T any](items []T, pageNo, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = len(items)
	}
	if pageNo < 1 {
		pageNo = 1
	}

	page := Page[T]{
		Items:          []T{},
		TotalCount:     len(items),
		PagesAvailable: PagesFor(len(items), pageSize),
		PageNumber:     pageNo,
	}

	start := (pageNo - 1) * pageSize
	if start >= len(items) {
		return page
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	page.Items = append(page.Items, items[start:end]...)
	return page
}
