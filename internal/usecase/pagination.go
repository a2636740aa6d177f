package usecase

import "github.com/andrebassi/confnav/internal/domain/entity"

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 10

// PageKey identifies the listing a configs request was issued for.
// A response is only applied while its key still matches the state.
type PageKey struct {
	Group    string
	Filter   string
	Page     int
	PageSize int
}

// PaginationState owns the paging position and the currently displayed
// page of a group's entries. It never performs I/O.
type PaginationState struct {
	currentPage   int
	pageSize      int
	totalCount    int
	totalPages    int
	selectedGroup string
	searchFilter  string
	configs       []entity.ConfigEntry
}

// NewPaginationState creates an empty state. Non-positive page sizes fall
// back to DefaultPageSize.
func NewPaginationState(pageSize int) *PaginationState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PaginationState{
		currentPage: 1,
		pageSize:    pageSize,
		totalPages:  1,
		configs:     []entity.ConfigEntry{},
	}
}

func (s *PaginationState) CurrentPage() int      { return s.currentPage }
func (s *PaginationState) PageSize() int         { return s.pageSize }
func (s *PaginationState) TotalCount() int       { return s.totalCount }
func (s *PaginationState) TotalPages() int       { return s.totalPages }
func (s *PaginationState) SelectedGroup() string { return s.selectedGroup }
func (s *PaginationState) SearchFilter() string  { return s.searchFilter }

// Configs returns a copy of the displayed page.
func (s *PaginationState) Configs() []entity.ConfigEntry {
	return entity.CloneEntries(s.configs)
}

// SetGroup selects a group, returns to page 1 and drops the displayed page.
func (s *PaginationState) SetGroup(group string) {
	s.selectedGroup = group
	s.currentPage = 1
	s.clear()
}

// SetFilter sets the dataId substring filter and returns to page 1.
func (s *PaginationState) SetFilter(dataID string) {
	s.searchFilter = dataID
	s.currentPage = 1
}

// SetPageSize changes the page size and returns to page 1.
func (s *PaginationState) SetPageSize(n int) error {
	if n <= 0 {
		return &ValidationError{Field: "page size", Message: "must be positive"}
	}
	s.pageSize = n
	s.currentPage = 1
	return nil
}

// GoToPage moves to page. Out-of-range pages leave the state untouched and
// return false.
func (s *PaginationState) GoToPage(page int) bool {
	if page < 1 || page > s.totalPages {
		return false
	}
	s.currentPage = page
	return true
}

// ApplyPage replaces the displayed page and the totals.
// currentPage is not renumbered here; see NeedsClamp.
func (s *PaginationState) ApplyPage(page entity.Page[entity.ConfigEntry]) {
	s.configs = entity.CloneEntries(page.Items)
	s.totalCount = max(0, page.TotalCount)
	s.totalPages = max(1, page.PagesAvailable)
}

// NeedsClamp reports whether the current page points past the last page.
func (s *PaginationState) NeedsClamp() bool {
	return s.currentPage > s.totalPages
}

// Clamp pulls currentPage back into [1, totalPages].
func (s *PaginationState) Clamp() {
	if s.currentPage > s.totalPages {
		s.currentPage = s.totalPages
	}
	if s.currentPage < 1 {
		s.currentPage = 1
	}
}

// Key returns the listing key for the current position.
func (s *PaginationState) Key() PageKey {
	return PageKey{
		Group:    s.selectedGroup,
		Filter:   s.searchFilter,
		Page:     s.currentPage,
		PageSize: s.pageSize,
	}
}

func (s *PaginationState) clear() {
	s.configs = []entity.ConfigEntry{}
	s.totalCount = 0
	s.totalPages = 1
}
