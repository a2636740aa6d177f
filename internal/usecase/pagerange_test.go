package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strip(items []PageItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " ")
}

func TestPageRange(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		delta   int
		want    string
	}{
		{"single page", 1, 1, 2, "1"},
		{"zero pages", 1, 0, 2, "1"},
		{"middle", 5, 10, 2, "1 ... 3 4 5 6 7 ... 10"},
		{"first", 1, 10, 2, "1 2 3 ... 10"},
		{"last", 10, 10, 2, "1 ... 8 9 10"},
		{"two pages", 2, 2, 2, "1 2"},
		{"no gaps", 3, 5, 2, "1 2 3 4 5"},
		{"left gap only", 6, 7, 2, "1 ... 4 5 6 7"},
		{"zero delta", 5, 10, 0, "1 ... 5 ... 10"},
		{"current clamped high", 50, 10, 2, "1 ... 8 9 10"},
		{"current clamped low", -3, 10, 2, "1 2 3 ... 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strip(PageRange(tt.current, tt.total, tt.delta)))
		})
	}
}

func TestPageRangeProperties(t *testing.T) {
	for total := 1; total <= 30; total++ {
		for current := 1; current <= total; current++ {
			for _, delta := range []int{0, 1, 2, 3} {
				items := PageRange(current, total, delta)

				assert.Equal(t, PageItem{Page: 1}, items[0], "range(%d,%d,%d) must start with 1", current, total, delta)
				assert.Equal(t, PageItem{Page: total}, items[len(items)-1], "range(%d,%d,%d) must end with total", current, total, delta)

				seen := map[int]bool{}
				ellipses := 0
				prev := 0
				for _, it := range items {
					if it.Ellipsis {
						ellipses++
						continue
					}
					assert.False(t, seen[it.Page], "range(%d,%d,%d) repeats %d", current, total, delta, it.Page)
					assert.Greater(t, it.Page, prev, "range(%d,%d,%d) not ascending", current, total, delta)
					seen[it.Page] = true
					prev = it.Page
				}
				assert.LessOrEqual(t, ellipses, 2)
				assert.True(t, seen[current], "range(%d,%d,%d) must contain current", current, total, delta)
			}
		}
	}
}
