package workflow

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Lllllllleong/pdfsplitflow/internal/models"
)

// ParsePageSpec turns a 1-based page list such as "1,3-5" into sorted,
// de-duplicated 0-based indices, validated against pageCount.
func ParsePageSpec(spec string, pageCount int) ([]int, error) {
	seen := make(map[int]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if from < 1 || to > pageCount || from > to {
			return nil, fmt.Errorf("%w: %q, document has %d pages", models.ErrPageRange, part, pageCount)
		}
		for p := from; p <= to; p++ {
			seen[p-1] = true
		}
	}
	if len(seen) == 0 {
		return nil, models.ErrEmptySelection
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out, nil
}

func parseRange(part string) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page %q: %w", part, err)
	}
	if !isRange {
		return from, from, nil
	}
	to, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page range %q: %w", part, err)
	}
	return from, to, nil
}

// Keep sets the selection to exactly the given 0-based indices.
func (w *Workflow) Keep(indices []int) error {
	return w.edit(func(pages []models.PageEntry) error {
		for _, idx := range indices {
			if idx < 0 || idx >= len(pages) {
				return fmt.Errorf("%w: index %d, document has %d pages", models.ErrPageRange, idx, len(pages))
			}
		}
		for i := range pages {
			pages[i].Included = false
		}
		for _, idx := range indices {
			pages[idx].Included = true
		}
		return nil
	})
}
