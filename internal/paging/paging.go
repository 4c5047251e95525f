// Package paging implements the partitioned pager used for allocation pool
// views: one continuous page window laid over the assigned group followed by
// the unassigned group, so the two sections fill pages seamlessly and
// concatenating all pages reproduces the whole pool exactly once.
package paging

import "github.com/portico-hosting/portico/models"

// Pagination defaults, matching the flat list endpoints.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
	maxButtons   = 5
)

// Window is a 1-based page over a pool of Total allocations.
type Window struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// NewWindow sanitizes raw page/limit input: pages start at 1 and the limit
// falls back to DefaultLimit and is capped at MaxLimit.
func NewWindow(page, limit int) Window {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Window{Page: page, Limit: limit}
}

// TotalPages returns ceil(Total/Limit), never less than 1: an empty pool
// still has one (empty) page.
func (w Window) TotalPages() int {
	pages := (w.Total + w.Limit - 1) / w.Limit
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Bounds returns the half-open item window [start, end) covered by the page.
func (w Window) Bounds() (start, end int) {
	start = (w.Page - 1) * w.Limit
	end = w.Page * w.Limit
	return start, end
}

// Clamp recomputes the window against a new live total. The page clamps
// down to the last non-empty page, or 1 when the pool is empty, so a
// deletion can never leave the view stranded past the end.
func (w Window) Clamp(total int) Window {
	w.Total = total
	if last := w.TotalPages(); w.Page > last {
		w.Page = last
	}
	if w.Page < 1 {
		w.Page = 1
	}
	return w
}

// View is one rendered page of a partitioned pool.
type View struct {
	Window

	// Assigned and Unassigned are the slices of each group that fall
	// inside the page window, assigned group first.
	Assigned   []*models.Allocation `json:"assigned"`
	Unassigned []*models.Allocation `json:"unassigned"`

	// ShowAssigned and ShowUnassigned report whether the page window
	// touches the respective group.
	ShowAssigned   bool `json:"showAssigned"`
	ShowUnassigned bool `json:"showUnassigned"`

	// Pages is the page-button affordance: at most five page numbers
	// centered on the current page.
	Pages []int `json:"pages"`
}

// Slice lays the page window over the partition. The assigned group occupies
// positions [0, len(assigned)) of the combined list and the unassigned group
// the rest; the window picks its piece of each. Grouping is stable across
// pages, so walking every page yields each allocation exactly once.
func Slice(assigned, unassigned []*models.Allocation, w Window) *View {
	w.Total = len(assigned) + len(unassigned)
	start, end := w.Bounds()
	a := len(assigned)

	view := &View{
		Window:         w,
		Assigned:       cut(assigned, start, end),
		Unassigned:     cut(unassigned, start-a, end-a),
		ShowAssigned:   start < a,
		ShowUnassigned: end > a,
		Pages:          Buttons(w.Page, w.TotalPages()),
	}
	return view
}

// cut returns items[lo:hi] with both bounds clamped into the slice.
func cut(items []*models.Allocation, lo, hi int) []*models.Allocation {
	if lo < 0 {
		lo = 0
	}
	if hi > len(items) {
		hi = len(items)
	}
	if lo >= hi {
		return []*models.Allocation{}
	}
	return items[lo:hi]
}

// Buttons returns the page numbers to render as buttons: at most five,
// preferring current-2 through current+2 and shifting the run into range at
// either boundary.
func Buttons(current, totalPages int) []int {
	if totalPages < 1 {
		totalPages = 1
	}

	start := current - 2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > totalPages {
		end = totalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
