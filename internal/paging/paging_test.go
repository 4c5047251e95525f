package paging

import (
	"fmt"
	"testing"

	"github.com/portico-hosting/portico/models"
)

// makeAllocations builds n allocations with sequential ports starting at base.
func makeAllocations(n, base int) []*models.Allocation {
	allocations := make([]*models.Allocation, n)
	for i := 0; i < n; i++ {
		allocations[i] = &models.Allocation{
			ID:          fmt.Sprintf("allocation:%d", base+i),
			BindAddress: "0.0.0.0",
			Port:        base + i,
		}
	}
	return allocations
}

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{
			name:      "valid input",
			page:      3,
			limit:     25,
			wantPage:  3,
			wantLimit: 25,
		},
		{
			name:      "zero page - floor at 1",
			page:      0,
			limit:     10,
			wantPage:  1,
			wantLimit: 10,
		},
		{
			name:      "negative page - floor at 1",
			page:      -4,
			limit:     10,
			wantPage:  1,
			wantLimit: 10,
		},
		{
			name:      "zero limit - use default",
			page:      1,
			limit:     0,
			wantPage:  1,
			wantLimit: 100,
		},
		{
			name:      "limit exceeds max - cap at 1000",
			page:      1,
			limit:     5000,
			wantPage:  1,
			wantLimit: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.page, tt.limit)

			if w.Page != tt.wantPage {
				t.Errorf("NewWindow() page = %v, want %v", w.Page, tt.wantPage)
			}
			if w.Limit != tt.wantLimit {
				t.Errorf("NewWindow() limit = %v, want %v", w.Limit, tt.wantLimit)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{
			name:  "empty pool still has one page",
			total: 0,
			limit: 10,
			want:  1,
		},
		{
			name:  "exact multiple",
			total: 30,
			limit: 10,
			want:  3,
		},
		{
			name:  "partial last page rounds up",
			total: 31,
			limit: 10,
			want:  4,
		},
		{
			name:  "fewer items than limit",
			total: 3,
			limit: 10,
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Window{Page: 1, Limit: tt.limit, Total: tt.total}

			if got := w.TotalPages(); got != tt.want {
				t.Errorf("TotalPages() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int
		wantPage int
	}{
		{
			name:     "page within range stays",
			page:     2,
			limit:    10,
			total:    25,
			wantPage: 2,
		},
		{
			name:     "page past end clamps to last page",
			page:     5,
			limit:    10,
			total:    25,
			wantPage: 3,
		},
		{
			name:     "deletion shrinks pool under current page",
			page:     2,
			limit:    10,
			total:    10,
			wantPage: 1,
		},
		{
			name:     "empty pool clamps to page one",
			page:     7,
			limit:    10,
			total:    0,
			wantPage: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Window{Page: tt.page, Limit: tt.limit}.Clamp(tt.total)

			if w.Page != tt.wantPage {
				t.Errorf("Clamp() page = %v, want %v", w.Page, tt.wantPage)
			}
			if w.Total != tt.total {
				t.Errorf("Clamp() total = %v, want %v", w.Total, tt.total)
			}
		})
	}
}

func TestSliceAssignedFirst(t *testing.T) {
	// Three assigned and twelve unassigned allocations with a page size of ten:
	// page one shows all three assigned plus the first seven unassigned, page
	// two shows the remaining five unassigned.
	assigned := makeAllocations(3, 25565)
	unassigned := makeAllocations(12, 30000)

	page1 := Slice(assigned, unassigned, NewWindow(1, 10))

	if page1.Total != 15 {
		t.Errorf("Slice() total = %v, want 15", page1.Total)
	}
	if page1.TotalPages() != 2 {
		t.Errorf("Slice() total pages = %v, want 2", page1.TotalPages())
	}
	if len(page1.Assigned) != 3 {
		t.Errorf("Slice() page 1 assigned = %v, want 3", len(page1.Assigned))
	}
	if len(page1.Unassigned) != 7 {
		t.Errorf("Slice() page 1 unassigned = %v, want 7", len(page1.Unassigned))
	}
	if !page1.ShowAssigned {
		t.Error("Slice() page 1 should show the assigned group")
	}
	if !page1.ShowUnassigned {
		t.Error("Slice() page 1 should show the unassigned group")
	}
	if page1.Unassigned[0].Port != 30000 {
		t.Errorf("Slice() page 1 first unassigned port = %v, want 30000", page1.Unassigned[0].Port)
	}

	page2 := Slice(assigned, unassigned, NewWindow(2, 10))

	if len(page2.Assigned) != 0 {
		t.Errorf("Slice() page 2 assigned = %v, want 0", len(page2.Assigned))
	}
	if len(page2.Unassigned) != 5 {
		t.Errorf("Slice() page 2 unassigned = %v, want 5", len(page2.Unassigned))
	}
	if page2.ShowAssigned {
		t.Error("Slice() page 2 should not show the assigned group")
	}
	if !page2.ShowUnassigned {
		t.Error("Slice() page 2 should show the unassigned group")
	}
	if page2.Unassigned[0].Port != 30007 {
		t.Errorf("Slice() page 2 first unassigned port = %v, want 30007", page2.Unassigned[0].Port)
	}
}

func TestSliceGroupVisibility(t *testing.T) {
	tests := []struct {
		name           string
		assigned       int
		unassigned     int
		page           int
		limit          int
		wantAssigned   int
		wantUnassigned int
		showAssigned   bool
		showUnassigned bool
	}{
		{
			name:           "assigned fills whole page",
			assigned:       10,
			unassigned:     5,
			page:           1,
			limit:          10,
			wantAssigned:   10,
			wantUnassigned: 0,
			showAssigned:   true,
			showUnassigned: false,
		},
		{
			name:           "page straddles group boundary",
			assigned:       10,
			unassigned:     5,
			page:           2,
			limit:          8,
			wantAssigned:   2,
			wantUnassigned: 5,
			showAssigned:   true,
			showUnassigned: true,
		},
		{
			name:           "no assigned allocations",
			assigned:       0,
			unassigned:     5,
			page:           1,
			limit:          10,
			wantAssigned:   0,
			wantUnassigned: 5,
			showAssigned:   false,
			showUnassigned: true,
		},
		{
			name:           "all assigned",
			assigned:       4,
			unassigned:     0,
			page:           1,
			limit:          10,
			wantAssigned:   4,
			wantUnassigned: 0,
			showAssigned:   true,
			showUnassigned: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assigned := makeAllocations(tt.assigned, 20000)
			unassigned := makeAllocations(tt.unassigned, 30000)

			view := Slice(assigned, unassigned, NewWindow(tt.page, tt.limit))

			if len(view.Assigned) != tt.wantAssigned {
				t.Errorf("Slice() assigned = %v, want %v", len(view.Assigned), tt.wantAssigned)
			}
			if len(view.Unassigned) != tt.wantUnassigned {
				t.Errorf("Slice() unassigned = %v, want %v", len(view.Unassigned), tt.wantUnassigned)
			}
			if view.ShowAssigned != tt.showAssigned {
				t.Errorf("Slice() showAssigned = %v, want %v", view.ShowAssigned, tt.showAssigned)
			}
			if view.ShowUnassigned != tt.showUnassigned {
				t.Errorf("Slice() showUnassigned = %v, want %v", view.ShowUnassigned, tt.showUnassigned)
			}
		})
	}
}

func TestSliceCoversEveryAllocationOnce(t *testing.T) {
	assigned := makeAllocations(7, 20000)
	unassigned := makeAllocations(16, 30000)
	w := NewWindow(1, 5)
	w.Total = len(assigned) + len(unassigned)

	seen := make(map[string]int)
	for page := 1; page <= w.TotalPages(); page++ {
		view := Slice(assigned, unassigned, NewWindow(page, 5))
		for _, a := range view.Assigned {
			seen[a.ID]++
		}
		for _, a := range view.Unassigned {
			seen[a.ID]++
		}
	}

	if len(seen) != 23 {
		t.Errorf("pages covered %v allocations, want 23", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("allocation %s appeared %v times, want 1", id, count)
		}
	}
}

func TestButtons(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		totalPages int
		want       []int
	}{
		{
			name:       "single page",
			current:    1,
			totalPages: 1,
			want:       []int{1},
		},
		{
			name:       "fewer pages than buttons",
			current:    2,
			totalPages: 3,
			want:       []int{1, 2, 3},
		},
		{
			name:       "centered on current page",
			current:    5,
			totalPages: 9,
			want:       []int{3, 4, 5, 6, 7},
		},
		{
			name:       "shifted at lower boundary",
			current:    1,
			totalPages: 9,
			want:       []int{1, 2, 3, 4, 5},
		},
		{
			name:       "shifted near lower boundary",
			current:    2,
			totalPages: 9,
			want:       []int{1, 2, 3, 4, 5},
		},
		{
			name:       "shifted at upper boundary",
			current:    9,
			totalPages: 9,
			want:       []int{5, 6, 7, 8, 9},
		},
		{
			name:       "shifted near upper boundary",
			current:    8,
			totalPages: 9,
			want:       []int{5, 6, 7, 8, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Buttons(tt.current, tt.totalPages)

			if len(got) != len(tt.want) {
				t.Fatalf("Buttons() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Buttons() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
