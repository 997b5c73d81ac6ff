package paging

import "sort"

// frameAbsent marks a declared page that is not resident in any frame.
const frameAbsent = -1

// A PageTable maps the virtual pages of one process to the frames that hold
// them. A page is declared when admission (or a later access) creates its
// entry, and resident only while the entry names a frame. Admission leaves
// every entry absent; fault resolution fills one in and eviction or
// teardown clears it again. There are no other states.
type PageTable struct {
	entries map[int]int
}

// NewPageTable creates a table with pageCount declared pages, all absent.
func NewPageTable(pageCount int) *PageTable {
	t := &PageTable{
		entries: make(map[int]int, pageCount),
	}

	for page := 0; page < pageCount; page++ {
		t.entries[page] = frameAbsent
	}

	return t
}

// Len returns the number of declared pages.
func (t *PageTable) Len() int {
	return len(t.entries)
}

// Resident returns the frame that holds a page, if the page is resident.
func (t *PageTable) Resident(page int) (frame int, ok bool) {
	frame, declared := t.entries[page]
	if !declared || frame == frameAbsent {
		return 0, false
	}

	return frame, true
}

// SetResident maps a page to a frame, declaring the page if an access
// reached beyond the admitted range.
func (t *PageTable) SetResident(page, frame int) {
	t.entries[page] = frame
}

// SetAbsent clears a page's mapping while keeping the page declared.
func (t *PageTable) SetAbsent(page int) {
	if _, declared := t.entries[page]; declared {
		t.entries[page] = frameAbsent
	}
}

// Pages returns the declared page numbers in ascending order.
func (t *PageTable) Pages() []int {
	pages := make([]int, 0, len(t.entries))
	for page := range t.entries {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	return pages
}

// ResidentPages returns the page numbers currently mapped to a frame, in
// ascending order.
func (t *PageTable) ResidentPages() []int {
	pages := make([]int, 0, len(t.entries))
	for page, frame := range t.entries {
		if frame != frameAbsent {
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)

	return pages
}

// PageOf returns the page mapped to a frame, if any. It is the reverse
// lookup an eviction needs when only the frame identity is known.
func (t *PageTable) PageOf(frame int) (page int, ok bool) {
	for p, f := range t.entries {
		if f == frame {
			return p, true
		}
	}

	return 0, false
}
