package reporting

import (
	"strconv"
	"strings"

	"foodshare/pkg/types"
)

// Page is one clamped page of a listing.
type Page struct {
	Number     int
	TotalPages int
	PerPage    int
	Offset     int
}

func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) Pagination() types.Pagination {
	return types.Pagination{
		CurrentPage: p.Number,
		TotalPages:  p.TotalPages,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
	}
}

// ParsePage reads a page query value. Anything that is not a positive
// integer becomes 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate clamps requested into [1, last page]. An empty listing still has
// one (empty) page.
func Paginate(total, perPage, requested int) Page {
	if perPage < 1 {
		perPage = 1
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		TotalPages: totalPages,
		PerPage:    perPage,
		Offset:     (number - 1) * perPage,
	}
}

// PageWindow lists up to three page numbers centred on page. Near either
// end the window slides so it still spans three pages.
func PageWindow(page, totalPages int) []int {
	if totalPages < 1 {
		return []int{}
	}

	start := page - 1
	switch {
	case totalPages <= 3 || page <= 2:
		start = 1
	case page >= totalPages-1:
		start = totalPages - 2
	}

	end := start + 2
	if end > totalPages {
		end = totalPages
	}

	window := make([]int, 0, 3)
	for i := start; i <= end; i++ {
		window = append(window, i)
	}
	return window
}
