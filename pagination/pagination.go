package pagination

import "blogroll/models"

const DefaultPageSize = 20

// Page is one slice of a timeline
type Page struct {
	Items      []models.AggregatedItem
	Page       int
	TotalPages int
}

// TotalPages is ceil(total / size), never less than 1
func TotalPages(total, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the 1-based page of items. Pages past the end are empty, not an error.
func Paginate(items []models.AggregatedItem, page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	totalPages := TotalPages(len(items), size)

	// Compare pages before multiplying so huge page numbers cannot overflow
	slice := []models.AggregatedItem{}
	if page <= totalPages {
		start := (page - 1) * size
		end := min(start+size, len(items))
		if start < end {
			slice = items[start:end:end]
		}
	}

	return Page{
		Items:      slice,
		Page:       page,
		TotalPages: totalPages,
	}
}
