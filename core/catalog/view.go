package catalog

import "github.com/gaurav-prasanna/webshelf/core"

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 20

// Paginate slices an ordered record list into one page of a PageView.
// Page numbers are 1-indexed; out-of-range numbers clamp silently to the
// valid range (a read-only convenience view, not an error surface).
// TotalPages is 0 for an empty list.
func Paginate(records []core.ArticleRecord, pageNumber, pageSize int) core.PageView {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize

	if pageNumber < 1 {
		pageNumber = 1
	}
	if totalPages > 0 && pageNumber > totalPages {
		pageNumber = totalPages
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return core.PageView{
		Items:      append([]core.ArticleRecord(nil), records[start:end]...),
		PageNumber: pageNumber,
		TotalPages: totalPages,
		HasPrev:    pageNumber > 1,
		HasNext:    pageNumber < totalPages,
	}
}
