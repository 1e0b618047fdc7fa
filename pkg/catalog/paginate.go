package catalog

import (
	"slices"

	"github.com/Sternrassler/article-catalog/pkg/article"
)

// TotalPages returns ceil(count / limit), or 0 when limit is not positive.
func TotalPages(count, limit int) int {
	if limit <= 0 || count <= 0 {
		return 0
	}
	pages := count / limit
	if count%limit != 0 {
		pages++
	}
	return pages
}

// paginate returns page number page of items. The slice is a copy; pages
// outside [1, TotalPages] are empty and page is echoed unchanged.
func paginate(items []article.Article, page, limit int) article.Page {
	p := article.Page{
		Articles:    []article.Article{},
		TotalPages:  TotalPages(len(items), limit),
		CurrentPage: page,
	}
	// Comparing against TotalPages keeps (page-1)*limit from overflowing.
	if page < 1 || page > p.TotalPages {
		return p
	}

	start := (page - 1) * limit
	end := start + min(limit, len(items)-start)
	p.Articles = slices.Clone(items[start:end])
	return p
}
