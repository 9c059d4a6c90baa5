package paging

const (
	DefaultSize = 15
	MaxSize     = 50
)

// Page is one slice of a larger, ordered result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// Normalize clamps page to >= 1 and size to 1..MaxSize.
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return page, size
}

// Offset is the number of rows to skip for a normalized page.
func Offset(page, size int) int {
	return (page - 1) * size
}

// Map converts the items of a page, keeping its position.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{Items: items, Total: p.Total, Page: p.Page, Size: p.Size}
}
