package publishing

import "math"

// Default listing parameters used by the HTTP surface.
const (
	DefaultPage     = 0
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a normalized page selector.
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest clamps page to >= 0 and size to [1, MaxPageSize].
func NewPageRequest(page, size int) PageRequest {
	return PageRequest{
		Page: max(page, 0),
		Size: min(max(size, 1), MaxPageSize),
	}
}

// Clamp applies the NewPageRequest bounds to q.
func (q PageQuery) Clamp() PageQuery {
	r := NewPageRequest(q.Page, q.Size)
	q.Page, q.Size = r.Page, r.Size
	return q
}

// Offset returns the index of the first item on the page. ok is false when
// Page*Size overflows an int; such a page lies past any possible result.
func (q PageQuery) Offset() (offset int, ok bool) {
	q = q.Clamp()
	if q.Page > math.MaxInt/q.Size {
		return 0, false
	}
	return q.Page * q.Size, true
}

// Page is the envelope returned by listings.
type Page[T any] struct {
	Items         []T   `json:"items"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
}

// TotalPages returns ceil(total/size), or 0 when there is nothing to page.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// NewPage shapes a repository slice into a Page.
func NewPage[E, T any](slice *PageSlice[E], mapFn func(E) T) *Page[T] {
	items := make([]T, 0, len(slice.Items))
	for _, item := range slice.Items {
		items = append(items, mapFn(item))
	}
	return &Page[T]{
		Items:         items,
		TotalElements: slice.TotalElements,
		TotalPages:    TotalPages(slice.TotalElements, slice.Size),
		Page:          slice.Page,
		Size:          slice.Size,
	}
}

func (r PageRequest) query(applicationID string, status *ContentStatus) PageQuery {
	r = NewPageRequest(r.Page, r.Size)
	return PageQuery{
		ApplicationID: applicationID,
		Status:        status,
		Page:          r.Page,
		Size:          r.Size,
	}
}

func identity[T any](v T) T { return v }
