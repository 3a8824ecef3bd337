package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// row is the part of a content item the table needs for lookups and ordering.
type row struct {
	id            string
	applicationID string
	slug          string
	status        publishing.ContentStatus
	publishedAt   *time.Time
	createdAt     time.Time
}

// table stores one content kind. Every value crossing its boundary is cloned.
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	rowOf func(T) row
	clone func(T) T
	// uniqueSlug rejects two items of one application with the same slug.
	uniqueSlug bool
}

func newTable[T any](rowOf func(T) row, clone func(T) T, uniqueSlug bool) *table[T] {
	return &table[T]{
		items:      make(map[string]T),
		rowOf:      rowOf,
		clone:      clone,
		uniqueSlug: uniqueSlug,
	}
}

func (t *table[T]) save(op string, item T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.rowOf(item)
	if t.uniqueSlug {
		for id, existing := range t.items {
			other := t.rowOf(existing)
			if id != r.id && other.applicationID == r.applicationID && other.slug == r.slug {
				var zero T
				return zero, publishing.NewBadRequest(op, "slug already exists")
			}
		}
	}

	t.items[r.id] = t.clone(item)
	return t.clone(item), nil
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	item, ok := t.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(item), true
}

func (t *table[T]) bySlug(applicationID, slug string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, item := range t.items {
		r := t.rowOf(item)
		if r.applicationID == applicationID && r.slug == slug {
			return t.clone(item), true
		}
	}
	var zero T
	return zero, false
}

// page filters by application and optional status, orders by published
// time descending with unpublished items last, then by creation time
// descending, and cuts out the requested page.
func (t *table[T]) page(q publishing.PageQuery) *publishing.PageSlice[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()

	q = q.Clamp()
	matched := make([]T, 0)
	for _, item := range t.items {
		r := t.rowOf(item)
		if r.applicationID != q.ApplicationID {
			continue
		}
		if q.Status != nil && r.status != *q.Status {
			continue
		}
		matched = append(matched, item)
	}

	sort.Slice(matched, func(i, j int) bool {
		return less(t.rowOf(matched[i]), t.rowOf(matched[j]))
	})

	total := int64(len(matched))
	start := len(matched)
	if offset, ok := q.Offset(); ok {
		start = min(offset, len(matched))
	}
	end := start + min(q.Size, len(matched)-start)

	items := make([]T, 0, end-start)
	for _, item := range matched[start:end] {
		items = append(items, t.clone(item))
	}

	return &publishing.PageSlice[T]{
		Items:         items,
		TotalElements: total,
		Page:          q.Page,
		Size:          q.Size,
	}
}

func less(a, b row) bool {
	switch {
	case a.publishedAt != nil && b.publishedAt == nil:
		return true
	case a.publishedAt == nil && b.publishedAt != nil:
		return false
	case a.publishedAt != nil && !a.publishedAt.Equal(*b.publishedAt):
		return a.publishedAt.After(*b.publishedAt)
	case !a.createdAt.Equal(b.createdAt):
		return a.createdAt.After(b.createdAt)
	default:
		return a.id < b.id
	}
}
