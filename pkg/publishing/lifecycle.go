package publishing

import "time"

// PublishedAtOnCreate returns now for an item created as PUBLISHED and nil
// otherwise.
func PublishedAtOnCreate(initial ContentStatus, now time.Time) *time.Time {
	if initial.IsPublished() {
		return &now
	}
	return nil
}

// PublishedAtOnTransition resolves PublishedAt for an item moving from prev
// to next. Entering PUBLISHED stamps now, leaving it clears the timestamp and
// staying PUBLISHED keeps prevPublishedAt.
//
// Update and status-change of every content kind go through this function.
func PublishedAtOnTransition(prev, next ContentStatus, prevPublishedAt *time.Time, now time.Time) *time.Time {
	switch {
	case !prev.IsPublished() && next.IsPublished():
		return &now
	case !next.IsPublished():
		return nil
	default:
		return prevPublishedAt
	}
}
