package publishing

import "slices"

// Authorize admits a mutating action against targetApplicationID only when
// allowed contains it. An empty or nil allowed set denies everything.
func Authorize(targetApplicationID string, allowed []string) error {
	if len(allowed) == 0 || !slices.Contains(allowed, targetApplicationID) {
		return forbidden("authorize", "application access denied")
	}
	return nil
}
