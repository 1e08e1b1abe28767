//go:build !windows

package platform

// setCursorPos has no non-Windows fast path; robotgo handles the move
func setCursorPos(x, y int) bool {
	return false
}
