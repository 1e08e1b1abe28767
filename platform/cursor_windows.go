//go:build windows

package platform

import (
	"golang.org/x/sys/windows"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSetCursor = user32.NewProc("SetCursorPos")
)

// setCursorPos moves the pointer with the user32 primitive directly,
// reporting whether the call succeeded
func setCursorPos(x, y int) bool {
	ret, _, _ := procSetCursor.Call(uintptr(x), uintptr(y))
	return ret != 0
}
