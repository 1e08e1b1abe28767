package platform

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotMouse drives the pointer through robotgo
type RobotMouse struct{}

// NewMouse returns the OS-backed mouse
func NewMouse() Mouse {
	return &RobotMouse{}
}

// ScreenSize returns the primary display size in pixels
func (m *RobotMouse) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

// Position returns the current pointer location
func (m *RobotMouse) Position() (int, int) {
	return robotgo.Location()
}

// MoveTo warps the pointer to (x, y). On Windows the direct SetCursorPos
// path is tried first; some fullscreen applications swallow robotgo moves.
func (m *RobotMouse) MoveTo(x, y int) error {
	if setCursorPos(x, y) {
		return nil
	}
	robotgo.Move(x, y)
	return nil
}

// Toggle presses or releases a mouse button
func (m *RobotMouse) Toggle(button string, down bool) error {
	direction := "up"
	if down {
		direction = "down"
	}
	if err := robotgo.Toggle(button, direction); err != nil {
		return fmt.Errorf("failed to toggle %s button %s: %w", button, direction, err)
	}
	return nil
}
