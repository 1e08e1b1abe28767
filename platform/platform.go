package platform

// Mouse abstracts OS-level pointer control. Button names follow robotgo:
// "left", "right", "center".
type Mouse interface {
	ScreenSize() (width, height int)
	Position() (x, y int)
	MoveTo(x, y int) error
	Toggle(button string, down bool) error
}
