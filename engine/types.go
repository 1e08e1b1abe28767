package engine

import (
	"time"

	"clickmate/profile"
)

// State is the scheduler's run state. It is never persisted; every process
// starts out Stopped.
type State int32

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Mouse is the OS input collaborator the engine drives. Button names follow
// robotgo: "left", "right", "center".
type Mouse interface {
	ScreenSize() (width, height int)
	Position() (x, y int)
	MoveTo(x, y int) error
	Toggle(button string, down bool) error
}

// Locator resolves a target image id to a screen point. Implemented by the
// vision library; optional.
type Locator interface {
	Locate(targetID string) (x, y int, found bool, err error)
}

// StopReason records why a run ended
type StopReason string

const (
	StopUser       StopReason = "user"
	StopError      StopReason = "error"
	StopKillSwitch StopReason = "kill-switch"
)

// ClickRecord describes one delivered click
type ClickRecord struct {
	X    int
	Y    int
	Type profile.ClickType
	At   time.Time
}

// RunSummary describes a finished run
type RunSummary struct {
	Profile    string
	StartedAt  time.Time
	EndedAt    time.Time
	ClickCount uint64
	Reason     StopReason
	Err        error
}

// Hooks are optional notifications the engine fires from its run goroutine.
// Nil hooks are skipped.
type Hooks struct {
	OnState func(State)
	OnClick func(ClickRecord)
	OnDone  func(RunSummary)
}
