package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"clickmate/profile"
)

// State transition errors
var (
	ErrAlreadyRunning = errors.New("clicker is already running")
	ErrNotRunning     = errors.New("clicker is not running")
	ErrNotPaused      = errors.New("clicker is not paused")
)

const (
	pauseSlice = 100 * time.Millisecond
	sleepSlice = 100 * time.Millisecond

	// Press durations outside this window read as inhumanly fast or stuck
	minPress = 40 * time.Millisecond
	maxPress = 150 * time.Millisecond
)

// Engine fires synthetic clicks for one profile at a time. A run snapshots
// the profile at Start; later edits never reach a live run.
type Engine struct {
	mouse   Mouse
	locator Locator
	logger  *slog.Logger
	hooks   Hooks

	mu        sync.Mutex
	state     State
	snapshot  profile.Profile
	areaIndex int
	startedAt time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopping  bool
	reason    StopReason
	runErr    error

	paused     atomic.Bool
	clickCount atomic.Uint64

	rng *rand.Rand
}

// New builds an engine around a mouse. locator may be nil when target-image
// areas are not in use.
func New(mouse Mouse, locator Locator, logger *slog.Logger, hooks Hooks) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	seed := uint64(time.Now().UnixNano())
	return &Engine{
		mouse:   mouse,
		locator: locator,
		logger:  logger,
		hooks:   hooks,
		state:   Stopped,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// State returns the current run state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ClickCount returns the number of clicks delivered in the current or most
// recent run
func (e *Engine) ClickCount() uint64 {
	return e.clickCount.Load()
}

// Snapshot returns the profile the current run was started with
func (e *Engine) Snapshot() (profile.Profile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Stopped {
		return profile.Profile{}, false
	}
	return e.snapshot, true
}

// StartedAt returns when the current run began
func (e *Engine) StartedAt() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Stopped {
		return time.Time{}, false
	}
	return e.startedAt, true
}

// Start transitions Stopped -> Running and begins firing clicks for p
func (e *Engine) Start(p profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	if e.state != Stopped {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.state = Running
	e.snapshot = p
	e.areaIndex = 0
	e.startedAt = time.Now()
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.stopping = false
	e.reason = StopUser
	e.runErr = nil
	e.paused.Store(false)
	e.clickCount.Store(0)
	stopCh, doneCh := e.stopCh, e.doneCh
	e.mu.Unlock()

	e.logger.Info("Clicker started", "profile", p.Name, "areas", len(p.ActiveAreas()), "mode", p.SelectionMode)
	e.notifyState(Running)

	go e.run(p, stopCh, doneCh)
	return nil
}

// Pause transitions Running -> Paused. The loop finishes the in-flight click
// before it goes quiet.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if e.state != Running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	e.state = Paused
	e.paused.Store(true)
	name := e.snapshot.Name
	e.mu.Unlock()

	e.logger.Info("Clicker paused", "profile", name, "clicks", e.clickCount.Load())
	e.notifyState(Paused)
	return nil
}

// Resume transitions Paused -> Running
func (e *Engine) Resume() error {
	e.mu.Lock()
	if e.state != Paused {
		e.mu.Unlock()
		return ErrNotPaused
	}
	e.state = Running
	e.paused.Store(false)
	name := e.snapshot.Name
	e.mu.Unlock()

	e.logger.Info("Clicker resumed", "profile", name)
	e.notifyState(Running)
	return nil
}

// Stop transitions any state to Stopped and waits for the run goroutine to
// exit. Stopping a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.StopWithReason(StopUser)
}

// StopWithReason is Stop with an explicit reason for the session record
func (e *Engine) StopWithReason(reason StopReason) {
	e.mu.Lock()
	if e.state == Stopped {
		e.mu.Unlock()
		return
	}
	doneCh := e.doneCh
	if !e.stopping {
		e.stopping = true
		e.reason = reason
		close(e.stopCh)
	}
	e.mu.Unlock()

	<-doneCh
}

// run is the click loop. It owns the transition back to Stopped.
func (e *Engine) run(p profile.Profile, stopCh chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	var runErr error

loop:
	for {
		select {
		case <-stopCh:
			break loop
		default:
		}

		if e.paused.Load() {
			if !e.sleepInterruptible(pauseSlice, stopCh) {
				break loop
			}
			continue
		}

		if err := e.clickOnce(&p, stopCh); err != nil {
			e.logger.Error("Click failed, stopping", "error", err)
			runErr = err
			break loop
		}

		if !e.sleepBetween(&p.Timing, stopCh) {
			break loop
		}
	}

	e.mu.Lock()
	e.state = Stopped
	e.paused.Store(false)
	reason := e.reason
	if runErr != nil {
		reason = StopError
		e.runErr = runErr
	}
	summary := RunSummary{
		Profile:    p.Name,
		StartedAt:  e.startedAt,
		EndedAt:    time.Now(),
		ClickCount: e.clickCount.Load(),
		Reason:     reason,
		Err:        runErr,
	}
	e.mu.Unlock()

	e.logger.Info("Clicker stopped", "profile", summary.Profile, "clicks", summary.ClickCount, "reason", summary.Reason)
	e.notifyState(Stopped)
	if e.hooks.OnDone != nil {
		e.hooks.OnDone(summary)
	}
}

// clickOnce performs one full click iteration: pick a point, travel there,
// press and release
func (e *Engine) clickOnce(p *profile.Profile, stopCh chan struct{}) error {
	area := e.nextArea(p)

	x, y, ok, err := e.pickPoint(area)
	if err != nil {
		return err
	}
	if !ok {
		// Target image not on screen right now; try again next iteration
		e.logger.Debug("Target not found, skipping iteration", "target", area.TargetID)
		return nil
	}

	if err := e.moveHuman(x, y, stopCh); err != nil {
		return fmt.Errorf("mouse movement failed: %w", err)
	}

	clickType := pickClickType(&p.Options, e.rng)
	if err := e.performClick(clickType, &p.Timing); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	e.clickCount.Add(1)
	record := ClickRecord{X: x, Y: y, Type: clickType, At: time.Now()}
	e.logger.Debug("Click delivered", "x", x, "y", y, "type", clickType, "count", e.clickCount.Load())
	if e.hooks.OnClick != nil {
		e.hooks.OnClick(record)
	}
	return nil
}

// pickPoint resolves the click position for an area: the matched target when
// the area references one, otherwise a uniform random point in the rectangle
func (e *Engine) pickPoint(area profile.ClickArea) (int, int, bool, error) {
	if area.TargetID != "" {
		if e.locator == nil {
			return 0, 0, false, fmt.Errorf("area references target %q but no locator is configured", area.TargetID)
		}
		x, y, found, err := e.locator.Locate(area.TargetID)
		if err != nil {
			return 0, 0, false, fmt.Errorf("target lookup failed: %w", err)
		}
		return x, y, found, nil
	}

	screenW, screenH := e.mouse.ScreenSize()
	originX, originY := resolveOrigin(area, screenW, screenH)
	x, y := randomPoint(originX, originY, area.Width, area.Height, e.rng)
	return x, y, true, nil
}

// performClick presses and releases the buttons for one click of the given
// type, holding each press for a gaussian duration
func (e *Engine) performClick(clickType profile.ClickType, timing *profile.ClickTiming) error {
	press := func(button string) error {
		if err := e.mouse.Toggle(button, true); err != nil {
			return err
		}
		time.Sleep(pressDuration(timing, e.rng))
		return e.mouse.Toggle(button, false)
	}

	switch clickType {
	case profile.ClickDouble:
		if err := press("left"); err != nil {
			return err
		}
		time.Sleep(time.Duration(timing.DoubleClickGapMs) * time.Millisecond)
		return press("left")
	case profile.ClickRight:
		return press("right")
	case profile.ClickMiddle:
		return press("center")
	default:
		return press("left")
	}
}

// sleepBetween waits the randomized inter-click delay in short slices so
// pause and stop take effect promptly, drifting the pointer a pixel now and
// then like an idle hand would
func (e *Engine) sleepBetween(timing *profile.ClickTiming, stopCh chan struct{}) bool {
	total := betweenDelay(timing, e.rng)
	deadline := time.Now().Add(total)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		if e.paused.Load() {
			return true
		}
		if !e.sleepInterruptible(min(remaining, sleepSlice), stopCh) {
			return false
		}
		e.idleDrift()
	}
}

// idleDrift occasionally nudges the pointer by one pixel
func (e *Engine) idleDrift() {
	if e.rng.Float64() >= 0.001 {
		return
	}
	screenW, screenH := e.mouse.ScreenSize()
	x, y := e.mouse.Position()
	nx := clamp(x+e.rng.IntN(3)-1, 0, screenW-1)
	ny := clamp(y+e.rng.IntN(3)-1, 0, screenH-1)
	if nx == x && ny == y {
		return
	}
	if err := e.mouse.MoveTo(nx, ny); err != nil {
		e.logger.Debug("Idle drift failed", "error", err)
	}
}

// sleepInterruptible sleeps for d unless the stop channel closes first,
// reporting whether the run should continue
func (e *Engine) sleepInterruptible(d time.Duration, stopCh chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stopCh:
		return false
	case <-timer.C:
		return true
	}
}

func (e *Engine) notifyState(s State) {
	if e.hooks.OnState != nil {
		e.hooks.OnState(s)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
