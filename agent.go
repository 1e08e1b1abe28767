package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"clickmate/config"
	"clickmate/engine"
	"clickmate/platform"
	"clickmate/profile"
	"clickmate/storage"
	"clickmate/systray"
	"clickmate/vision"
	"clickmate/web"
)

// Agent wires the engine to its collaborators: profile store, session
// storage, dashboard, tray and the global kill switch
type Agent struct {
	cfg      *config.Config
	profiles *profile.Store
	targets  *vision.Library
	db       *storage.DB
	engine   *engine.Engine
	server   *web.Server
	tray     *systray.Manager
	killer   *platform.KillSwitch

	mu            sync.Mutex
	activeProfile string
}

// NewAgent builds the full application from configuration
func NewAgent(cfg *config.Config) (*Agent, error) {
	profiles, err := profile.NewStore(cfg.Paths.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile store: %w", err)
	}

	// A fresh install gets a default profile so start works immediately
	first, err := profiles.EnsureDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to seed default profile: %w", err)
	}

	targets, err := vision.NewLibrary(cfg.Paths.TargetsDir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open target library: %w", err)
	}

	db, err := storage.Open(cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	killer, err := platform.NewKillSwitch(cfg.Hotkey.KillSwitch)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure kill switch: %w", err)
	}

	a := &Agent{
		cfg:      cfg,
		profiles: profiles,
		targets:  targets,
		db:       db,
		killer:   killer,
	}

	a.activeProfile = cfg.ActiveProfile
	if a.activeProfile == "" {
		a.activeProfile = first.Name
	}

	a.engine = engine.New(platform.NewMouse(), targets, slog.Default(), engine.Hooks{
		OnState: a.onState,
		OnClick: a.onClick,
		OnDone:  a.onDone,
	})
	a.server = web.NewServer(a, profiles, targets, db, cfg.Web.Port)
	a.tray = systray.NewManager(a, cfg.Web.Port, nil)

	return a, nil
}

// Tray returns the tray manager; systray must run on the main goroutine
func (a *Agent) Tray() *systray.Manager {
	return a.tray
}

// Run serves until ctx is cancelled, then shuts everything down
func (a *Agent) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	if a.cfg.Web.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.server.Start(ctx); err != nil {
				slog.Error("Web server failed", "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.killer.Run(ctx, func() {
			a.engine.StopWithReason(engine.StopKillSwitch)
		})
	}()

	slog.Info("ClickMate started",
		"kill_switch", a.cfg.Hotkey.KillSwitch,
		"active_profile", a.activeProfile,
		"web_enabled", a.cfg.Web.Enabled,
	)

	<-ctx.Done()

	a.engine.Stop()
	wg.Wait()
	return a.db.Close()
}

// StartProfile starts a run with the named profile and remembers it as the
// active profile. Implements the dashboard controller.
func (a *Agent) StartProfile(name string) error {
	p, err := a.profiles.Load(name)
	if err != nil {
		return err
	}
	a.applySafety(&p)

	if err := a.engine.Start(p); err != nil {
		return err
	}

	a.mu.Lock()
	a.activeProfile = name
	a.mu.Unlock()

	a.cfg.ActiveProfile = name
	if err := a.cfg.Save(); err != nil {
		slog.Warn("Failed to persist active profile", "error", err)
	}
	return nil
}

// StartActive starts a run with the most recently used profile. Implements
// the tray controller.
func (a *Agent) StartActive() error {
	a.mu.Lock()
	name := a.activeProfile
	a.mu.Unlock()
	if name == "" {
		return fmt.Errorf("no active profile")
	}
	return a.StartProfile(name)
}

func (a *Agent) Pause() error  { return a.engine.Pause() }
func (a *Agent) Resume() error { return a.engine.Resume() }

func (a *Agent) Stop() error {
	a.engine.Stop()
	return nil
}

// Status reports the engine state for the dashboard and tray
func (a *Agent) Status() web.Status {
	status := web.Status{
		State:      a.engine.State().String(),
		ClickCount: a.engine.ClickCount(),
	}
	if snapshot, ok := a.engine.Snapshot(); ok {
		status.Profile = snapshot.Name
	}
	if startedAt, ok := a.engine.StartedAt(); ok {
		status.StartedAt = startedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return status
}

// applySafety clamps profile timing to the configured floor
func (a *Agent) applySafety(p *profile.Profile) {
	floor := a.cfg.Safety.MinDelayFloor
	if floor <= 0 {
		return
	}
	if p.Timing.MinDelay < floor {
		slog.Warn("Raising profile min delay to safety floor",
			"profile", p.Name, "min_delay", p.Timing.MinDelay, "floor", floor)
		p.Timing.MinDelay = floor
	}
	if p.Timing.MaxDelay < p.Timing.MinDelay {
		p.Timing.MaxDelay = p.Timing.MinDelay
	}
}

func (a *Agent) onState(state engine.State) {
	status := a.Status()
	a.server.BroadcastStatus(state, status.Profile, status.ClickCount)
	a.tray.SetStatus(state.String(), status.Profile, status.ClickCount)
}

func (a *Agent) onClick(record engine.ClickRecord) {
	a.server.BroadcastClick(record, a.engine.ClickCount())
}

// onDone records the finished run and pushes it to the dashboard
func (a *Agent) onDone(summary engine.RunSummary) {
	session := &storage.Session{
		StartedAt:  summary.StartedAt,
		EndedAt:    summary.EndedAt,
		Profile:    summary.Profile,
		ClickCount: int64(summary.ClickCount),
		DurationMs: summary.EndedAt.Sub(summary.StartedAt).Milliseconds(),
		StopReason: string(summary.Reason),
		Success:    summary.Err == nil,
	}
	if summary.Err != nil {
		session.ErrorMessage = summary.Err.Error()
	}

	if err := a.db.SaveSession(session); err != nil {
		slog.Error("Failed to record session", "error", err)
		return
	}
	a.server.BroadcastSession(session)
}
