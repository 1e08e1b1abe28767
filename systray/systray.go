package systray

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/getlantern/systray"
)

// Controller is the engine surface the tray menu drives
type Controller interface {
	StartActive() error
	Pause() error
	Resume() error
	Stop() error
}

// Manager manages the system tray icon and menu
type Manager struct {
	controller Controller
	webPort    int
	iconData   []byte
	quit       chan struct{}

	statusItem *systray.MenuItem
	startItem  *systray.MenuItem
	pauseItem  *systray.MenuItem
	resumeItem *systray.MenuItem
	stopItem   *systray.MenuItem
}

// NewManager creates a new systray manager
func NewManager(controller Controller, webPort int, iconData []byte) *Manager {
	return &Manager{
		controller: controller,
		webPort:    webPort,
		iconData:   iconData,
		quit:       make(chan struct{}),
	}
}

// Run starts the system tray (blocking call)
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *Manager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that closes when the user clicks Quit
func (m *Manager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// SetStatus updates the status line and which controls make sense.
// Safe to call before onReady; items are nil until then.
func (m *Manager) SetStatus(state string, profileName string, clicks uint64) {
	if m.statusItem == nil {
		return
	}

	label := state
	if profileName != "" {
		label = fmt.Sprintf("%s — %s (%d clicks)", state, profileName, clicks)
	}
	m.statusItem.SetTitle(label)

	switch state {
	case "running":
		m.startItem.Disable()
		m.pauseItem.Enable()
		m.resumeItem.Disable()
		m.stopItem.Enable()
	case "paused":
		m.startItem.Disable()
		m.pauseItem.Disable()
		m.resumeItem.Enable()
		m.stopItem.Enable()
	default:
		m.startItem.Enable()
		m.pauseItem.Disable()
		m.resumeItem.Disable()
		m.stopItem.Disable()
	}
}

// onReady is called when the systray is ready
func (m *Manager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}

	systray.SetTitle("ClickMate")
	systray.SetTooltip("ClickMate - Click Automation")

	m.statusItem = systray.AddMenuItem("stopped", "Current clicker state")
	m.statusItem.Disable()
	systray.AddSeparator()

	m.startItem = systray.AddMenuItem("Start", "Start clicking with the active profile")
	m.pauseItem = systray.AddMenuItem("Pause", "Pause the clicker")
	m.resumeItem = systray.AddMenuItem("Resume", "Resume the clicker")
	m.stopItem = systray.AddMenuItem("Stop", "Stop the clicker")
	m.pauseItem.Disable()
	m.resumeItem.Disable()
	m.stopItem.Disable()

	systray.AddSeparator()
	openItem := systray.AddMenuItem("Open Dashboard", "Open the ClickMate web dashboard")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Exit ClickMate")

	go func() {
		for {
			var err error
			select {
			case <-m.startItem.ClickedCh:
				err = m.controller.StartActive()
			case <-m.pauseItem.ClickedCh:
				err = m.controller.Pause()
			case <-m.resumeItem.ClickedCh:
				err = m.controller.Resume()
			case <-m.stopItem.ClickedCh:
				err = m.controller.Stop()
			case <-openItem.ClickedCh:
				m.openDashboard()
			case <-quitItem.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
			if err != nil {
				slog.Warn("Tray action failed", "error", err)
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *Manager) onExit() {
	slog.Info("System tray exited")
}

// openDashboard opens the web UI in the default browser
func (m *Manager) openDashboard() {
	url := fmt.Sprintf("http://localhost:%d", m.webPort)
	slog.Info("Opening dashboard", "url", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open dashboard", "error", err)
	}
}
