package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	hook "github.com/robotn/gohook"
)

// KillSwitch fires a callback when a global key combination is pressed,
// regardless of which window has focus. Autoclickers steal the pointer, so
// the stop control cannot live only in the UI.
type KillSwitch struct {
	keys []string
}

// NewKillSwitch parses a combo like "ctrl+shift+q" into a gohook key list
func NewKillSwitch(combo string) (*KillSwitch, error) {
	keys, err := parseCombo(combo)
	if err != nil {
		return nil, err
	}
	return &KillSwitch{keys: keys}, nil
}

// Run installs the global hook and blocks until ctx is cancelled. triggered
// runs on the hook goroutine each time the combo is pressed.
func (k *KillSwitch) Run(ctx context.Context, triggered func()) {
	hook.Register(hook.KeyDown, k.keys, func(e hook.Event) {
		slog.Info("Kill switch pressed")
		triggered()
	})

	events := hook.Start()
	done := hook.Process(events)

	select {
	case <-ctx.Done():
		hook.End()
		<-done
	case <-done:
	}
}

// parseCombo splits a "+"-separated combo. gohook wants the plain key first
// and modifiers after it.
func parseCombo(combo string) ([]string, error) {
	parts := strings.Split(strings.ToLower(combo), "+")

	var key string
	var modifiers []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "ctrl", "control":
			modifiers = append(modifiers, "ctrl")
		case "shift":
			modifiers = append(modifiers, "shift")
		case "alt":
			modifiers = append(modifiers, "alt")
		case "cmd", "win", "windows", "super":
			modifiers = append(modifiers, "cmd")
		default:
			if key != "" {
				return nil, fmt.Errorf("combo %q has more than one non-modifier key", combo)
			}
			key = part
		}
	}

	if key == "" {
		return nil, fmt.Errorf("combo %q needs a non-modifier key", combo)
	}
	return append([]string{key}, modifiers...), nil
}
