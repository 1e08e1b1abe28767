package profile

import (
	"fmt"
	"strings"
)

// ClickType identifies which mouse button sequence a click uses
type ClickType string

const (
	ClickSingle ClickType = "single"
	ClickDouble ClickType = "double"
	ClickRight  ClickType = "right"
	ClickMiddle ClickType = "middle"
)

// SelectionMode controls how the next click area is chosen when a profile
// has more than one area
type SelectionMode string

const (
	SelectSequential SelectionMode = "sequential"
	SelectRandom     SelectionMode = "random"
	SelectWeighted   SelectionMode = "weighted"
)

// ClickArea is a screen rectangle clicks land in. When Centered is set the
// rectangle is placed at the middle of the primary display and the offsets
// are ignored; otherwise XOffset/YOffset are the top-left corner.
type ClickArea struct {
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Centered bool `json:"centered"`
	XOffset  int  `json:"x_offset"`
	YOffset  int  `json:"y_offset"`

	// Weight is only consulted in weighted selection mode
	Weight float64 `json:"weight"`

	// TargetID, when set, makes the engine click the matched target image
	// inside this area instead of a random point
	TargetID string `json:"target_id,omitempty"`
}

// ClickTiming holds the delay and press-duration settings for a profile.
// Delays are in seconds, durations in milliseconds.
type ClickTiming struct {
	MinDelay         float64 `json:"min_delay"`
	MaxDelay         float64 `json:"max_delay"`
	PressMeanMs      float64 `json:"press_mean_ms"`
	PressStdDevMs    float64 `json:"press_std_dev_ms"`
	DoubleClickGapMs int     `json:"double_click_gap_ms"`
}

// TypeWeight pairs a click type with its selection weight
type TypeWeight struct {
	Type   ClickType `json:"type"`
	Weight float64   `json:"weight"`
}

// ClickOptions selects which button sequence each click performs
type ClickOptions struct {
	Type        ClickType    `json:"type"`
	Randomize   bool         `json:"randomize"`
	TypeWeights []TypeWeight `json:"type_weights,omitempty"`
}

// Profile is a named, persisted bundle of click settings and click areas
type Profile struct {
	Name          string        `json:"name"`
	Area          ClickArea     `json:"area"`
	Areas         []ClickArea   `json:"areas,omitempty"`
	MultiArea     bool          `json:"multi_area"`
	SelectionMode SelectionMode `json:"selection_mode"`
	Timing        ClickTiming   `json:"timing"`
	Options       ClickOptions  `json:"options"`
}

// Default returns a profile with the stock settings under the given name
func Default(name string) Profile {
	return Profile{
		Name: name,
		Area: ClickArea{
			Width:    200,
			Height:   200,
			Centered: true,
			Weight:   1,
		},
		SelectionMode: SelectSequential,
		Timing: ClickTiming{
			MinDelay:         12.0,
			MaxDelay:         38.0,
			PressMeanMs:      80.0,
			PressStdDevMs:    20.0,
			DoubleClickGapMs: 200,
		},
		Options: ClickOptions{
			Type:      ClickSingle,
			Randomize: false,
			TypeWeights: []TypeWeight{
				{Type: ClickSingle, Weight: 0.7},
				{Type: ClickDouble, Weight: 0.1},
				{Type: ClickRight, Weight: 0.1},
				{Type: ClickMiddle, Weight: 0.1},
			},
		},
	}
}

// AddArea appends a weighted area and enables multi-area mode
func (p *Profile) AddArea(area ClickArea) {
	if area.Weight <= 0 {
		area.Weight = 1
	}
	p.Areas = append(p.Areas, area)
	p.MultiArea = true
}

// RemoveArea deletes the area at index, reporting whether anything changed.
// Multi-area mode switches off when the last area goes.
func (p *Profile) RemoveArea(index int) bool {
	if index < 0 || index >= len(p.Areas) {
		return false
	}
	p.Areas = append(p.Areas[:index], p.Areas[index+1:]...)
	if len(p.Areas) == 0 {
		p.MultiArea = false
	}
	return true
}

// ClearAreas removes every extra area and disables multi-area mode
func (p *Profile) ClearAreas() {
	p.Areas = nil
	p.MultiArea = false
}

// ActiveAreas returns the areas a run iterates over: the extra areas when
// multi-area mode is on, otherwise just the primary area.
func (p *Profile) ActiveAreas() []ClickArea {
	if p.MultiArea && len(p.Areas) > 0 {
		return p.Areas
	}
	return []ClickArea{p.Area}
}

// ValidateName checks that a profile name is usable as a file stem
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("profile name must not contain path separators")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid profile name %q", name)
	}
	return nil
}

// Validate checks the profile for values the engine cannot run with
func (p *Profile) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if p.Timing.MinDelay < 0 || p.Timing.MaxDelay < p.Timing.MinDelay {
		return fmt.Errorf("profile %q: delay range [%v, %v] is invalid", p.Name, p.Timing.MinDelay, p.Timing.MaxDelay)
	}
	if p.Timing.PressStdDevMs < 0 {
		return fmt.Errorf("profile %q: press duration std dev must be >= 0", p.Name)
	}
	if p.Timing.DoubleClickGapMs < 0 {
		return fmt.Errorf("profile %q: double click gap must be >= 0", p.Name)
	}
	switch p.SelectionMode {
	case SelectSequential, SelectRandom, SelectWeighted:
	default:
		return fmt.Errorf("profile %q: unknown selection mode %q", p.Name, p.SelectionMode)
	}
	switch p.Options.Type {
	case ClickSingle, ClickDouble, ClickRight, ClickMiddle:
	default:
		return fmt.Errorf("profile %q: unknown click type %q", p.Name, p.Options.Type)
	}
	if p.Options.Randomize {
		total := 0.0
		for _, tw := range p.Options.TypeWeights {
			if tw.Weight < 0 {
				return fmt.Errorf("profile %q: click type weight for %q must be >= 0", p.Name, tw.Type)
			}
			total += tw.Weight
		}
		if total <= 0 {
			return fmt.Errorf("profile %q: click type weights must sum to > 0", p.Name)
		}
	}
	for i, area := range p.ActiveAreas() {
		if area.Width <= 0 || area.Height <= 0 {
			return fmt.Errorf("profile %q: area %d has non-positive size %dx%d", p.Name, i, area.Width, area.Height)
		}
		if p.SelectionMode == SelectWeighted && area.Weight <= 0 {
			return fmt.Errorf("profile %q: area %d needs a positive weight for weighted selection", p.Name, i)
		}
	}
	return nil
}
