package profile

import (
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	p := Default("Default")
	if err := p.Validate(); err != nil {
		t.Fatalf("Default profile failed validation: %v", err)
	}
	if p.Timing.MinDelay >= p.Timing.MaxDelay {
		t.Fatalf("default delay range [%v, %v] is degenerate", p.Timing.MinDelay, p.Timing.MaxDelay)
	}
	if !p.Area.Centered {
		t.Fatalf("default area should be centered")
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"Default", "farm bot", "profile-2"} {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
	for _, name := range []string{"", "   ", "a/b", `a\b`, ".", ".."} {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", name)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
		want   string
	}{
		{"inverted delays", func(p *Profile) { p.Timing.MinDelay = 10; p.Timing.MaxDelay = 5 }, "delay range"},
		{"negative min delay", func(p *Profile) { p.Timing.MinDelay = -1 }, "delay range"},
		{"negative std dev", func(p *Profile) { p.Timing.PressStdDevMs = -1 }, "std dev"},
		{"negative double click gap", func(p *Profile) { p.Timing.DoubleClickGapMs = -1 }, "double click gap"},
		{"unknown selection mode", func(p *Profile) { p.SelectionMode = "spiral" }, "selection mode"},
		{"unknown click type", func(p *Profile) { p.Options.Type = "triple" }, "click type"},
		{"zero-size area", func(p *Profile) { p.Area.Width = 0 }, "non-positive size"},
		{"negative type weight", func(p *Profile) {
			p.Options.Randomize = true
			p.Options.TypeWeights = []TypeWeight{{Type: ClickSingle, Weight: -1}}
		}, "must be >= 0"},
		{"zero total type weight", func(p *Profile) {
			p.Options.Randomize = true
			p.Options.TypeWeights = []TypeWeight{{Type: ClickSingle, Weight: 0}}
		}, "sum to > 0"},
		{"weighted area without weight", func(p *Profile) {
			p.SelectionMode = SelectWeighted
			p.Area.Weight = 0
		}, "positive weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default("test")
			tt.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestAddRemoveAreas(t *testing.T) {
	p := Default("areas")

	p.AddArea(ClickArea{Width: 10, Height: 10})
	p.AddArea(ClickArea{Width: 20, Height: 20, Weight: 3})
	if !p.MultiArea {
		t.Fatalf("MultiArea not enabled after AddArea")
	}
	if len(p.Areas) != 2 {
		t.Fatalf("len(Areas) = %d, want 2", len(p.Areas))
	}
	// Zero weight gets the default
	if p.Areas[0].Weight != 1 || p.Areas[1].Weight != 3 {
		t.Fatalf("area weights = %v, %v; want 1, 3", p.Areas[0].Weight, p.Areas[1].Weight)
	}

	if p.RemoveArea(5) {
		t.Fatalf("RemoveArea(5) = true for out-of-range index")
	}
	if !p.RemoveArea(0) {
		t.Fatalf("RemoveArea(0) = false")
	}
	if len(p.Areas) != 1 || p.Areas[0].Width != 20 {
		t.Fatalf("unexpected areas after removal: %+v", p.Areas)
	}
	if !p.MultiArea {
		t.Fatalf("MultiArea switched off while an area remains")
	}

	if !p.RemoveArea(0) {
		t.Fatalf("RemoveArea(0) = false on last area")
	}
	if p.MultiArea {
		t.Fatalf("MultiArea still on after last area removed")
	}
}

func TestActiveAreas(t *testing.T) {
	p := Default("active")
	areas := p.ActiveAreas()
	if len(areas) != 1 || !areas[0].Centered {
		t.Fatalf("single-area profile ActiveAreas() = %+v", areas)
	}

	p.AddArea(ClickArea{Width: 10, Height: 10, XOffset: 5})
	areas = p.ActiveAreas()
	if len(areas) != 1 || areas[0].XOffset != 5 {
		t.Fatalf("multi-area profile ActiveAreas() = %+v", areas)
	}

	p.ClearAreas()
	areas = p.ActiveAreas()
	if len(areas) != 1 || !areas[0].Centered {
		t.Fatalf("ActiveAreas() after ClearAreas = %+v", areas)
	}
}
