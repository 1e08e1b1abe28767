package engine

import (
	"math/rand/v2"
	"time"

	"clickmate/profile"
)

// nextArea picks the area for the coming click per the profile's selection
// mode. Only the run goroutine calls this.
func (e *Engine) nextArea(p *profile.Profile) profile.ClickArea {
	areas := p.ActiveAreas()
	if len(areas) == 1 {
		return areas[0]
	}

	switch p.SelectionMode {
	case profile.SelectRandom:
		return areas[e.rng.IntN(len(areas))]
	case profile.SelectWeighted:
		return areas[weightedIndex(areas, e.rng)]
	default:
		area := areas[e.areaIndex%len(areas)]
		e.areaIndex = (e.areaIndex + 1) % len(areas)
		return area
	}
}

// weightedIndex picks an index with probability proportional to area weight
func weightedIndex(areas []profile.ClickArea, rng *rand.Rand) int {
	total := 0.0
	for _, area := range areas {
		total += area.Weight
	}
	if total <= 0 {
		return 0
	}

	value := rng.Float64() * total
	for i, area := range areas {
		if value <= area.Weight {
			return i
		}
		value -= area.Weight
	}
	return len(areas) - 1
}

// resolveOrigin turns an area into its top-left screen coordinate
func resolveOrigin(area profile.ClickArea, screenW, screenH int) (int, int) {
	if area.Centered {
		return (screenW - area.Width) / 2, (screenH - area.Height) / 2
	}
	return area.XOffset, area.YOffset
}

// randomPoint picks a uniform point inside the rectangle
func randomPoint(originX, originY, width, height int, rng *rand.Rand) (int, int) {
	return originX + rng.IntN(width), originY + rng.IntN(height)
}

// pickClickType returns the configured click type, or a weighted random one
// when randomization is on
func pickClickType(opts *profile.ClickOptions, rng *rand.Rand) profile.ClickType {
	if !opts.Randomize || len(opts.TypeWeights) == 0 {
		return opts.Type
	}

	total := 0.0
	for _, tw := range opts.TypeWeights {
		total += tw.Weight
	}
	if total <= 0 {
		return opts.Type
	}

	value := rng.Float64() * total
	for _, tw := range opts.TypeWeights {
		if value <= tw.Weight {
			return tw.Type
		}
		value -= tw.Weight
	}
	return profile.ClickSingle
}

// pressDuration samples how long a press stays down: gaussian around the
// profile mean, clamped to the human window
func pressDuration(timing *profile.ClickTiming, rng *rand.Rand) time.Duration {
	ms := rng.NormFloat64()*timing.PressStdDevMs + timing.PressMeanMs
	d := time.Duration(ms * float64(time.Millisecond))
	if d < minPress {
		return minPress
	}
	if d > maxPress {
		return maxPress
	}
	return d
}

// betweenDelay samples the inter-click wait, uniform in [min, max] seconds
func betweenDelay(timing *profile.ClickTiming, rng *rand.Rand) time.Duration {
	span := timing.MaxDelay - timing.MinDelay
	secs := timing.MinDelay
	if span > 0 {
		secs += rng.Float64() * span
	}
	return time.Duration(secs * float64(time.Second))
}
