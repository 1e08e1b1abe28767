package vision

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// CaptureFunc grabs a screen region as an image. A zero rectangle means the
// whole primary display. Swappable so tests run without a display.
type CaptureFunc func(region image.Rectangle) (image.Image, error)

// CaptureRect captures from the primary display
func CaptureRect(region image.Rectangle) (image.Image, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays found")
	}

	bounds := screenshot.GetDisplayBounds(0)
	if !region.Empty() {
		region = region.Intersect(bounds)
		if region.Empty() {
			return nil, fmt.Errorf("capture region is outside the display")
		}
		bounds = region
	}

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return img, nil
}
