package vision

import (
	"image"
	"image/color"
	"testing"
)

// patternImage builds a high-variance gradient so correlation against any
// uniform region stays well under 1
func patternImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*17 + y*31) % 256)})
		}
	}
	return img
}

// frameWithPattern paints a uniform frame and pastes the pattern at (px, py)
func frameWithPattern(w, h int, tmpl *image.Gray, px, py int) *image.Gray {
	frame := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			frame.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	b := tmpl.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			frame.SetGray(px+x, py+y, tmpl.GrayAt(x, y))
		}
	}
	return frame
}

func TestMatchTemplateFindsPattern(t *testing.T) {
	tmpl := patternImage(12, 10)
	frame := frameWithPattern(100, 80, tmpl, 41, 29)

	match, ok := MatchTemplate(frame, tmpl, 0.95)
	if !ok {
		t.Fatalf("MatchTemplate() did not find the pattern, best score %v at (%d, %d)",
			match.Score, match.X, match.Y)
	}
	if match.X != 41 || match.Y != 29 {
		t.Fatalf("match at (%d, %d), want (41, 29)", match.X, match.Y)
	}
	if match.Score < 0.99 {
		t.Fatalf("exact match scored %v, want ~1", match.Score)
	}
}

func TestMatchTemplateRejectsAbsentPattern(t *testing.T) {
	tmpl := patternImage(12, 10)
	// Uniform frame; nothing resembles the gradient
	frame := frameWithPattern(100, 80, image.NewGray(image.Rect(0, 0, 0, 0)), 0, 0)

	if match, ok := MatchTemplate(frame, tmpl, 0.95); ok {
		t.Fatalf("MatchTemplate() matched a uniform frame: score %v at (%d, %d)",
			match.Score, match.X, match.Y)
	}
}

func TestMatchTemplateOversizedTemplate(t *testing.T) {
	tmpl := patternImage(50, 50)
	frame := patternImage(20, 20)

	if _, ok := MatchTemplate(frame, tmpl, 0.5); ok {
		t.Fatalf("MatchTemplate() matched a template larger than the frame")
	}
}

func TestMatchTemplateEmptyTemplate(t *testing.T) {
	tmpl := image.NewGray(image.Rect(0, 0, 0, 0))
	frame := patternImage(20, 20)

	if _, ok := MatchTemplate(frame, tmpl, 0.5); ok {
		t.Fatalf("MatchTemplate() matched an empty template")
	}
}

func TestMatchTemplateOddOffset(t *testing.T) {
	// Offsets off the coarse stride still resolve via the refinement pass
	tmpl := patternImage(12, 10)
	frame := frameWithPattern(60, 50, tmpl, 23, 17)

	match, ok := MatchTemplate(frame, tmpl, 0.95)
	if !ok {
		t.Fatalf("MatchTemplate() missed pattern at odd offset, score %v", match.Score)
	}
	if match.X != 23 || match.Y != 17 {
		t.Fatalf("match at (%d, %d), want (23, 17)", match.X, match.Y)
	}
}
