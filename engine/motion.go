package engine

import (
	"image"
	"math"
	"time"
)

const (
	// Roughly one waypoint per 10px of travel
	pathStepPixels = 10.0
	pathStepTime   = 2 * time.Millisecond
	// Movements shorter than this are not worth animating
	minTravelPixels = 2
)

// humanPath returns the intermediate points of a pointer move from (fromX,
// fromY) to (toX, toY): linear interpolation in ~10px steps, every point
// clamped to the screen. The final element is always the (clamped) target.
// An empty slice means the move is too short to animate.
func humanPath(fromX, fromY, toX, toY, screenW, screenH int) []image.Point {
	toX = clamp(toX, 0, screenW-1)
	toY = clamp(toY, 0, screenH-1)

	dx := toX - fromX
	dy := toY - fromY
	if abs(dx) < minTravelPixels && abs(dy) < minTravelPixels {
		return nil
	}

	distance := math.Hypot(float64(dx), float64(dy))
	steps := int(math.Ceil(distance / pathStepPixels))
	if steps < 1 {
		steps = 1
	}

	points := make([]image.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		progress := float64(i) / float64(steps)
		x := clamp(fromX+int(float64(dx)*progress), 0, screenW-1)
		y := clamp(fromY+int(float64(dy)*progress), 0, screenH-1)
		points = append(points, image.Point{X: x, Y: y})
	}
	return points
}

// moveHuman walks the pointer to the target along a humanPath, pausing
// briefly between waypoints. Aborts early when the run is stopped.
func (e *Engine) moveHuman(toX, toY int, stopCh chan struct{}) error {
	screenW, screenH := e.mouse.ScreenSize()
	fromX, fromY := e.mouse.Position()

	for _, pt := range humanPath(fromX, fromY, toX, toY, screenW, screenH) {
		select {
		case <-stopCh:
			return nil
		default:
		}
		if err := e.mouse.MoveTo(pt.X, pt.Y); err != nil {
			return err
		}
		time.Sleep(pathStepTime)
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
