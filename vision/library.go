package vision

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrTargetNotFound is returned when a target id has no record
var ErrTargetNotFound = errors.New("target not found")

// TargetImage is a reference picture the engine can search for on screen
type TargetImage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// PNG bytes, base64 encoded so the record is a single JSON document
	ImageData string `json:"image_data"`
	// Minimum normalized cross-correlation score to count as a match
	Threshold float64 `json:"threshold"`
	// Click offset from the center of the matched region
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`
}

// Decode returns the target's image
func (t *TargetImage) Decode() (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(t.ImageData)
	if err != nil {
		return nil, fmt.Errorf("target %q has invalid image data: %w", t.ID, err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("target %q has unreadable PNG data: %w", t.ID, err)
	}
	return img, nil
}

// EncodeImage converts an image into the stored base64 PNG form
func EncodeImage(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Library manages target images, one JSON file per target under a directory
type Library struct {
	dir     string
	capture CaptureFunc

	mu      sync.RWMutex
	targets map[string]TargetImage
}

// NewLibrary loads every target under dir, creating the directory if needed.
// capture defaults to the real screen grabber when nil.
func NewLibrary(dir string, capture CaptureFunc) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create targets directory: %w", err)
	}
	if capture == nil {
		capture = CaptureRect
	}

	lib := &Library{
		dir:     dir,
		capture: capture,
		targets: make(map[string]TargetImage),
	}
	if err := lib.reload(); err != nil {
		return nil, err
	}
	return lib, nil
}

func (l *Library) path(id string) string {
	return filepath.Join(l.dir, id+".json")
}

// reload re-reads every target file. Corrupt files are skipped with a
// warning.
func (l *Library) reload() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("failed to read targets directory: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.targets)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			slog.Warn("Skipping unreadable target file", "file", entry.Name(), "error", err)
			continue
		}
		var target TargetImage
		if err := json.Unmarshal(data, &target); err != nil {
			slog.Warn("Skipping corrupt target file", "file", entry.Name(), "error", err)
			continue
		}
		l.targets[target.ID] = target
	}
	return nil
}

// Save persists a target, assigning an id and default threshold when missing
func (l *Library) Save(target TargetImage) (TargetImage, error) {
	if target.ID == "" {
		target.ID = uuid.NewString()
	}
	if target.Threshold <= 0 || target.Threshold > 1 {
		target.Threshold = 0.8
	}
	if strings.TrimSpace(target.Name) == "" {
		return TargetImage{}, fmt.Errorf("target name must not be empty")
	}
	if _, err := target.Decode(); err != nil {
		return TargetImage{}, err
	}

	data, err := json.MarshalIndent(target, "", "  ")
	if err != nil {
		return TargetImage{}, fmt.Errorf("failed to encode target %q: %w", target.ID, err)
	}
	data = append(data, '\n')

	path := l.path(target.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return TargetImage{}, fmt.Errorf("failed to write target %q: %w", target.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return TargetImage{}, fmt.Errorf("failed to persist target %q: %w", target.ID, err)
	}

	l.mu.Lock()
	l.targets[target.ID] = target
	l.mu.Unlock()
	return target, nil
}

// Get returns a target by id
func (l *Library) Get(id string) (TargetImage, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	target, ok := l.targets[id]
	if !ok {
		return TargetImage{}, fmt.Errorf("target %q: %w", id, ErrTargetNotFound)
	}
	return target, nil
}

// List returns every target sorted by name
func (l *Library) List() []TargetImage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	targets := make([]TargetImage, 0, len(l.targets))
	for _, target := range l.targets {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets
}

// Delete removes a target. Unknown ids are a no-op.
func (l *Library) Delete(id string) error {
	if err := os.Remove(l.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete target %q: %w", id, err)
	}
	l.mu.Lock()
	delete(l.targets, id)
	l.mu.Unlock()
	return nil
}

// CaptureTarget grabs a screen region and stores it as a new target
func (l *Library) CaptureTarget(name string, region image.Rectangle, threshold float64) (TargetImage, error) {
	img, err := l.capture(region)
	if err != nil {
		return TargetImage{}, fmt.Errorf("failed to capture region: %w", err)
	}
	data, err := EncodeImage(img)
	if err != nil {
		return TargetImage{}, err
	}
	return l.Save(TargetImage{
		Name:      name,
		ImageData: data,
		Threshold: threshold,
	})
}

// Locate searches the whole screen for the target and returns the click
// point: the match center plus the target's offset. found is false when the
// best score is under the threshold. Satisfies the engine's Locator.
func (l *Library) Locate(targetID string) (int, int, bool, error) {
	target, err := l.Get(targetID)
	if err != nil {
		return 0, 0, false, err
	}
	tmpl, err := target.Decode()
	if err != nil {
		return 0, 0, false, err
	}

	screen, err := l.capture(image.Rectangle{})
	if err != nil {
		return 0, 0, false, fmt.Errorf("screen capture failed: %w", err)
	}

	match, ok := MatchTemplate(screen, tmpl, target.Threshold)
	if !ok {
		return 0, 0, false, nil
	}

	bounds := tmpl.Bounds()
	x := match.X + bounds.Dx()/2 + target.OffsetX
	y := match.Y + bounds.Dy()/2 + target.OffsetY
	return x, y, true, nil
}
