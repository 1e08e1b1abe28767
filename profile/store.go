package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when a named profile has no file on disk
var ErrNotFound = errors.New("profile not found")

// Store persists profiles as one JSON file per profile under a directory
type Store struct {
	dir string
}

// NewStore creates the profiles directory if needed and returns a store
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profiles directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store reads and writes
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes the profile, replacing any previous record. The write goes
// through a temp file and rename so a crash never leaves a torn profile.
func (s *Store) Save(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile %q: %w", p.Name, err)
	}
	data = append(data, '\n')

	path := s.path(p.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile %q: %w", p.Name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to persist profile %q: %w", p.Name, err)
	}
	return nil
}

// Load reads one profile by name
func (s *Store) Load(name string) (Profile, error) {
	if err := ValidateName(name); err != nil {
		return Profile{}, err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, fmt.Errorf("profile %q: %w", name, ErrNotFound)
		}
		return Profile{}, fmt.Errorf("failed to read profile %q: %w", name, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile %q: %w", name, err)
	}
	return p, nil
}

// Exists reports whether a profile file is present
func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	_, err := os.Stat(s.path(name))
	return err == nil
}

// LoadAll reads every profile in the directory, sorted by name. Files that
// fail to parse are skipped with a warning so one corrupt profile does not
// take the rest down.
func (s *Store) LoadAll() ([]Profile, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		p, err := s.Load(name)
		if err != nil {
			slog.Warn("Skipping unreadable profile", "name", name, "error", err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// List returns the sorted names of the persisted profiles
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a profile. Deleting a profile that does not exist is a no-op.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete profile %q: %w", name, err)
	}
	return nil
}

// Rename moves a profile to a new name, refusing to clobber an existing one
func (s *Store) Rename(oldName, newName string) error {
	p, err := s.Load(oldName)
	if err != nil {
		return err
	}
	if err := ValidateName(newName); err != nil {
		return err
	}
	if s.Exists(newName) {
		return fmt.Errorf("profile %q already exists", newName)
	}

	p.Name = newName
	if err := s.Save(p); err != nil {
		return err
	}
	return s.Delete(oldName)
}

// EnsureDefault creates and returns the default profile when the store is
// empty, so a fresh install always has something to run.
func (s *Store) EnsureDefault() (Profile, error) {
	names, err := s.List()
	if err != nil {
		return Profile{}, err
	}
	if len(names) > 0 {
		return s.Load(names[0])
	}

	p := Default("Default")
	if err := s.Save(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
