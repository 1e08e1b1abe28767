package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := Default("roundtrip")
	p.Timing.MinDelay = 3.5
	p.Timing.MaxDelay = 7.25
	p.Options.Type = ClickDouble
	p.AddArea(ClickArea{Width: 30, Height: 40, XOffset: 10, YOffset: 20, Weight: 2})
	p.SelectionMode = SelectWeighted
	p.Area.Weight = 1

	if err := s.Save(p); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load("roundtrip")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("Load() = %+v, want %+v", got, p)
	}
}

func TestSaveRejectsInvalidProfile(t *testing.T) {
	s := newTestStore(t)

	p := Default("bad")
	p.Timing.MaxDelay = p.Timing.MinDelay - 1
	if err := s.Save(p); err == nil {
		t.Fatalf("Save() accepted an invalid profile")
	}
	if s.Exists("bad") {
		t.Fatalf("invalid profile was written to disk")
	}
}

func TestLoadMissingProfile(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesFromLoadAll(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"alpha", "beta", "gamma"} {
		if err := s.Save(Default(name)); err != nil {
			t.Fatalf("Save(%q) error = %v", name, err)
		}
	}

	if err := s.Delete("beta"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	profiles, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	var names []string
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "gamma"}) {
		t.Fatalf("LoadAll() names = %v, want [alpha gamma]", names)
	}
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("never-existed"); err != nil {
		t.Fatalf("Delete() of missing profile error = %v, want nil", err)
	}
}

func TestLoadAllSkipsCorruptFile(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(Default("good")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "corrupt.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	profiles, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "good" {
		t.Fatalf("LoadAll() = %+v, want just the good profile", profiles)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(Default("only")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(s.Dir(), "sub.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(names, []string{"only"}) {
		t.Fatalf("List() = %v, want [only]", names)
	}
}

func TestRename(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(Default("old")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Rename("old", "new"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if s.Exists("old") {
		t.Fatalf("old profile still exists after rename")
	}
	p, err := s.Load("new")
	if err != nil {
		t.Fatalf("Load() after rename error = %v", err)
	}
	if p.Name != "new" {
		t.Fatalf("renamed profile Name = %q, want new", p.Name)
	}
}

func TestRenameRefusesClobber(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(Default("a")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(Default("b")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Rename("a", "b"); err == nil {
		t.Fatalf("Rename() onto an existing profile succeeded")
	}
	if !s.Exists("a") {
		t.Fatalf("source profile lost after refused rename")
	}
}

func TestEnsureDefault(t *testing.T) {
	s := newTestStore(t)

	p, err := s.EnsureDefault()
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}
	if p.Name != "Default" {
		t.Fatalf("EnsureDefault() seeded %q, want Default", p.Name)
	}
	if !s.Exists("Default") {
		t.Fatalf("default profile not persisted")
	}

	// A populated store returns the first profile and seeds nothing
	if err := s.Save(Default("Aardvark")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	p, err = s.EnsureDefault()
	if err != nil {
		t.Fatalf("EnsureDefault() error = %v", err)
	}
	if p.Name != "Aardvark" {
		t.Fatalf("EnsureDefault() on populated store = %q, want Aardvark", p.Name)
	}
}
