package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clickmate/engine"
	"clickmate/profile"
	"clickmate/storage"
)

// fakeController records calls and plays back a scripted status
type fakeController struct {
	status   Status
	started  []string
	startErr error
	pauseErr error
}

func (c *fakeController) StartProfile(name string) error {
	c.started = append(c.started, name)
	return c.startErr
}
func (c *fakeController) Pause() error  { return c.pauseErr }
func (c *fakeController) Resume() error { return nil }
func (c *fakeController) Stop() error   { return nil }
func (c *fakeController) Status() Status {
	return c.status
}

func newTestServer(t *testing.T, controller *fakeController) (*Server, *profile.Store) {
	t.Helper()
	store, err := profile.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if controller.status.State == "" {
		controller.status.State = engine.Stopped.String()
	}
	return NewServer(controller, store, nil, db, 0), store
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	controller := &fakeController{status: Status{State: "running", Profile: "farm", ClickCount: 7}}
	s, _ := newTestServer(t, controller)

	rec := doRequest(t, s, http.MethodGet, "/api/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/status = %d, want 200", rec.Code)
	}

	var got Status
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if got.State != "running" || got.Profile != "farm" || got.ClickCount != 7 {
		t.Fatalf("status = %+v", got)
	}
}

func TestControlStart(t *testing.T) {
	controller := &fakeController{}
	s, _ := newTestServer(t, controller)

	rec := doRequest(t, s, http.MethodPost, "/api/control/start", map[string]string{"profile": "farm"})
	if rec.Code != http.StatusOK {
		t.Fatalf("start = %d, want 200; body %s", rec.Code, rec.Body)
	}
	if len(controller.started) != 1 || controller.started[0] != "farm" {
		t.Fatalf("StartProfile calls = %v, want [farm]", controller.started)
	}
}

func TestControlStartNeedsProfile(t *testing.T) {
	s, _ := newTestServer(t, &fakeController{})

	rec := doRequest(t, s, http.MethodPost, "/api/control/start", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("start without profile = %d, want 400", rec.Code)
	}
}

func TestControlMapsEngineErrors(t *testing.T) {
	controller := &fakeController{startErr: engine.ErrAlreadyRunning, pauseErr: engine.ErrNotRunning}
	s, _ := newTestServer(t, controller)

	rec := doRequest(t, s, http.MethodPost, "/api/control/start", map[string]string{"profile": "x"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("start while running = %d, want 409", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/control/pause", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("pause while stopped = %d, want 409", rec.Code)
	}
}

func TestControlMissingProfileIs404(t *testing.T) {
	controller := &fakeController{startErr: profile.ErrNotFound}
	s, _ := newTestServer(t, controller)

	rec := doRequest(t, s, http.MethodPost, "/api/control/start", map[string]string{"profile": "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("start with missing profile = %d, want 404", rec.Code)
	}
}

func TestControlUnknownAction(t *testing.T) {
	s, _ := newTestServer(t, &fakeController{})

	rec := doRequest(t, s, http.MethodPost, "/api/control/reboot", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown action = %d, want 404", rec.Code)
	}
}

func TestProfileCRUD(t *testing.T) {
	s, store := newTestServer(t, &fakeController{})

	p := profile.Default("farm")
	rec := doRequest(t, s, http.MethodPost, "/api/profiles", p)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, want 201; body %s", rec.Code, rec.Body)
	}

	// Duplicate create conflicts
	rec = doRequest(t, s, http.MethodPost, "/api/profiles", p)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create = %d, want 409", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/profiles/farm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d, want 200", rec.Code)
	}

	p.Timing.MinDelay = 5
	p.Timing.MaxDelay = 9
	rec = doRequest(t, s, http.MethodPut, "/api/profiles/farm", p)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d, want 200; body %s", rec.Code, rec.Body)
	}
	updated, err := store.Load("farm")
	if err != nil {
		t.Fatalf("Load() after update error = %v", err)
	}
	if updated.Timing.MinDelay != 5 {
		t.Fatalf("update not persisted: %+v", updated.Timing)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/profiles/farm", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d, want 204", rec.Code)
	}
	if store.Exists("farm") {
		t.Fatalf("profile still on disk after delete")
	}

	// Deleting again stays a no-op
	rec = doRequest(t, s, http.MethodDelete, "/api/profiles/farm", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("repeat delete = %d, want 204", rec.Code)
	}
}

func TestGetMissingProfile(t *testing.T) {
	s, _ := newTestServer(t, &fakeController{})

	rec := doRequest(t, s, http.MethodGet, "/api/profiles/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing profile = %d, want 404", rec.Code)
	}
}

func TestPutNameMismatch(t *testing.T) {
	s, store := newTestServer(t, &fakeController{})
	if err := store.Save(profile.Default("farm")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	other := profile.Default("other")
	rec := doRequest(t, s, http.MethodPut, "/api/profiles/farm", other)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched put = %d, want 400", rec.Code)
	}
}

func TestRunningProfileIsLocked(t *testing.T) {
	controller := &fakeController{status: Status{State: engine.Running.String(), Profile: "farm"}}
	s, store := newTestServer(t, controller)
	if err := store.Save(profile.Default("farm")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(profile.Default("idle")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rec := doRequest(t, s, http.MethodPut, "/api/profiles/farm", profile.Default("farm"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("edit of running profile = %d, want 409", rec.Code)
	}
	rec = doRequest(t, s, http.MethodDelete, "/api/profiles/farm", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete of running profile = %d, want 409", rec.Code)
	}

	// Other profiles stay editable while a run is live
	rec = doRequest(t, s, http.MethodPut, "/api/profiles/idle", profile.Default("idle"))
	if rec.Code != http.StatusOK {
		t.Fatalf("edit of idle profile = %d, want 200; body %s", rec.Code, rec.Body)
	}
}

func TestCreateInvalidProfile(t *testing.T) {
	s, _ := newTestServer(t, &fakeController{})

	p := profile.Default("bad")
	p.Timing.MaxDelay = p.Timing.MinDelay - 1
	rec := doRequest(t, s, http.MethodPost, "/api/profiles", p)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create invalid profile = %d, want 400", rec.Code)
	}
}

func TestListProfiles(t *testing.T) {
	s, store := newTestServer(t, &fakeController{})
	for _, name := range []string{"b", "a"} {
		if err := store.Save(profile.Default(name)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	rec := doRequest(t, s, http.MethodGet, "/api/profiles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d, want 200", rec.Code)
	}
	var got []profile.Profile
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("list = %+v, want sorted [a b]", got)
	}
}

func TestSessionsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeController{})

	// No sessions yet; the endpoint still answers with valid JSON
	rec := doRequest(t, s, http.MethodGet, "/api/sessions?limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sessions = %d, want 200", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeController{})

	rec := doRequest(t, s, http.MethodGet, "/api/stats?days=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats = %d, want 200", rec.Code)
	}
	var got map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	for _, key := range []string{"days", "overall", "daily", "profiles"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("stats response missing %q: %v", key, got)
		}
	}
}

func TestTargetsUnconfigured(t *testing.T) {
	s, _ := newTestServer(t, &fakeController{})

	rec := doRequest(t, s, http.MethodGet, "/api/targets", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("targets without a library = %d, want 404", rec.Code)
	}
}
