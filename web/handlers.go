package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clickmate/engine"
	"clickmate/profile"
	"clickmate/vision"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleStatus returns the engine's current state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Status())
}

// handleControl drives the run-state machine: start, pause, resume, stop.
// start takes {"profile": "..."} in the body.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var err error
	switch chi.URLParam(r, "action") {
	case "start":
		var req struct {
			Profile string `json:"profile"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil || req.Profile == "" {
			writeError(w, http.StatusBadRequest, "start needs a profile name")
			return
		}
		err = s.controller.StartProfile(req.Profile)
	case "pause":
		err = s.controller.Pause()
	case "resume":
		err = s.controller.Resume()
	case "stop":
		err = s.controller.Stop()
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, engine.ErrAlreadyRunning), errors.Is(err, engine.ErrNotRunning), errors.Is(err, engine.ErrNotPaused):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, profile.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, s.controller.Status())
}

// handleListProfiles returns every stored profile
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// handleCreateProfile stores a new profile; the name must be free
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile body")
		return
	}
	if s.profiles.Exists(p.Name) {
		writeError(w, http.StatusConflict, "profile already exists")
		return
	}
	if err := s.profiles.Save(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleGetProfile returns one profile by name
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Load(chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePutProfile overwrites a profile. The running profile is locked: the
// engine works off a snapshot, so an edit now would silently not apply.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.isRunningProfile(name) {
		writeError(w, http.StatusConflict, "profile is running; stop or pause before editing")
		return
	}

	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile body")
		return
	}
	if p.Name != name {
		writeError(w, http.StatusBadRequest, "profile name does not match URL")
		return
	}
	if err := s.profiles.Save(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleDeleteProfile removes a profile; absent names are a no-op
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.isRunningProfile(name) {
		writeError(w, http.StatusConflict, "profile is running; stop before deleting")
		return
	}
	if err := s.profiles.Delete(name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) isRunningProfile(name string) bool {
	status := s.controller.Status()
	return status.State != engine.Stopped.String() && status.Profile == name
}

// targetSummary hides the bulky image payload from list responses
type targetSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
	OffsetX   int     `json:"offsetX"`
	OffsetY   int     `json:"offsetY"`
}

// handleListTargets returns the stored target images without pixel data
func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	if s.targets == nil {
		writeError(w, http.StatusNotFound, "target library not configured")
		return
	}
	targets := s.targets.List()
	summaries := make([]targetSummary, 0, len(targets))
	for _, t := range targets {
		summaries = append(summaries, targetSummary{
			ID: t.ID, Name: t.Name, Threshold: t.Threshold, OffsetX: t.OffsetX, OffsetY: t.OffsetY,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleCreateTarget stores a target image posted as base64 PNG
func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	if s.targets == nil {
		writeError(w, http.StatusNotFound, "target library not configured")
		return
	}

	var target vision.TargetImage
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid target body")
		return
	}

	saved, err := s.targets.Save(target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, targetSummary{
		ID: saved.ID, Name: saved.Name, Threshold: saved.Threshold, OffsetX: saved.OffsetX, OffsetY: saved.OffsetY,
	})
}

// handleDeleteTarget removes a target image
func (s *Server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	if s.targets == nil {
		writeError(w, http.StatusNotFound, "target library not configured")
		return
	}
	if err := s.targets.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStats returns overall, daily and per-profile aggregates over the
// last ?days=N days (default 30)
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "session storage not configured")
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	daily, err := s.db.GetDailyStats(days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byProfile, err := s.db.GetProfileStats(days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":     days,
		"overall":  overall,
		"daily":    daily,
		"profiles": byProfile,
	})
}

// handleSessions returns paginated session history
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "session storage not configured")
		return
	}

	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	sessions, err := s.db.GetSessions(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
