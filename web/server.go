package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"clickmate/engine"
	"clickmate/profile"
	"clickmate/storage"
	"clickmate/vision"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Local-only dashboard
	},
}

// Status is what the dashboard polls and the tray reads
type Status struct {
	State      string `json:"state"`
	Profile    string `json:"profile,omitempty"`
	ClickCount uint64 `json:"clickCount"`
	StartedAt  string `json:"startedAt,omitempty"`
}

// Controller is the engine surface the dashboard drives
type Controller interface {
	StartProfile(name string) error
	Pause() error
	Resume() error
	Stop() error
	Status() Status
}

// Server hosts the dashboard and its API
type Server struct {
	controller Controller
	profiles   *profile.Store
	targets    *vision.Library
	db         *storage.DB
	port       int
	hub        *Hub
	httpSrv    *http.Server
}

// NewServer creates a web server. targets and db may be nil; the matching
// endpoints then report 404.
func NewServer(controller Controller, profiles *profile.Store, targets *vision.Library, db *storage.DB, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		controller: controller,
		profiles:   profiles,
		targets:    targets,
		db:         db,
		port:       port,
		hub:        hub,
	}
}

// Router builds the chi router for the API and static dashboard
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/control/{action}", s.handleControl)

		r.Get("/profiles", s.handleListProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Get("/profiles/{name}", s.handleGetProfile)
		r.Put("/profiles/{name}", s.handlePutProfile)
		r.Delete("/profiles/{name}", s.handleDeleteProfile)

		r.Get("/targets", s.handleListTargets)
		r.Post("/targets", s.handleCreateTarget)
		r.Delete("/targets/{id}", s.handleDeleteTarget)

		r.Get("/stats", s.handleStats)
		r.Get("/sessions", s.handleSessions)
	})

	r.Get("/ws", s.handleWebSocket)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err == nil {
		r.Handle("/*", http.FileServer(http.FS(staticFS)))
	}

	return r
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("Starting web server", "port", s.port, "url", fmt.Sprintf("http://localhost:%d", s.port))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// BroadcastStatus pushes a run-state change to all connected clients
func (s *Server) BroadcastStatus(state engine.State, profileName string, clicks uint64) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: StatusMessage{State: state.String(), Profile: profileName, ClickCount: clicks},
	})
}

// BroadcastClick pushes a delivered click to all connected clients
func (s *Server) BroadcastClick(record engine.ClickRecord, total uint64) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeClick,
		Data: ClickMessage{X: record.X, Y: record.Y, ClickType: string(record.Type), ClickCount: total},
	})
}

// BroadcastSession pushes a finished run to all connected clients
func (s *Server) BroadcastSession(session *storage.Session) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeSession,
		Data: SessionMessage{
			Profile:    session.Profile,
			ClickCount: session.ClickCount,
			DurationMs: session.DurationMs,
			Reason:     session.StopReason,
			Success:    session.Success,
		},
	})
}

// handleWebSocket upgrades the connection and attaches it to the hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
