package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kaizen-online/internal/config"
	"kaizen-online/internal/database"
	"kaizen-online/internal/models"
	"kaizen-online/internal/session"
	"kaizen-online/internal/timer"
	"kaizen-online/internal/websocket"

	"github.com/rs/zerolog"
)

const loopTimeout = 5 * time.Second

type EmployeeStore interface {
	GetEmployeeByCode(ctx context.Context, code string) (*models.Employee, error)
	GetEventsSince(ctx context.Context, employeeCode string, sinceID int64) ([]models.SessionEvent, error)
	Ping(ctx context.Context) error
}

type EventRecorder interface {
	Record(arg database.LogSessionEventParams) bool
}

type Server struct {
	config   *config.Config
	loop     timer.EventLoop
	sessions *session.Registry
	store    EmployeeStore
	journal  EventRecorder
	wsHub    *websocket.Hub
	log      zerolog.Logger

	tick timer.Handle
}

// NewServer wires the HTTP surface to the session registry. journal and
// wsHub may be nil.
func NewServer(cfg *config.Config, loop timer.EventLoop, sessions *session.Registry, store EmployeeStore, journal EventRecorder, wsHub *websocket.Hub, log zerolog.Logger) *Server {
	return &Server{
		config:   cfg,
		loop:     loop,
		sessions: sessions,
		store:    store,
		journal:  journal,
		wsHub:    wsHub,
		log:      log,
	}
}

// Start subscribes to session events and starts the countdown ticks pushed
// to connected sockets.
func (s *Server) Start(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		s.sessions.Observe(s.onSessionEvent)
		s.tick = s.loop.Every(s.config.Session.UIRefreshInterval, s.pushTicks)
	})
}

// Stop cancels the ticks and the timers of every session. Stored sessions
// are kept and resumed on the next start.
func (s *Server) Stop(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		s.loop.Cancel(s.tick)
		s.tick = 0
		s.sessions.Close()
	})
}

// onLoop runs fn on the event loop on behalf of a request.
func (s *Server) onLoop(r *http.Request, fn func()) error {
	ctx, cancel := context.WithTimeout(r.Context(), loopTimeout)
	defer cancel()
	return s.loop.Do(ctx, fn)
}

type errorResponse struct {
	Error       string `json:"error" example:"session expired"`
	ForceLogout bool   `json:"force_logout,omitempty" example:"true"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, forceLogout bool) {
	writeJSON(w, status, errorResponse{Error: msg, ForceLogout: forceLogout})
}
