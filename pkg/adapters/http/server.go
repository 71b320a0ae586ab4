// Package http exposes live kiosk sessions over a small JSON API. Each
// session is created, driven and observed through /sessions routes; an SSE
// endpoint streams snapshot frames as the prompt typing advances.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/kiosk"
	"github.com/aretw0/kiosk/pkg/console"
	"github.com/aretw0/kiosk/pkg/domain"
	"github.com/aretw0/kiosk/pkg/ports"
)

// SessionFactory builds a ready-to-start session for a new session ID. The
// host decides what a session is wired with (script, store, launcher); the
// server only drives the control surface.
type SessionFactory func(id string) (ports.SessionControl, error)

// Server manages the set of live sessions behind the HTTP surface.
type Server struct {
	factory SessionFactory
	logger  *slog.Logger
	metrics http.Handler

	mu       sync.RWMutex
	sessions map[string]ports.SessionControl
}

// Option configures the HTTP server.
type Option func(*Server)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetricsHandler mounts a handler (typically promhttp.Handler()) at
// GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer creates the live-session registry behind the HTTP surface.
// Hosts that need a graceful teardown keep the *Server and call Close.
func NewServer(factory SessionFactory, opts ...Option) *Server {
	s := &Server{
		factory:  factory,
		logger:   slog.Default(),
		sessions: make(map[string]ports.SessionControl),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for a kiosk server.
func NewHandler(factory SessionFactory, opts ...Option) http.Handler {
	return NewServer(factory, opts...).Handler()
}

// Handler builds the routing tree over the server's session registry.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Get("/info", s.info)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/input", s.postInput)
			r.Post("/submit", s.postSubmit)
			r.Post("/launch", s.postLaunch)
			r.Get("/events", s.streamEvents)
		})
	})
	return enableCORS(r)
}

// Close tears down every live session. Used by hosts on shutdown.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}

type createRequest struct {
	ID string `json:"id"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// createSession handles POST /sessions. The body may carry a session ID; an
// empty body gets a generated one. Starting begins the first prompt's typing.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.logger.Warn("Create: Invalid request body", "error", err)
		return
	}
	id := strings.TrimSpace(body.ID)
	if id == "" {
		id = fmt.Sprintf("web-%d", time.Now().UnixNano())
	}

	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, fmt.Errorf("session %q already exists", id))
		return
	}
	sess, err := s.factory(id)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, err)
		s.logger.Error("Create: Session factory failed", "error", err, "session_id", id)
		return
	}
	if err := sess.Start(r.Context()); err != nil {
		s.mu.Unlock()
		sess.Close()
		writeError(w, http.StatusInternalServerError, err)
		s.logger.Error("Create: Session start failed", "error", err, "session_id", id)
		return
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("Session created", "session_id", id)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// listSessions handles GET /sessions.
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// getSession handles GET /sessions/{sessionID}.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// deleteSession handles DELETE /sessions/{sessionID}.
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrSessionNotFound)
		return
	}
	sess.Close()
	s.logger.Info("Session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// postInput handles POST /sessions/{sessionID}/input. The draft is replaced
// wholesale; sanitization rejects oversized or malformed text before the
// engine sees it.
func (s *Server) postInput(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var body inputRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.logger.Warn("Input: Invalid request body", "error", err)
		return
	}
	clean, err := console.SanitizeInput(body.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		s.logger.Warn("Input: Rejected", "error", err, "size", len(body.Text))
		return
	}
	if err := sess.SetInput(clean); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// postSubmit handles POST /sessions/{sessionID}/submit.
func (s *Server) postSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.Submit(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// postLaunch handles POST /sessions/{sessionID}/launch.
func (s *Server) postLaunch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.Launch(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		s.logger.Warn("Launch: Refused or failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// streamEvents handles GET /sessions/{sessionID}/events (SSE). Every state
// change produces a full snapshot frame; slow clients skip intermediate
// frames but always converge on the latest.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("Events: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	frames, cancel := sess.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("Events: Client disconnected")
			return
		case snap, ok := <-frames:
			if !ok {
				return
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				s.logger.Error("Events: Snapshot encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// health handles GET /healthz.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	live := len(s.sessions)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": live})
}

// info handles GET /info.
func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "kiosk-http",
		"version": strings.TrimSpace(kiosk.Version),
	})
}

// lookup resolves the {sessionID} route parameter to a live session, writing
// a 404 when it is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (ports.SessionControl, bool) {
	id := chi.URLParam(r, "sessionID")
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrSessionNotFound)
		return nil, false
	}
	return sess, true
}

// statusFor maps engine refusals to HTTP statuses. Refusals are conflicts:
// the request was well-formed but arrived out of turn.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, domain.ErrOutOfTurn),
		errors.Is(err, domain.ErrEmptyAnswer),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
