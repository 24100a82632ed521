package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	moodtuner "github.com/paoloarmento-cloud/LLM-Mood-Tuner"
)

// Server exposes the turn pipeline over HTTP. Each session gets its own
// pipeline (and turn store); the provider is shared since providers are
// stateless.
type Server struct {
	router   *chi.Mux
	cfg      moodtuner.Config
	provider moodtuner.Provider
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	pipeline    *moodtuner.Pipeline
	lastMetrics *moodtuner.Metrics
}

// NewServer builds the router. logger may be nil.
func NewServer(cfg moodtuner.Config, provider moodtuner.Provider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		provider: provider,
		logger:   logger,
		sessions: make(map[string]*session),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.health)
	s.router.Post("/v1/sessions", s.createSession)
	s.router.Post("/v1/sessions/{id}/turns", s.processTurn)
	s.router.Get("/v1/sessions/{id}/metrics", s.metrics)

	return s
}

// Handler returns the http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP on the configured address.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.cfg.Server.Addr))
	return http.ListenAndServe(s.cfg.Server.Addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	p := moodtuner.NewPipeline(s.cfg, s.provider, nil, s.logger)
	s.mu.Lock()
	s.sessions[p.SessionID] = &session{pipeline: p}
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session", p.SessionID))
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": p.SessionID})
}

type turnRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	Reply   string            `json:"reply"`
	Turn    int               `json:"turn"`
	Metrics moodtuner.Metrics `json:"metrics"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func (s *Server) processTurn(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(chi.URLParam(r, "id"))
	if sess == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	result, err := sess.pipeline.ProcessTurn(r.Context(), req.Message)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}

	s.mu.Lock()
	sess.lastMetrics = &result.Metrics
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, turnResponse{
		Reply:   result.Reply,
		Turn:    result.Record.TurnIndex,
		Metrics: result.Metrics,
	})
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(chi.URLParam(r, "id"))
	if sess == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}
	s.mu.RLock()
	m := sess.lastMetrics
	s.mu.RUnlock()
	if m == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no turns processed yet"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) lookup(id string) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// writeTurnError maps pipeline failures to status codes, always naming
// the failed stage when known.
func (s *Server) writeTurnError(w http.ResponseWriter, err error) {
	if errors.Is(err, moodtuner.ErrTurnInFlight) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	var stageErr *moodtuner.StageError
	if errors.As(err, &stageErr) {
		status := http.StatusInternalServerError
		if stageErr.Stage == moodtuner.StageProvider || errors.Is(err, moodtuner.ErrEmptyReply) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Error: err.Error(), Stage: string(stageErr.Stage)})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
