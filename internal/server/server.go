package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkaline/recall/internal/engine"
	"github.com/mkaline/recall/internal/store"
)

// Server is the recall HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server with the given database, engine, and version
// string.
func New(db *store.DB, eng *engine.Engine, version string) *Server {
	s := &Server{
		db:      db,
		engine:  eng,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/memories", s.handleCreateMemory)
		r.Get("/memories", s.handleListMemories)
		r.Get("/memories/{memoryID}", s.handleGetMemory)
		r.Patch("/memories/{memoryID}", s.handleUpdateMemory)
		r.Delete("/memories/{memoryID}", s.handleDeleteMemory)

		r.Get("/search", s.handleSearch)

		r.Post("/maintenance/run", s.handleMaintenanceRun)
		r.Get("/maintenance/runs", s.handleMaintenanceRuns)

		r.Post("/sessions/init", s.handleSessionInit)
		r.Post("/sessions/{sessionID}/end", s.handleEndSession)
		r.Get("/sessions", s.handleRecentSessions)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	embedder := ""
	if s.engine != nil && s.engine.Embedder != nil {
		embedder = s.engine.Embedder.Model()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"db":       dbOK,
		"db_path":  s.db.Path,
		"embedder": embedder,
	})
}
