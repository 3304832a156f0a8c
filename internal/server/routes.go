package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/mkaline/recall/internal/engine"
	"github.com/mkaline/recall/internal/model"
	"github.com/mkaline/recall/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var m model.Memory
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if m.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}

	if _, err := s.db.SaveMemory(&m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.embedMemory(r.Context(), &m)
	if m.Session != "" {
		s.db.IncrementMemoryCount(m.Session)
	}

	writeJSON(w, http.StatusCreated, m)
}

// embedMemory stores the content vector; a missing or failing embedder
// degrades search quality but never fails the write.
func (s *Server) embedMemory(ctx context.Context, m *model.Memory) {
	if s.engine == nil || s.engine.Embedder == nil {
		return
	}
	vec, err := s.engine.Embedder.Embed(ctx, m.Content)
	if err != nil {
		log.Warn("embed memory", "id", m.ID, "err", err)
		return
	}
	if err := s.db.SaveVector(m.ID, vec, s.engine.Embedder.Model()); err != nil {
		log.Warn("save vector", "id", m.ID, "err", err)
	}
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOpts{
		Project: q.Get("project"),
		Type:    q.Get("type"),
		Tag:     q.Get("tag"),
		Session: q.Get("session"),
		Limit:   50,
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	memories, err := s.db.ListFiltered(opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if memories == nil {
		memories = []*model.Memory{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(memories),
		"memories": memories,
	})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memoryID")
	m, err := s.db.GetMemory(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "memory not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memoryID")
	m, err := s.db.GetMemory(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "memory not found")
		return
	}

	var patch struct {
		Content    *string   `json:"content"`
		Type       *string   `json:"type"`
		Tags       *[]string `json:"tags"`
		Importance *int      `json:"importance"`
		Project    *string   `json:"project"`
		Confidence *float64  `json:"confidence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	reembed := false
	if patch.Content != nil {
		m.Content = *patch.Content
		reembed = true
	}
	if patch.Type != nil {
		m.Type = model.Type(*patch.Type)
	}
	if patch.Tags != nil {
		m.Tags = *patch.Tags
	}
	if patch.Importance != nil {
		m.Importance = *patch.Importance
	}
	if patch.Project != nil {
		m.Project = *patch.Project
	}
	if patch.Confidence != nil {
		m.Confidence = *patch.Confidence
	}

	if err := s.db.UpdateMemory(m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if reembed {
		s.embedMemory(r.Context(), m)
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memoryID")
	if err := s.db.DeleteMemory(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter required")
		return
	}

	if s.engine == nil || s.engine.Embedder == nil {
		writeError(w, http.StatusServiceUnavailable, "search not available: no embedder configured")
		return
	}

	opts := engine.SearchOpts{
		Project: r.URL.Query().Get("project"),
		Type:    r.URL.Query().Get("type"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	results, err := s.engine.Search(ctx, query, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type resultJSON struct {
		*model.Memory
		Score      float64 `json:"score"`
		Semantic   float64 `json:"semantic"`
		Lexical    float64 `json:"lexical"`
		GraphBoost float64 `json:"graph_boost"`
	}
	out := make([]resultJSON, len(results))
	for i, res := range results {
		out[i] = resultJSON{
			Memory:     res.Memory,
			Score:      res.Score,
			Semantic:   res.Semantic,
			Lexical:    res.Lexical,
			GraphBoost: res.GraphBoost,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(out),
		"results": out,
	})
}

func (s *Server) handleMaintenanceRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Operations []string `json:"operations"`
		Apply      bool     `json:"apply"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	ops := engine.ParseOperations(req.Operations)
	if len(req.Operations) > 0 && len(ops) == 0 {
		writeError(w, http.StatusBadRequest, "no valid operations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	report, err := s.engine.RunMaintenance(ctx, ops, req.Apply)
	if saveErr := s.db.SaveRun(report); saveErr != nil {
		log.Warn("save maintenance run", "err", saveErr)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMaintenanceRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.db.RecentRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*model.MaintenanceReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(runs),
		"runs":  runs,
	})
}

func (s *Server) handleSessionInit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Project   string `json:"project"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id required")
		return
	}

	sess, err := s.db.InitSession(req.SessionID, req.Project)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   sess.SessionID,
		"status":       sess.Status,
		"memory_count": sess.MemoryCount,
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.db.EndSession(sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func (s *Server) handleRecentSessions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	sessions, err := s.db.GetRecentSessions(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}
