// Package api serves read-only observation endpoints over HTTP. It
// never mutates simulation state; every handler works from snapshot
// copies taken under the simulation mutex.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"wildmind/internal/engine"
	"wildmind/internal/persistence"
)

// Server serves the world state over HTTP.
type Server struct {
	Sim     *engine.Simulation
	Loop    *engine.Loop
	Journal *persistence.Journal // nil disables /events
	Port    int

	started time.Time
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.started = time.Now()

	limiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/world", s.handleWorld)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		handler := corsMiddleware(RateLimitMiddleware(limiter, mux.ServeHTTP))
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	views := s.Sim.AgentViews()
	alive := 0
	for _, v := range views {
		if !v.IsDead {
			alive++
		}
	}

	writeJSON(w, map[string]any{
		"tick":         humanize.Comma(int64(s.Sim.CurrentTick())),
		"speed":        s.Loop.Speed,
		"running":      s.Loop.Speed > 0,
		"agents":       len(views),
		"agents_alive": alive,
		"uptime":       humanize.RelTime(s.started, time.Now(), "", ""),
	})
}

// agentSummary is the list-endpoint projection; the detail endpoint
// returns the full engine.AgentView.
type agentSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	State      string    `json:"state"`
	Food       float64   `json:"food"`
	Energy     float64   `json:"energy"`
	Warmth     float64   `json:"warmth"`
	Health     float64   `json:"health"`
	IsDead     bool      `json:"is_dead"`
	Intent     string    `json:"intent,omitempty"`
	LastCall   string    `json:"last_decision,omitempty"`
	SpeechText string    `json:"speech,omitempty"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	views := s.Sim.AgentViews()
	result := make([]agentSummary, 0, len(views))
	for _, v := range views {
		sum := agentSummary{
			ID:         v.ID,
			Name:       v.Name,
			State:      string(v.State.Kind),
			Food:       v.Vitals.Food,
			Energy:     v.Vitals.Energy,
			Warmth:     v.Vitals.Warmth,
			Health:     v.Vitals.Health,
			IsDead:     v.IsDead,
			Intent:     v.Intent,
			SpeechText: v.Bubble.Text,
		}
		if !v.LastCall.IsZero() {
			sum.LastCall = humanize.RelTime(v.LastCall, time.Now(), "ago", "from now")
		}
		result = append(result, sum)
	}
	writeJSON(w, result)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing agent id", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(parts[4])
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	view, ok := s.Sim.AgentViewByID(id)
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.WorldView())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	decisions, err := s.Journal.RecentDecisions(limit)
	if err != nil {
		slog.Error("events query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	outcomes, err := s.Journal.RecentOutcomes(limit)
	if err != nil {
		slog.Error("events query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"decisions": decisions,
		"outcomes":  outcomes,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
