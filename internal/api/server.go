// Package api serves the simulation to the rendering collaborator.
// GET endpoints are read-only observation of the published snapshot.
// The only commands that change the simulation are toggle pause and select
// agent, over POST or the websocket. POST /api/v1/save hands the published
// snapshot to the memory store and leaves the world untouched. When AdminKey
// is set every POST requires a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/neurovale/internal/agents"
	"github.com/talgya/neurovale/internal/engine"
	"github.com/talgya/neurovale/internal/persistence"
	"github.com/talgya/neurovale/internal/world"
)

// Server serves the world state over HTTP and websocket.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; enables history and on-demand saves
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = no auth.

	hub     *Hub
	limiter *RateLimiter
	srv     *http.Server
}

// NewServer wires a server and its websocket hub to the simulation.
func NewServer(sim *engine.Simulation, eng *engine.Engine, db *persistence.DB, addr, adminKey string) *Server {
	return &Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Addr:     addr,
		AdminKey: adminKey,
		hub:      NewHub(sim, eng),
		limiter:  NewRateLimiter(120, time.Minute),
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler builds the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/v1/agent/{id}", s.handleAgent)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/speed", s.handleSpeed)
	mux.Handle("GET /api/v1/ws", s.hub)

	mux.HandleFunc("POST /api/v1/pause", s.control(s.handlePause))
	mux.HandleFunc("POST /api/v1/select", s.control(s.handleSelect))
	mux.HandleFunc("POST /api/v1/save", s.control(s.handleSave))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
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
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// control wraps a POST handler with rate limiting and, when an admin key is
// configured, bearer token auth.
func (s *Server) control(next http.HandlerFunc) http.HandlerFunc {
	return RateLimitMiddleware(s.limiter, func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey != "" && !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	writeJSON(w, map[string]any{
		"name":             "Neurovale",
		"tick":             snap.Tick,
		"day":              snap.Day,
		"time_of_day":      snap.TimeOfDay,
		"night":            snap.IsNight(),
		"season":           snap.Season,
		"weather":          snap.Weather,
		"paused":           s.Eng.Paused(),
		"speed":            s.Eng.Speed(),
		"agents":           len(snap.Agents),
		"selected":         s.Sim.Selected(),
		"oracle_available": s.Sim.OracleAvailable(),
		"ws_clients":       s.hub.Clients(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

// agentView is an agent plus the derived readings the UI shows beside it.
type agentView struct {
	*world.Agent
	agents.Feelings
	Selected bool `json:"selected"`
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a := s.Sim.Snapshot().Agent(id)
	if a == nil {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	writeJSON(w, agentView{
		Agent:    a,
		Feelings: agents.DeriveFeelings(a),
		Selected: s.Sim.Selected() == id,
	})
}

// handleEvents returns the rolling log from the latest snapshot, or with
// ?history=1 the stored event history, newest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	kind := world.EventKind(strings.ToUpper(r.URL.Query().Get("kind")))

	var events []world.Event
	if r.URL.Query().Get("history") != "" {
		if s.DB == nil {
			http.Error(w, "database not available", http.StatusServiceUnavailable)
			return
		}
		stored, err := s.DB.RecentEvents(r.Context(), 500)
		if err != nil {
			slog.Warn("event history query failed", "error", err)
			http.Error(w, "event history unavailable", http.StatusInternalServerError)
			return
		}
		events = stored
	} else {
		recent := s.Sim.Snapshot().Events
		for i := len(recent) - 1; i >= 0; i-- {
			events = append(events, recent[i])
		}
	}

	out := make([]world.Event, 0, limit)
	for _, e := range events {
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	paused := s.Eng.TogglePause()
	writeJSON(w, map[string]bool{"paused": paused})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := s.Sim.Select(req.AgentID); err != nil {
		if errors.Is(err, engine.ErrUnknownAgent) {
			http.Error(w, "agent not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"selected": s.Sim.Selected()})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"speed": s.Eng.Speed(), "paused": s.Eng.Paused()})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	snap := s.Sim.Snapshot()
	if err := s.DB.SaveWorldState(r.Context(), snap); err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"tick":    snap.Tick,
		"message": "world state saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
