package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"wildmind/internal/action"
	"wildmind/internal/agent"
	"wildmind/internal/config"
	"wildmind/internal/engine"
	"wildmind/internal/persistence"
	"wildmind/internal/world"
)

type serverFixture struct {
	srv   *Server
	agent *agent.Agent
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	cfg := config.Default()
	w := world.New(cfg.World.Width, cfg.World.Height)
	sim := engine.NewSimulation(w, &cfg, nil, 1)
	a := sim.AddAgent("watcher", world.Vec2{X: 60, Y: 60})
	srv := &Server{Sim: sim, Loop: engine.NewLoop(), Port: 0, started: time.Now()}
	return &serverFixture{srv: srv, agent: a}
}

func get(t *testing.T, h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("wrong content type %q", ct)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode: %v\nbody: %s", err, rec.Body.String())
	}
}

func TestStatusEndpoint(t *testing.T) {
	f := newServerFixture(t)
	rec := get(t, f.srv.handleStatus, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var body map[string]any
	decode(t, rec, &body)
	if body["agents"].(float64) != 1 || body["agents_alive"].(float64) != 1 {
		t.Fatalf("agent counts wrong: %v", body)
	}
	if body["running"] != true {
		t.Fatalf("expected running, got %v", body["running"])
	}
}

func TestAgentsEndpoint(t *testing.T) {
	f := newServerFixture(t)
	rec := get(t, f.srv.handleAgents, "/api/v1/agents")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var body []agentSummary
	decode(t, rec, &body)
	if len(body) != 1 {
		t.Fatalf("expected one agent, got %d", len(body))
	}
	got := body[0]
	if got.Name != "watcher" || got.State != string(action.StateIdle) {
		t.Fatalf("summary wrong: %+v", got)
	}
	if got.Food != 100 || got.IsDead {
		t.Fatalf("vitals projection wrong: %+v", got)
	}
}

func TestAgentDetailEndpoint(t *testing.T) {
	f := newServerFixture(t)

	rec := get(t, f.srv.handleAgentDetail, "/api/v1/agent/"+f.agent.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var view engine.AgentView
	decode(t, rec, &view)
	if view.Name != "watcher" || view.ID != f.agent.ID {
		t.Fatalf("detail wrong: %+v", view)
	}

	if rec := get(t, f.srv.handleAgentDetail, "/api/v1/agent/not-a-uuid"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad id, got %d", rec.Code)
	}
	if rec := get(t, f.srv.handleAgentDetail, "/api/v1/agent/"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing id, got %d", rec.Code)
	}
	if rec := get(t, f.srv.handleAgentDetail, "/api/v1/agent/"+uuid.NewString()); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown id, got %d", rec.Code)
	}
}

func TestWorldEndpoint(t *testing.T) {
	f := newServerFixture(t)
	rec := get(t, f.srv.handleWorld, "/api/v1/world")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body []engine.EntityView
	decode(t, rec, &body)
	if len(body) == 0 {
		t.Fatal("expected at least the agent mirror entity")
	}
}

func TestEventsEndpoint(t *testing.T) {
	f := newServerFixture(t)

	// Without a journal the endpoint is unavailable.
	if rec := get(t, f.srv.handleEvents, "/api/v1/events"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a journal, got %d", rec.Code)
	}

	journal, err := persistence.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer journal.Close()
	f.srv.Journal = journal
	journal.RecordOutcome(f.agent, "wander", action.Result{Success: true}, time.Now())

	rec := get(t, f.srv.handleEvents, "/api/v1/events?limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Decisions []persistence.DecisionRow `json:"decisions"`
		Outcomes  []persistence.OutcomeRow  `json:"outcomes"`
	}
	decode(t, rec, &body)
	if len(body.Outcomes) != 1 || body.Outcomes[0].Action != "wander" {
		t.Fatalf("outcomes wrong: %+v", body.Outcomes)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("request beyond the limit must be denied")
	}
	// Other clients are unaffected.
	if !rl.Allow("5.6.7.8") {
		t.Fatal("distinct clients get their own budget")
	}
	if after := rl.RetryAfter("1.2.3.4"); after <= 0 || after > 61 {
		t.Fatalf("retry-after out of range: %d", after)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := get(t, handler, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("first request blocked: %d", rec.Code)
	}
	rec = get(t, handler, "/api/v1/status")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("429 must carry a Retry-After header")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4242"
	if ip := clientIP(req); ip != "192.168.1.5" {
		t.Fatalf("got %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	if ip := clientIP(req); ip != "10.0.0.1" {
		t.Fatalf("got %q", ip)
	}
}

func TestCORSAllowsLocalhostDev(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatal("dev origin should be allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unknown origin must not be allowed")
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight should return 204, got %d", rec.Code)
	}
}
