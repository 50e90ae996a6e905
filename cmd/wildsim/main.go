// Command wildsim runs the wilderness survival agent simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"wildmind/internal/api"
	"wildmind/internal/brain"
	"wildmind/internal/config"
	"wildmind/internal/engine"
	"wildmind/internal/persistence"
	"wildmind/internal/world"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "path to YAML tuning overrides")
		dbPath  = flag.String("db", "data/wildmind.db", "path to the decision journal")
		agents  = flag.Int("agents", 2, "number of agents to spawn")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			slog.Error("failed to load config", "path", *cfgPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// ── Journal ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	journal, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()
	slog.Info("journal opened", "path", *dbPath)

	// ── World ────────────────────────────────────────────────────────
	w := world.Generate(cfg.World)
	slog.Info("world generated",
		"seed", cfg.World.Seed,
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"entities", len(w.Entities()),
	)

	// ── Decision Service ─────────────────────────────────────────────
	var svc brain.Service
	if c := brain.NewClient(os.Getenv("ANTHROPIC_API_KEY")); c != nil {
		svc = c
		slog.Info("decision service enabled")
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — agents run on reflexes only")
	}

	// ── Simulation ───────────────────────────────────────────────────
	sim := engine.NewSimulation(w, &cfg, svc, cfg.World.Seed)
	sim.Brain.Recorder = journal

	center := world.Vec2{X: cfg.World.Width / 2, Y: cfg.World.Height / 2}
	for i := 0; i < *agents; i++ {
		name := fmt.Sprintf("agent-%d", i+1)
		pos := world.Vec2{X: center.X + float64(i*3), Y: center.Y + 3}
		sim.AddAgent(name, w.Clamp(pos))
	}

	loop := engine.NewLoop()
	loop.OnTick = sim.Step

	// ── HTTP API ─────────────────────────────────────────────────────
	apiServer := &api.Server{
		Sim:     sim,
		Loop:    loop,
		Journal: journal,
		Port:    cfg.API.Port,
	}
	apiServer.Start()

	// ── Start ────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		loop.Stop()
	}()

	fmt.Printf("wildmind is alive: %d agents in a %dx%d wilderness.\n",
		*agents, int(cfg.World.Width), int(cfg.World.Height))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	loop.Run()

	fmt.Println("Simulation stopped.")
}
