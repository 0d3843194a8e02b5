// Command worldsim runs the Neurovale agent simulation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/neurovale/internal/agents"
	"github.com/talgya/neurovale/internal/api"
	"github.com/talgya/neurovale/internal/config"
	"github.com/talgya/neurovale/internal/engine"
	"github.com/talgya/neurovale/internal/entropy"
	"github.com/talgya/neurovale/internal/mind"
	"github.com/talgya/neurovale/internal/persistence"
	"github.com/talgya/neurovale/internal/world"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("WORLDSIM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Neurovale: neuro-chemical agent simulation")

	// ── Configuration ─────────────────────────────────────────────────
	cfgPath := os.Getenv("WORLDSIM_CONFIG")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	policy, err := agents.ParsePolicy(cfg.Goals.Policy)
	if err != nil {
		slog.Error("invalid goal policy", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Memory store ──────────────────────────────────────────────────
	db, err := persistence.Open(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.Path)

	// ── World (terrain always regenerated, deterministic from seed) ──
	rng := entropy.New(cfg.World.Seed)
	terrain := world.NewNoiseTerrain(rng.Seed())
	snap := world.Generate(cfg.GenConfig(), terrain, rng)

	if clock, ok, err := db.LoadClock(ctx, cfg.World.SeasonLengthDays); err != nil {
		slog.Warn("could not read saved clock, starting fresh", "error", err)
	} else if ok {
		snap.Clock = clock
		slog.Info("resuming calendar", "tick", humanize.Comma(int64(clock.Tick)), "day", clock.Day, "season", clock.Season)
	}

	if bundles, err := db.LoadAll(ctx); err != nil {
		slog.Warn("could not load memories, agents start blank", "error", err)
	} else {
		restored := persistence.RestoreAll(snap.Agents, bundles)
		slog.Info("memories restored", "agents", restored, "stored", len(bundles))
	}

	slog.Info("world generated",
		"seed", rng.Seed(),
		"size", cfg.World.Size,
		"agents", len(snap.Agents),
		"flora", len(snap.Flora),
		"fauna", len(snap.Fauna),
		"water", len(snap.Water),
	)

	// ── Oracle ────────────────────────────────────────────────────────
	var dispatcher *mind.Dispatcher
	if cfg.Oracle.Enabled {
		client := mind.NewClient(cfg.Oracle.Endpoint, cfg.Oracle.Model, cfg.Oracle.Timeout)
		dispatcher = mind.NewDispatcher(client, mind.DispatchConfig{
			Cooldown:      cfg.Oracle.Cooldown,
			Timeout:       cfg.Oracle.Timeout,
			ProbeInterval: cfg.Oracle.ProbeInterval,
			MaxBackoff:    cfg.Oracle.MaxBackoff,
		})
		slog.Info("oracle enabled", "endpoint", cfg.Oracle.Endpoint, "model", client.Model())
	} else {
		slog.Warn("oracle disabled, the goal solver is the only decision source")
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(engine.Options{
		Clock:     cfg.ClockConfig(),
		Recipes:   cfg.Recipes,
		Policy:    policy,
		PuddleCap: cfg.World.PuddleCap,
	}, snap, terrain, rng, dispatcher)

	eng := engine.NewEngine(cfg.Tick)
	eng.OnTick = sim.Step

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("WORLDSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("WORLDSIM_ADMIN_KEY not set, control endpoints are unauthenticated")
	}
	apiServer := api.NewServer(sim, eng, db, cfg.API.Addr, adminKey)
	apiServer.Start()

	// ── Periodic save ─────────────────────────────────────────────────
	go autosave(ctx, db, sim, cfg.Storage.SaveInterval)

	fmt.Printf("\nNeurovale is alive: %d agents in a %.0fm valley.\n", len(snap.Agents), cfg.World.Size)
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.API.Addr)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	// ── Shutdown ──────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}

	slog.Info("final save...")
	if err := db.SaveWorldState(shutdownCtx, sim.Snapshot()); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Memories saved.")
}

// autosave persists the published snapshot every interval until ctx ends.
// Failures are logged and retried on the next interval.
func autosave(ctx context.Context, db *persistence.DB, sim *engine.Simulation, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := db.SaveWorldState(ctx, sim.Snapshot()); err != nil {
				slog.Warn("autosave failed", "error", err)
			}
		}
	}
}
