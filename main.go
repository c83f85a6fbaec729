package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/dots/config"
	"github.com/pthm-cable/dots/game"
	"github.com/pthm-cable/dots/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Stop after N generations (0 = until interrupted)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	historyDB := flag.String("history-db", "", "SQLite file recording run history (empty = disabled)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for per-generation elite snapshots")
	resume := flag.String("resume", "", "Snapshot file whose elite brain seeds the first generation")
	logStats := flag.Bool("log-stats", false, "Output per-generation stats via slog")
	verbose := flag.Bool("v", false, "Log the best fitness of every generation at debug level")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := game.NewGameWithOptions(ctx, cfg, game.Options{
		Seed:        rngSeed,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		HistoryPath: *historyDB,
		SnapshotDir: *snapshotDir,
		ResumeFrom:  *resume,
		Logger:      logger,
		Plotter:     telemetry.LogPlotter{Logger: logger},
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"generations", *generations,
		"population", cfg.Population.Size,
		"brain_size", cfg.Population.BrainSize,
		"run_id", g.RunID(),
	)

	runErr := g.Run(ctx, *generations)
	if err := g.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}

	switch {
	case runErr == nil:
		slog.Info("simulation finished", "generation", g.Generation()-1, "step_cap", g.StepCap(), "last", g.LastStats())
	case errors.Is(runErr, context.Canceled):
		slog.Info("simulation interrupted", "generation", g.Generation(), "tick", g.Tick(), "total_ticks", g.TotalTicks())
	default:
		slog.Error("simulation failed", "error", runErr)
		os.Exit(1)
	}
}
