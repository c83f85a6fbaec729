// Package game runs the evolutionary simulation: agents, the population and
// the driver that sequences ticks and generation ends.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/dots/config"
	"github.com/pthm-cable/dots/genome"
	"github.com/pthm-cable/dots/systems"
	"github.com/pthm-cable/dots/telemetry"
)

// Options configures a Game beyond the scenario config.
type Options struct {
	Seed        int64
	LogStats    bool
	OutputDir   string // CSV and config snapshot, empty = disabled
	HistoryPath string // SQLite run history, empty = disabled
	SnapshotDir string // elite brain JSON per generation, empty = disabled
	ResumeFrom  string // snapshot whose elite seeds slot 0 of the first generation

	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Plotter receives (generation, best fitness) after every generation.
	Plotter telemetry.Plotter
	// StatsCallback is called with the stats of every finished generation.
	StatsCallback func(telemetry.GenerationStats)
	// RNG overrides the seeded default random source.
	RNG genome.RNG
}

// Game holds the complete simulation state for one run.
type Game struct {
	cfg *config.Config
	env *systems.Environment
	pop *Population

	logger        *slog.Logger
	logStats      bool
	series        *telemetry.Series
	statsCallback func(telemetry.GenerationStats)
	outputManager *telemetry.OutputManager
	history       *telemetry.HistoryStore
	runID         int64
	perf          *telemetry.PerfCollector
	snapshotDir   string
	seed          int64

	tick      int   // ticks in the current generation
	totalTick int64 // ticks since the start of the run
	lastStats telemetry.GenerationStats
}

// NewGame creates a game from cfg with default options.
func NewGame(cfg *config.Config, seed int64) (*Game, error) {
	return NewGameWithOptions(context.Background(), cfg, Options{Seed: seed})
}

// NewGameWithOptions creates a game, opening any configured outputs.
func NewGameWithOptions(ctx context.Context, cfg *config.Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	env, err := EnvironmentFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("building environment: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Game{
		cfg:           cfg,
		env:           env,
		logger:        logger,
		logStats:      opts.LogStats || cfg.Telemetry.LogStats,
		series:        &telemetry.Series{},
		statsCallback: opts.StatsCallback,
		perf:          telemetry.NewPerfCollector(0),
		snapshotDir:   opts.SnapshotDir,
		seed:          opts.Seed,
	}

	rng := opts.RNG
	if rng == nil {
		rng = genome.NewRand(opts.Seed)
	}
	plotter := telemetry.MultiPlotter{g.series, opts.Plotter}
	g.pop, err = NewPopulation(SettingsFromConfig(cfg), rng, plotter)
	if err != nil {
		return nil, fmt.Errorf("building population: %w", err)
	}

	if opts.ResumeFrom != "" {
		snap, err := telemetry.LoadSnapshot(opts.ResumeFrom)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("loading resume snapshot: %w", err)
		}
		if err := g.pop.SeedElite(snap.Elite.Vecs()); err != nil {
			g.Close()
			return nil, fmt.Errorf("seeding elite from %s: %w", opts.ResumeFrom, err)
		}
	}

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		g.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if opts.HistoryPath != "" {
		if err := g.openHistory(ctx, opts.HistoryPath, opts.Seed); err != nil {
			g.Close()
			return nil, err
		}
	}

	return g, nil
}

// Update runs one driver step. If every agent has settled it ends the
// generation and returns true, otherwise it ticks the population.
func (g *Game) Update(ctx context.Context) (bool, error) {
	if g.pop.AllSettled() {
		if err := g.endGeneration(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseMove)
	g.pop.Tick(g.env)
	g.perf.EndTick()
	g.tick++
	g.totalTick++
	return false, nil
}

// Run steps the simulation until the given number of generations has
// finished or ctx is cancelled. generations <= 0 runs until cancellation.
func (g *Game) Run(ctx context.Context, generations int) error {
	done := 0
	for generations <= 0 || done < generations {
		if err := ctx.Err(); err != nil {
			return err
		}
		ended, err := g.Update(ctx)
		if err != nil {
			return err
		}
		if ended {
			done++
		}
	}
	return nil
}

// endGeneration scores the settled population, records telemetry, breeds
// the next generation and mutates it.
func (g *Game) endGeneration(ctx context.Context) error {
	g.perf.StartTick()
	defer g.perf.EndTick()

	g.perf.StartPhase(telemetry.PhaseEvaluate)
	g.pop.EvaluateFitness(g.env)
	stats := telemetry.ComputeGenerationStats(g.pop.Generation(), g.tick, g.pop.StepCap(), outcomes(g.pop.Snapshot()))

	g.perf.StartPhase(telemetry.PhaseBreed)
	if err := g.pop.AdvanceGeneration(g.env); err != nil {
		return err
	}

	g.perf.StartPhase(telemetry.PhaseMutate)
	g.pop.MutateAll(g.cfg.Mutation.Rate)

	g.lastStats = stats
	g.tick = 0

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	return g.recordGeneration(ctx, stats)
}

func outcomes(states []AgentState) []telemetry.AgentOutcome {
	out := make([]telemetry.AgentOutcome, len(states))
	for i, s := range states {
		out[i] = telemetry.AgentOutcome{
			Status:  s.Status,
			Cause:   s.Cause,
			Steps:   s.Steps,
			Fitness: s.Fitness,
		}
	}
	return out
}

// Generation returns the number of the generation currently running.
func (g *Game) Generation() int {
	return g.pop.Generation()
}

// StepCap returns the population's current step cap.
func (g *Game) StepCap() int {
	return g.pop.StepCap()
}

// Tick returns the number of ticks run in the current generation.
func (g *Game) Tick() int {
	return g.tick
}

// TotalTicks returns the number of ticks run since the game started.
func (g *Game) TotalTicks() int64 {
	return g.totalTick
}

// Population returns the population. Callers must not tick or advance it
// behind the game's back.
func (g *Game) Population() *Population {
	return g.pop
}

// Environment returns the arena.
func (g *Game) Environment() *systems.Environment {
	return g.env
}

// Series returns the best-fitness series plotted so far.
func (g *Game) Series() *telemetry.Series {
	return g.series
}

// LastStats returns the stats of the most recently finished generation.
func (g *Game) LastStats() telemetry.GenerationStats {
	return g.lastStats
}

// Perf returns timing statistics over the most recent driver steps.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perf.Stats()
}

// RunID returns the history run id, or 0 when history is disabled.
func (g *Game) RunID() int64 {
	return g.runID
}

// Close releases output files and the history database.
func (g *Game) Close() error {
	if g.pop != nil {
		g.pop.Close()
	}
	var firstErr error
	if err := g.outputManager.Close(); err != nil {
		firstErr = err
	}
	if err := g.history.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
