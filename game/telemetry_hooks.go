package game

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/dots/telemetry"
)

// openHistory opens the run history database and registers this run.
func (g *Game) openHistory(ctx context.Context, path string, seed int64) error {
	store, err := telemetry.OpenHistory(ctx, path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	g.history = store

	cfgYAML, err := yaml.Marshal(g.cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	g.runID, err = store.StartRun(ctx, seed, string(cfgYAML), time.Now())
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// recordGeneration fans the stats of a finished generation out to the
// callback, the log, the output files and the history database. File
// failures are logged; history failures are returned.
func (g *Game) recordGeneration(ctx context.Context, stats telemetry.GenerationStats) error {
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats(g.logger)
		g.logger.Info("perf", "generation", stats.Generation, "perf", g.perf.Stats())
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteGeneration(stats); err != nil {
			g.logger.Error("failed to write generation", "generation", stats.Generation, "error", err)
		}
	}

	if g.snapshotDir != "" {
		if _, err := telemetry.SaveSnapshot(g.eliteSnapshot(stats), g.snapshotDir); err != nil {
			g.logger.Error("failed to save snapshot", "generation", stats.Generation, "error", err)
		}
	}

	if g.history != nil {
		if err := g.history.SaveGeneration(ctx, g.runID, stats); err != nil {
			return fmt.Errorf("saving generation %d: %w", stats.Generation, err)
		}
	}
	return nil
}

// eliteSnapshot describes the generation that just ended. It must run after
// AdvanceGeneration, when slot 0 holds the unmutated copy of the best brain.
func (g *Game) eliteSnapshot(stats telemetry.GenerationStats) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     g.seed,
		ArenaWidth:  g.cfg.Arena.Width,
		ArenaHeight: g.cfg.Arena.Height,
		GoalX:       g.cfg.Goal.X,
		GoalY:       g.cfg.Goal.Y,
		Generation:  stats.Generation,
		StepCap:     stats.StepCap,
		Elite: telemetry.EliteState{
			Fitness:    stats.BestFitness,
			Steps:      stats.BestSteps,
			Reached:    stats.BestReached,
			Directions: telemetry.DirectionsFromVecs(g.pop.Directions(0)),
		},
	}
}
