package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/dots/config"
	"github.com/pthm-cable/dots/game"
	"github.com/pthm-cable/dots/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config
	logger      *slog.Logger

	// Best run tracking
	mu            sync.Mutex
	bestFitness   float64
	bestRun       []telemetry.GenerationStats
	bestRunConfig *config.Config
	lastReachRate float64 // reach rate from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		bestFitness: math.Inf(1),
	}
}

// BestRun returns the per-generation stats and config of the best seed of
// the best evaluation.
func (fe *FitnessEvaluator) BestRun() ([]telemetry.GenerationStats, *config.Config) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRun, fe.bestRunConfig
}

// LastReachRate returns the mean fraction of agents that reached the goal in
// the final generation of the most recent evaluation.
func (fe *FitnessEvaluator) LastReachRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastReachRate
}

// runResult holds the results from a single simulation run.
type runResult struct {
	stats []telemetry.GenerationStats // collected via StatsCallback each generation
	err   error
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness   float64
	reachRate float64
	stats     []telemetry.GenerationStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(cfg, s)
			if result.err != nil {
				fe.logger.Error("evaluation run failed", "seed", s, "error", result.err)
				results[idx] = seedResult{fitness: 0}
				return
			}
			results[idx] = seedResult{
				fitness:   computeFitness(result.stats),
				reachRate: reachRate(result.stats, cfg.Population.Size),
				stats:     result.stats,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalReach float64
	bestSeed := 0
	for i, r := range results {
		totalFitness += r.fitness
		totalReach += r.reachRate
		if r.fitness < results[bestSeed].fitness {
			bestSeed = i
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	// Update best tracking
	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestRun = results[bestSeed].stats
		fe.bestRunConfig = cfg
	}
	fe.lastReachRate = totalReach / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run for the configured number of
// generations. cfg is shared between runs and only read.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	g, err := game.NewGameWithOptions(context.Background(), cfg.Clone(), game.Options{
		Seed:   seed,
		Logger: fe.logger,
		StatsCallback: func(stats telemetry.GenerationStats) {
			result.stats = append(result.stats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer g.Close()

	result.err = g.Run(context.Background(), fe.generations)
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(best × (1 + 0.2 × reached share))
// The final best fitness dominates; the reached share separates runs whose
// winners are equally fast.
func computeFitness(stats []telemetry.GenerationStats) float64 {
	if len(stats) == 0 {
		return 0
	}
	last := stats[len(stats)-1]
	var share float64
	total := last.Reached + last.Wall + last.Obstacle + last.Exhausted + last.StepCapped
	if total > 0 {
		share = float64(last.Reached) / float64(total)
	}
	return -(last.BestFitness * (1.0 + 0.2*share))
}

// reachRate returns the share of agents that reached the goal in the final
// generation.
func reachRate(stats []telemetry.GenerationStats, size int) float64 {
	if len(stats) == 0 || size <= 0 {
		return 0
	}
	return float64(stats[len(stats)-1].Reached) / float64(size)
}
