package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/dots/components"
)

// AgentOutcome is the end-of-generation record of one agent.
type AgentOutcome struct {
	Status  components.Status
	Cause   components.Cause
	Steps   int
	Fitness float64
}

// GenerationStats holds aggregated statistics for one finished generation.
type GenerationStats struct {
	Generation int `csv:"generation"`
	Ticks      int `csv:"ticks"`
	StepCap    int `csv:"step_cap"` // cap in force while the generation ran, before the ratchet

	// Best agent
	BestFitness float64 `csv:"best_fitness"`
	BestSteps   int     `csv:"best_steps"`
	BestReached bool    `csv:"best_reached"`

	// Fitness distribution
	MeanFitness   float64 `csv:"mean_fitness"`
	StdFitness    float64 `csv:"std_fitness"`
	MedianFitness float64 `csv:"median_fitness"`

	// Outcome counts
	Reached    int `csv:"reached"`
	Wall       int `csv:"wall"`
	Obstacle   int `csv:"obstacle"`
	Exhausted  int `csv:"exhausted"`
	StepCapped int `csv:"step_capped"`
}

// ComputeGenerationStats summarises a settled generation. The best agent is
// the first one holding the maximum fitness.
func ComputeGenerationStats(generation, ticks, stepCap int, outcomes []AgentOutcome) GenerationStats {
	s := GenerationStats{
		Generation: generation,
		Ticks:      ticks,
		StepCap:    stepCap,
	}
	if len(outcomes) == 0 {
		return s
	}

	fitness := make([]float64, len(outcomes))
	for i, o := range outcomes {
		fitness[i] = o.Fitness
		switch o.Cause {
		case components.CauseReached:
			s.Reached++
		case components.CauseWall:
			s.Wall++
		case components.CauseObstacle:
			s.Obstacle++
		case components.CauseExhausted:
			s.Exhausted++
		case components.CauseStepCap:
			s.StepCapped++
		}
	}

	best := outcomes[floats.MaxIdx(fitness)]
	s.BestFitness = best.Fitness
	s.BestSteps = best.Steps
	s.BestReached = best.Status == components.Reached

	s.MeanFitness, s.StdFitness = stat.MeanStdDev(fitness, nil)
	if len(fitness) < 2 {
		s.StdFitness = 0
	}

	sorted := make([]float64, len(fitness))
	copy(sorted, fitness)
	sort.Float64s(sorted)
	s.MedianFitness = stat.Quantile(0.5, stat.Empirical, sorted, nil)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("ticks", s.Ticks),
		slog.Int("step_cap", s.StepCap),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Int("best_steps", s.BestSteps),
		slog.Bool("best_reached", s.BestReached),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("std_fitness", s.StdFitness),
		slog.Float64("median_fitness", s.MedianFitness),
		slog.Int("reached", s.Reached),
		slog.Int("wall", s.Wall),
		slog.Int("obstacle", s.Obstacle),
		slog.Int("exhausted", s.Exhausted),
		slog.Int("step_capped", s.StepCapped),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("generation", "stats", s)
}
