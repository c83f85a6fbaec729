// Package telemetry records per-generation fitness for charts, logs and run history.
package telemetry

import "log/slog"

// Plotter receives the best fitness of each finished generation.
// Calls are fire-and-forget: a Plotter has no way to report failure.
type Plotter interface {
	Plot(generation int, bestFitness float64)
}

// PlotterFunc adapts a function to the Plotter interface.
type PlotterFunc func(generation int, bestFitness float64)

// Plot calls f.
func (f PlotterFunc) Plot(generation int, bestFitness float64) {
	f(generation, bestFitness)
}

// MultiPlotter forwards every point to each non-nil Plotter in order.
type MultiPlotter []Plotter

// Plot implements Plotter.
func (m MultiPlotter) Plot(generation int, bestFitness float64) {
	for _, p := range m {
		if p != nil {
			p.Plot(generation, bestFitness)
		}
	}
}

// Series keeps the plotted points in memory as parallel label and value slices.
type Series struct {
	Generations []int
	BestFitness []float64
}

// Plot appends a point.
func (s *Series) Plot(generation int, bestFitness float64) {
	s.Generations = append(s.Generations, generation)
	s.BestFitness = append(s.BestFitness, bestFitness)
}

// Len returns the number of points.
func (s *Series) Len() int {
	return len(s.Generations)
}

// Last returns the most recent point, or false if the series is empty.
func (s *Series) Last() (generation int, bestFitness float64, ok bool) {
	n := len(s.Generations)
	if n == 0 {
		return 0, 0, false
	}
	return s.Generations[n-1], s.BestFitness[n-1], true
}

// LogPlotter writes each point as a debug record.
type LogPlotter struct {
	Logger *slog.Logger
}

// Plot implements Plotter.
func (l LogPlotter) Plot(generation int, bestFitness float64) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("best fitness", "generation", generation, "fitness", bestFitness)
}
