package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/dots/components"
)

// Environment is the arena an evaluation runs in: its bounds, the goal and
// the obstacles. It is built once per run and never modified.
type Environment struct {
	bounds    Bounds
	goal      components.Goal
	obstacles []components.Obstacle
}

// NewEnvironment validates the scenario and returns an Environment.
// The obstacle slice is copied.
func NewEnvironment(bounds Bounds, goal components.Goal, obstacles []components.Obstacle) (*Environment, error) {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return nil, fmt.Errorf("arena must have positive size, got %vx%v", bounds.Width, bounds.Height)
	}
	if goal.Radius <= 0 {
		return nil, errors.New("goal radius must be positive")
	}
	obs := make([]components.Obstacle, len(obstacles))
	for i, o := range obstacles {
		if o.W <= 0 || o.H <= 0 {
			return nil, fmt.Errorf("obstacle %d must have positive size, got %vx%v", i, o.W, o.H)
		}
		obs[i] = o
	}
	return &Environment{bounds: bounds, goal: goal, obstacles: obs}, nil
}

// Bounds returns the arena size.
func (e *Environment) Bounds() Bounds {
	return e.bounds
}

// Goal returns the goal.
func (e *Environment) Goal() components.Goal {
	return e.goal
}

// Obstacles returns a copy of the obstacle list.
func (e *Environment) Obstacles() []components.Obstacle {
	cp := make([]components.Obstacle, len(e.obstacles))
	copy(cp, e.obstacles)
	return cp
}

// OutOfBounds reports whether a body of the given radius centred at p
// pokes outside the arena.
func (e *Environment) OutOfBounds(p components.Vec2, radius float64) bool {
	return p.X < radius || p.X > e.bounds.Width-radius ||
		p.Y < radius || p.Y > e.bounds.Height-radius
}

// HitsObstacle reports whether p lies strictly inside any obstacle.
// Only the centre point is tested, so a body may overlap an obstacle edge
// by up to its radius before it counts as a hit.
func (e *Environment) HitsObstacle(p components.Vec2) bool {
	for _, obs := range e.obstacles {
		if obs.Contains(p) {
			return true
		}
	}
	return false
}

// DistanceToGoal returns the distance from p to the goal centre.
func (e *Environment) DistanceToGoal(p components.Vec2) float64 {
	return p.Dist(e.goal.Center)
}

// ReachedGoal reports whether p is strictly within the goal radius.
func (e *Environment) ReachedGoal(p components.Vec2) bool {
	return e.DistanceToGoal(p) < e.goal.Radius
}

// Collide classifies a position after movement. It returns the crash cause
// and true when the body hit a wall or an obstacle. Walls are checked first.
func (e *Environment) Collide(p components.Vec2, radius float64) (components.Cause, bool) {
	if e.OutOfBounds(p, radius) {
		return components.CauseWall, true
	}
	if e.HitsObstacle(p) {
		return components.CauseObstacle, true
	}
	return components.CauseNone, false
}
