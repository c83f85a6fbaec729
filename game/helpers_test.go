package game

import (
	"testing"

	"github.com/pthm-cable/dots/components"
	"github.com/pthm-cable/dots/genome"
	"github.com/pthm-cable/dots/systems"
)

// fixedRNG returns the same draws forever and counts Float64 calls.
type fixedRNG struct {
	float float64
	angle float64
	draws int
}

func (r *fixedRNG) Float64() float64 {
	r.draws++
	return r.float
}

func (r *fixedRNG) Angle() float64 { return r.angle }

var up = components.Vec2{X: 0, Y: -1}

func repeat(v components.Vec2, n int) []components.Vec2 {
	out := make([]components.Vec2, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func testSettings() Settings {
	return Settings{
		Size:      1,
		BrainSize: 4,
		Radius:    2,
		Spawn:     components.Vec2{X: 400, Y: 700},
		MaxSpeed:  6,
	}
}

// newEnv returns an empty 800x800 arena with the goal at (400, 690).
func newEnv(t *testing.T, obstacles ...components.Obstacle) *systems.Environment {
	t.Helper()
	env, err := systems.NewEnvironment(
		systems.Bounds{Width: 800, Height: 800},
		components.Goal{Center: components.Vec2{X: 400, Y: 690}, Radius: 5},
		obstacles,
	)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	return env
}

func newTestAgent(s *Settings, dirs []components.Vec2) *Agent {
	return NewAgent(s, genome.FromDirections(dirs))
}
