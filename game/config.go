package game

import (
	"github.com/pthm-cable/dots/components"
	"github.com/pthm-cable/dots/config"
	"github.com/pthm-cable/dots/systems"
)

// Settings holds the fixed per-run parameters shared by a population and
// its agents. It is read-only once the population is built.
type Settings struct {
	Size      int             // agents per generation
	BrainSize int             // directions per brain
	Radius    float64         // agent body radius, used for wall collisions
	Spawn     components.Vec2 // start position of every agent
	MaxSpeed  float64         // velocity clamp per tick
	Workers   int             // tick workers, 1 = sequential, 0 = GOMAXPROCS
}

// SettingsFromConfig extracts population settings from cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Size:      cfg.Population.Size,
		BrainSize: cfg.Population.BrainSize,
		Radius:    cfg.Derived.AgentRadius,
		Spawn:     components.Vec2{X: cfg.Spawn.X, Y: cfg.Spawn.Y},
		MaxSpeed:  cfg.Physics.MaxSpeed,
		Workers:   cfg.Population.Workers,
	}
}

// EnvironmentFromConfig builds the arena described by cfg.
func EnvironmentFromConfig(cfg *config.Config) (*systems.Environment, error) {
	obstacles := make([]components.Obstacle, len(cfg.Obstacles))
	for i, o := range cfg.Obstacles {
		obstacles[i] = components.Obstacle{X: o.X, Y: o.Y, W: o.W, H: o.H}
	}
	return systems.NewEnvironment(
		systems.Bounds{Width: cfg.Arena.Width, Height: cfg.Arena.Height},
		components.Goal{
			Center: components.Vec2{X: cfg.Goal.X, Y: cfg.Goal.Y},
			Radius: cfg.Goal.Radius,
		},
		obstacles,
	)
}
