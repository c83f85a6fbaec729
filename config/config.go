// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure returned from Load and Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds the scenario and run parameters.
type Config struct {
	Arena      ArenaConfig      `yaml:"arena"`
	Spawn      PointConfig      `yaml:"spawn"`
	Population PopulationConfig `yaml:"population"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Goal       GoalConfig       `yaml:"goal"`
	Obstacles  []ObstacleConfig `yaml:"obstacles"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ArenaConfig holds the arena size. The arena spans [0, Width] x [0, Height].
type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PointConfig is a position in arena coordinates.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PopulationConfig holds population sizing.
type PopulationConfig struct {
	Size          int     `yaml:"size"`
	BrainSize     int     `yaml:"brain_size"`
	AgentDiameter float64 `yaml:"agent_diameter"`
	Workers       int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// PhysicsConfig holds motion parameters.
type PhysicsConfig struct {
	MaxSpeed float64 `yaml:"max_speed"`
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate float64 `yaml:"rate"`
}

// GoalConfig is the circular target.
type GoalConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// ObstacleConfig is an axis-aligned rectangle with its top-left corner at (X, Y).
type ObstacleConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// TelemetryConfig holds logging options.
type TelemetryConfig struct {
	LogStats bool `yaml:"log_stats"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	AgentRadius float64
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg. Only fields present in data are changed,
// except lists, which are replaced wholesale.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// computeDerived calculates values derived from the loaded fields.
func (c *Config) computeDerived() {
	c.Derived.AgentRadius = c.Population.AgentDiameter / 2
}

// Validate recomputes the derived values and checks that the config
// describes a runnable scenario.
func (c *Config) Validate() error {
	c.computeDerived()
	switch {
	case c.Arena.Width <= 0 || c.Arena.Height <= 0:
		return fmt.Errorf("%w: arena must have positive size, got %vx%v", ErrInvalid, c.Arena.Width, c.Arena.Height)
	case c.Population.Size < 1:
		return fmt.Errorf("%w: population.size must be at least 1, got %d", ErrInvalid, c.Population.Size)
	case c.Population.BrainSize < 1:
		return fmt.Errorf("%w: population.brain_size must be at least 1, got %d", ErrInvalid, c.Population.BrainSize)
	case c.Population.Workers < 0:
		return fmt.Errorf("%w: population.workers must not be negative, got %d", ErrInvalid, c.Population.Workers)
	case c.Population.AgentDiameter <= 0:
		return fmt.Errorf("%w: population.agent_diameter must be positive, got %v", ErrInvalid, c.Population.AgentDiameter)
	case c.Physics.MaxSpeed <= 0:
		return fmt.Errorf("%w: physics.max_speed must be positive, got %v", ErrInvalid, c.Physics.MaxSpeed)
	case c.Mutation.Rate < 0 || c.Mutation.Rate > 1:
		return fmt.Errorf("%w: mutation.rate must be in [0, 1], got %v", ErrInvalid, c.Mutation.Rate)
	case c.Goal.Radius <= 0:
		return fmt.Errorf("%w: goal.radius must be positive, got %v", ErrInvalid, c.Goal.Radius)
	}
	for i, o := range c.Obstacles {
		if o.W <= 0 || o.H <= 0 {
			return fmt.Errorf("%w: obstacles[%d] must have positive size, got %vx%v", ErrInvalid, i, o.W, o.H)
		}
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Obstacles = append([]ObstacleConfig(nil), c.Obstacles...)
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
