package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/dots/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot records the elite brain of a finished generation so a later run
// can start from it.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	ArenaWidth  float64 `json:"arena_width"`
	ArenaHeight float64 `json:"arena_height"`
	GoalX       float64 `json:"goal_x"`
	GoalY       float64 `json:"goal_y"`

	Generation int `json:"generation"`
	StepCap    int `json:"step_cap"` // cap in force while Generation ran

	Elite EliteState `json:"elite"`
}

// EliteState holds the best agent's score and its full direction sequence.
type EliteState struct {
	Fitness    float64     `json:"fitness"`
	Steps      int         `json:"steps"`
	Reached    bool        `json:"reached"`
	Directions []Direction `json:"directions"`
}

// Direction is one JSON-friendly unit vector of a brain.
type Direction struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DirectionsFromVecs converts a brain's directions for serialization.
func DirectionsFromVecs(vs []components.Vec2) []Direction {
	out := make([]Direction, len(vs))
	for i, v := range vs {
		out[i] = Direction{X: v.X, Y: v.Y}
	}
	return out
}

// Vecs converts the stored directions back to vectors.
func (e EliteState) Vecs() []components.Vec2 {
	out := make([]components.Vec2, len(e.Directions))
	for i, d := range e.Directions {
		out[i] = components.Vec2{X: d.X, Y: d.Y}
	}
	return out
}

// SaveSnapshot writes a snapshot to dir.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("elite_gen_%05d.json", snapshot.Generation))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d not supported (want %d)", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
